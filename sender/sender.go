// Package sender owns one socket, one MTP state and the request-slot map
// for a single datacenter connection (spec.md §4.3).
package sender

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/ansel1/merry/v2"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/mtstate"
	"github.com/gotdgram/mtclient/transport"
)

// ErrDropped is delivered to every outstanding slot when the connection
// terminates (spec.md §4.3 "Connection-level errors terminate the sender,
// freeing all slots with a Dropped error").
var ErrDropped = merry.New("sender: connection closed before reply")

const inboundQueueSize = 1024 // bounded request queue; Send and SendNoWait block while it is full

// Sender drives one datacenter connection: reads frames off the wire,
// classifies them via mtp, and writes whatever Push/Finalize batches up.
// There is no parallelism inside a Sender; the select loop in Run is the
// only place suspension happens (spec.md §5).
type Sender struct {
	DcID int32

	conn net.Conn
	full *transport.Full
	mtp  mtstate.Mtp

	inbound chan outboundRequest
	retry   chan int64
	done    chan struct{}
	closeMu sync.Once

	slotsMu sync.Mutex
	slots   map[int64]*RequestSlot

	// Updates receives every body classified as Update/OwnUpdate, destined
	// for the pool's fan-out channel (spec.md §4.4).
	Updates chan<- []byte

	log Logger
}

// Logger is the minimal logging surface Sender needs; mtclient.Logger
// satisfies it.
type Logger interface {
	Error(err error, format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// New wraps an already-connected socket. mtp must be primed with a
// negotiated auth key and session id before use.
func New(dcID int32, conn net.Conn, mtp mtstate.Mtp, updates chan<- []byte, log Logger) *Sender {
	return &Sender{
		DcID:    dcID,
		conn:    conn,
		full:    transport.NewFull(),
		mtp:     mtp,
		inbound: make(chan outboundRequest, inboundQueueSize),
		retry:   make(chan int64, 16),
		done:    make(chan struct{}),
		slots:   make(map[int64]*RequestSlot),
		Updates: updates,
		log:     log,
	}
}

// Send enqueues a serialized request and returns a channel that resolves
// with its Result. Pass a nil-capacity-1 channel's sibling pattern is not
// required: callers that don't care about the reply (acks, pongs) should
// use SendNoWait.
func (s *Sender) Send(body []byte) chan Result {
	resp := make(chan Result, 1)
	select {
	case s.inbound <- outboundRequest{body: body, response: resp}:
	case <-s.done:
		resp <- Result{Err: ErrDropped}
	}
	return resp
}

// SendNoWait enqueues a fire-and-forget request (acks, pongs): no slot is
// tracked for the reply.
func (s *Sender) SendNoWait(body []byte) {
	select {
	case s.inbound <- outboundRequest{body: body}:
	case <-s.done:
	}
}

// Run drives the sender until the connection fails or Close is called. It
// spawns one reader goroutine to turn blocking socket reads into a channel
// source, keeping Run's own loop single-threaded and select-driven
// (spec.md §5's "cooperative single-threaded per subsystem").
func (s *Sender) Run() error {
	frames := make(chan []byte, 8)
	readErr := make(chan error, 1)
	go s.readLoop(frames, readErr)

	pending := crypto.NewDequeBuffer[byte](256, 0)

	var finalErr error
loop:
	for {
		select {
		case <-s.done:
			break loop

		case req := <-s.inbound:
			id, ok := s.mtp.Push(pending, req.body)
			if !ok {
				// batch full: flush what we have, then retry the push.
				if err := s.flush(pending); err != nil {
					finalErr = err
					break loop
				}
				id, ok = s.mtp.Push(pending, req.body)
			}
			if req.response != nil {
				s.slotsMu.Lock()
				s.slots[id] = &RequestSlot{MsgID: id, Body: req.body, Response: req.response}
				s.slotsMu.Unlock()
			}
			if ok {
				if err := s.flush(pending); err != nil {
					finalErr = err
					break loop
				}
			}

		case msgID := <-s.retry:
			s.slotsMu.Lock()
			slot, ok := s.slots[msgID]
			s.slotsMu.Unlock()
			if !ok {
				continue
			}
			newID, pushed := s.mtp.Push(pending, slot.Body)
			if pushed {
				s.slotsMu.Lock()
				delete(s.slots, msgID)
				s.slots[newID] = &RequestSlot{MsgID: newID, Body: slot.Body, Response: slot.Response}
				s.slotsMu.Unlock()
				if err := s.flush(pending); err != nil {
					finalErr = err
					break loop
				}
			}

		case frame := <-frames:
			if err := s.handleFrame(frame); err != nil {
				s.log.Error(err, "sender: failed to handle incoming frame")
			}

		case err := <-readErr:
			finalErr = err
			break loop
		}
	}

	s.failAllSlots(finalErr)
	return finalErr
}

func (s *Sender) flush(pending *crypto.DequeBuffer[byte]) error {
	_, ok := s.mtp.Finalize(pending)
	if !ok {
		return nil
	}
	wire := crypto.NewDequeBuffer[byte](pending.Len()+16, 8)
	s.full.WriteFrame(wire, pending.Bytes())
	pending.Clear()
	if _, err := s.conn.Write(wire.Bytes()); err != nil {
		return merry.Wrap(err)
	}
	return nil
}

func (s *Sender) readLoop(frames chan<- []byte, errc chan<- error) {
	for {
		frame, err := s.full.ReadFrame(s.conn)
		if err != nil {
			if err == io.EOF {
				err = merry.New("sender: connection closed by peer")
			}
			select {
			case errc <- merry.Wrap(err):
			case <-s.done:
			}
			return
		}
		select {
		case frames <- frame:
		case <-s.done:
			return
		}
	}
}

func (s *Sender) handleFrame(frame []byte) error {
	results, err := s.mtp.Deserialize(frame)
	if err != nil {
		return err
	}
	for _, d := range results {
		s.dispatch(d)
	}
	for _, ackID := range drainAcks(s.mtp) {
		s.SendNoWait(encodeAck(ackID))
	}
	return nil
}

func (s *Sender) dispatch(d mtstate.Deserialization) {
	switch d.Kind {
	case mtstate.KindRPCResult:
		s.resolve(d.RPCResult.MsgID, Result{Body: d.RPCResult.Body})
	case mtstate.KindRPCError:
		s.resolve(d.RPCError.MsgID, Result{Err: &RPCError{Code: d.RPCError.Error.ErrorCode, Message: d.RPCError.Error.ErrorMessage}})
	case mtstate.KindOwnUpdate:
		s.resolve(d.OwnUpdate.MsgID, Result{Body: d.OwnUpdate.Update})
		s.forwardUpdate(d.OwnUpdate.Update)
	case mtstate.KindUpdate:
		s.forwardUpdate(d.Update)
	case mtstate.KindBadMessage:
		s.handleBadMessage(d.BadMessage)
	case mtstate.KindFailure:
		s.log.Error(d.Failure.Err, "sender: failed to deserialize sub-message")
	}
}

func (s *Sender) forwardUpdate(body []byte) {
	if s.Updates == nil {
		return
	}
	select {
	case s.Updates <- body:
	case <-s.done:
	}
}

func (s *Sender) handleBadMessage(bad mtstate.BadMessage) {
	if bad.Retryable() {
		select {
		case s.retry <- bad.MsgID:
		case <-s.done:
		}
		return
	}
	if bad.Fatal() {
		return // connection-level failure is reported by readLoop independently
	}
	s.resolve(bad.MsgID, Result{Err: merry.Errorf("bad_msg_notification %d: %s", bad.Code, bad.Description())})
}

func (s *Sender) resolve(msgID int64, result Result) {
	s.slotsMu.Lock()
	slot, ok := s.slots[msgID]
	if ok {
		delete(s.slots, msgID)
	}
	s.slotsMu.Unlock()
	if !ok || slot.Response == nil {
		return
	}
	select {
	case slot.Response <- result:
	default:
	}
}

func (s *Sender) failAllSlots(err error) {
	if err == nil {
		err = ErrDropped
	}
	s.slotsMu.Lock()
	slots := s.slots
	s.slots = make(map[int64]*RequestSlot)
	s.slotsMu.Unlock()
	for _, slot := range slots {
		if slot.Response != nil {
			select {
			case slot.Response <- Result{Err: err}:
			default:
			}
		}
	}
}

// Close terminates the sender; safe to call multiple times.
func (s *Sender) Close() error {
	s.closeMu.Do(func() { close(s.done) })
	return s.conn.Close()
}

// pingInterval matches the teacher's keepalive cadence (mtproto.go's
// pingRoutine).
const pingInterval = 60 * time.Second

// StartPinging runs a keepalive loop until the sender closes, mirroring
// mtproto.go's pingRoutine.
func (s *Sender) StartPinging(pingID int64) {
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.SendNoWait(encodePing(pingID))
			}
		}
	}()
}
