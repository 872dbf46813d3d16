package sender

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/mtstate"
	"github.com/gotdgram/mtclient/tl"
	"github.com/gotdgram/mtclient/transport"
)

// fakeMtp is a scripted mtstate.Mtp: Push/Finalize assign sequential msg
// ids over whatever's in the batch, and Deserialize replays whatever the
// test queued via expect, regardless of the actual frame bytes — the wire
// framing is exercised for real via transport.Full, only the MTP-level
// classification is faked.
type fakeMtp struct {
	mu     sync.Mutex
	nextID int64
	queue  chan []mtstate.Deserialization
}

func newFakeMtp() *fakeMtp {
	return &fakeMtp{queue: make(chan []mtstate.Deserialization, 8)}
}

func (m *fakeMtp) Push(buf *crypto.DequeBuffer[byte], request []byte) (int64, bool) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.mu.Unlock()
	buf.ExtendBack(request)
	return id, true
}

func (m *fakeMtp) Finalize(buf *crypto.DequeBuffer[byte]) (int64, bool) {
	if buf.IsEmpty() {
		return 0, false
	}
	m.mu.Lock()
	id := m.nextID
	m.mu.Unlock()
	return id, true
}

func (m *fakeMtp) Deserialize(payload []byte) ([]mtstate.Deserialization, error) {
	select {
	case d := <-m.queue:
		return d, nil
	default:
		return nil, nil
	}
}

func (m *fakeMtp) expect(d ...mtstate.Deserialization) {
	m.queue <- d
}

var _ mtstate.Mtp = (*fakeMtp)(nil)

type nopLogger struct{}

func (nopLogger) Error(err error, format string, args ...interface{}) {}
func (nopLogger) Debug(format string, args ...interface{})            {}

// testHarness wires a Sender to one end of a net.Pipe, with a background
// goroutine draining whatever the sender writes so flush() never blocks,
// and a helper to push a frame in the other direction as if the server had
// sent it.
type testHarness struct {
	t          *testing.T
	sender     *Sender
	serverConn net.Conn
	serverFull *transport.Full
	updates    chan []byte
	runErr     chan error
}

func newHarness(t *testing.T) (*testHarness, *fakeMtp) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	mtp := newFakeMtp()
	updates := make(chan []byte, 8)
	s := New(1, clientConn, mtp, updates, nopLogger{})

	h := &testHarness{
		t:          t,
		sender:     s,
		serverConn: serverConn,
		serverFull: transport.NewFull(),
		updates:    updates,
		runErr:     make(chan error, 1),
	}

	go func() {
		drain := transport.NewFull()
		for {
			if _, err := drain.ReadFrame(serverConn); err != nil {
				return
			}
		}
	}()
	go func() { h.runErr <- s.Run() }()

	t.Cleanup(func() {
		s.Close()
		clientConn.Close()
		serverConn.Close()
	})
	return h, mtp
}

// deliver simulates the server sending one frame; its payload bytes are
// irrelevant since fakeMtp.Deserialize ignores them and replays whatever
// was queued via expect.
func (h *testHarness) deliver() {
	buf := crypto.NewDequeBuffer[byte](32, 8)
	h.serverFull.WriteFrame(buf, []byte("payload"))
	_, err := h.serverConn.Write(buf.Bytes())
	require.NoError(h.t, err)
}

func TestSenderResolvesRPCResult(t *testing.T) {
	h, mtp := newHarness(t)

	respCh := h.sender.Send([]byte("request-body"))
	mtp.expect(mtstate.Deserialization{
		Kind:      mtstate.KindRPCResult,
		RPCResult: mtstate.RPCResult{MsgID: 1, Body: []byte("reply-body")},
	})
	h.deliver()

	select {
	case result := <-respCh:
		assert.NoError(t, result.Err)
		assert.Equal(t, []byte("reply-body"), result.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rpc result")
	}
}

func TestSenderResolvesRPCError(t *testing.T) {
	h, mtp := newHarness(t)

	respCh := h.sender.Send([]byte("request-body"))
	mtp.expect(mtstate.Deserialization{
		Kind: mtstate.KindRPCError,
		RPCError: mtstate.RPCResultError{
			MsgID: 1,
			Error: tl.RPCError{ErrorCode: 420, ErrorMessage: "FLOOD_WAIT_5"},
		},
	})
	h.deliver()

	select {
	case result := <-respCh:
		require.Error(t, result.Err)
		rerr, ok := result.Err.(*RPCError)
		require.True(t, ok)
		assert.Equal(t, int32(420), rerr.Code)
		assert.Equal(t, "FLOOD_WAIT_5", rerr.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rpc error")
	}
}

func TestSenderForwardsUpdates(t *testing.T) {
	h, mtp := newHarness(t)

	mtp.expect(mtstate.Deserialization{Kind: mtstate.KindUpdate, Update: []byte("update-body")})
	h.deliver()

	select {
	case body := <-h.updates:
		assert.Equal(t, []byte("update-body"), body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded update")
	}
}

func TestSenderRetriesOnRetryableBadMessage(t *testing.T) {
	h, mtp := newHarness(t)

	respCh := h.sender.Send([]byte("request-body"))
	// msg_id too low (code 16) is retryable: the slot gets re-pushed under
	// a new id (2) instead of being resolved with an error.
	mtp.expect(mtstate.Deserialization{Kind: mtstate.KindBadMessage, BadMessage: mtstate.BadMessage{MsgID: 1, Code: 16}})
	h.deliver()

	mtp.expect(mtstate.Deserialization{
		Kind:      mtstate.KindRPCResult,
		RPCResult: mtstate.RPCResult{MsgID: 2, Body: []byte("finally")},
	})
	h.deliver()

	select {
	case result := <-respCh:
		assert.NoError(t, result.Err)
		assert.Equal(t, []byte("finally"), result.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retried result")
	}
}

func TestSenderResolvesNonRetryableNonFatalBadMessageWithError(t *testing.T) {
	h, mtp := newHarness(t)

	respCh := h.sender.Send([]byte("request-body"))
	// code 32 (msg_seqno too low) is neither retryable nor connection-fatal:
	// the slot resolves with an explanatory error.
	mtp.expect(mtstate.Deserialization{Kind: mtstate.KindBadMessage, BadMessage: mtstate.BadMessage{MsgID: 1, Code: 32}})
	h.deliver()

	select {
	case result := <-respCh:
		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "bad_msg_notification")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bad_msg result")
	}
}

func TestSenderDoesNotResolveFatalBadMessage(t *testing.T) {
	h, mtp := newHarness(t)

	respCh := h.sender.Send([]byte("request-body"))
	// code 64 is connection-fatal: the slot is left pending, since readLoop
	// (not handleBadMessage) is responsible for reporting connection death.
	mtp.expect(mtstate.Deserialization{Kind: mtstate.KindBadMessage, BadMessage: mtstate.BadMessage{MsgID: 1, Code: 64}})
	h.deliver()

	select {
	case result := <-respCh:
		t.Fatalf("slot resolved unexpectedly with %+v", result)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSenderCloseFailsOutstandingSlots(t *testing.T) {
	h, _ := newHarness(t)

	respCh := h.sender.Send([]byte("request-body"))
	h.sender.Close()

	select {
	case result := <-respCh:
		require.Error(t, result.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Close to fail outstanding slots")
	}
}
