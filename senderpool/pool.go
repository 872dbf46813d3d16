// Package senderpool keeps one sender per datacenter, starting them lazily
// and fanning updates out to a single channel (spec.md §4.4).
package senderpool

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/ansel1/merry/v2"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/mtstate"
	"github.com/gotdgram/mtclient/sender"
	"github.com/gotdgram/mtclient/session"
	"github.com/gotdgram/mtclient/tl"
	"github.com/gotdgram/mtclient/transport"
)

// Dialer abstracts the socket connect step so callers can route through a
// SOCKS proxy; it is exactly golang.org/x/net/proxy's Dialer interface,
// grounded in 9seconds/mtg's proxy-aware dialing.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
}

// DefaultDialer returns the zero-configuration Dialer: golang.org/x/net/proxy's
// own direct-connect implementation, with no proxying.
func DefaultDialer() Dialer {
	return proxy.Direct
}

// NewSOCKS5Dialer wraps a SOCKS5 proxy as a Dialer, using
// golang.org/x/net/proxy directly rather than hand-rolling the protocol,
// grounded in 9seconds/mtg's proxy-aware dialing.
func NewSOCKS5Dialer(address string, auth *proxy.Auth, forward Dialer) (Dialer, error) {
	d, err := proxy.SOCKS5("tcp", address, auth, forward)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return d, nil
}

// AuthKeyGen is the black-box collaborator spec.md §1/§6 names: it runs the
// Diffie-Hellman handshake over mtp's plain framing and returns a fresh
// auth key plus the server's observed time offset.
type AuthKeyGen func(ctx context.Context, conn net.Conn, mtp *mtstate.Plain) (crypto.AuthKey, int32, error)

type connectionInfo struct {
	sender *sender.Sender
	cancel func()
}

// Pool owns one sender per dc, started on first use (spec.md §4.4).
type Pool struct {
	store     session.Store
	dial      Dialer
	authGen   AuthKeyGen
	layer     int32
	initQuery func() tl.Object // builds InitConnection{..., query: help.GetConfig}

	log sender.Logger

	mu    sync.Mutex
	conns map[int32]*connectionInfo

	Updates chan []byte

	bootstrapGroup singleflight.Group
}

// New creates an empty pool. initQuery must build the InitConnection
// wrapper (api_id, device params, help.GetConfig) for the bootstrap step.
func New(store session.Store, dial Dialer, authGen AuthKeyGen, layer int32, initQuery func() tl.Object, log sender.Logger) *Pool {
	return &Pool{
		store:     store,
		dial:      dial,
		authGen:   authGen,
		layer:     layer,
		initQuery: initQuery,
		log:       log,
		conns:     make(map[int32]*connectionInfo),
		Updates:   make(chan []byte, 4096),
	}
}

// InvokeInDc looks up (or lazily bootstraps) the connection for dcID,
// forwards body, and waits for the reply (spec.md §4.4 invoke_in_dc).
func (p *Pool) InvokeInDc(ctx context.Context, dcID int32, body []byte) ([]byte, error) {
	s, err := p.connection(ctx, dcID)
	if err != nil {
		return nil, err
	}
	select {
	case result := <-s.Send(body):
		return result.Body, result.Err
	case <-ctx.Done():
		return nil, merry.Wrap(ctx.Err())
	}
}

func (p *Pool) connection(ctx context.Context, dcID int32) (*sender.Sender, error) {
	p.mu.Lock()
	info, ok := p.conns[dcID]
	p.mu.Unlock()
	if ok {
		return info.sender, nil
	}

	// singleflight collapses concurrent first-use bootstraps for the same
	// dc_id into one connect+auth_key_gen+handshake (spec.md §4.4 "On
	// first use of a dc_id").
	v, err, _ := p.bootstrapGroup.Do(keyFor(dcID), func() (interface{}, error) {
		return p.bootstrap(ctx, dcID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*sender.Sender), nil
}

func (p *Pool) bootstrap(ctx context.Context, dcID int32) (*sender.Sender, error) {
	p.mu.Lock()
	if info, ok := p.conns[dcID]; ok {
		p.mu.Unlock()
		return info.sender, nil
	}
	p.mu.Unlock()

	dc, ok := p.store.DcOption(dcID)
	if !ok {
		return nil, merry.Errorf("senderpool: unknown dc_id %d", dcID)
	}

	s, err := p.connectAndHandshake(ctx, dc)
	if err != nil {
		// one retry on a transport-level 404 (no auth key on the server
		// side), per spec.md §4.4 step (c).
		if isNotFound(err) {
			s, err = p.connectAndHandshake(ctx, dc)
		}
		if err != nil {
			return nil, err
		}
	}

	ctx2, cancel := context.WithCancel(context.Background())
	go func() {
		<-ctx2.Done()
		_ = s.Close()
	}()
	go func() {
		if err := s.Run(); err != nil {
			p.log.Error(err, "senderpool: sender for dc %d exited", dcID)
		}
		p.mu.Lock()
		delete(p.conns, dcID)
		p.mu.Unlock()
	}()

	p.mu.Lock()
	p.conns[dcID] = &connectionInfo{sender: s, cancel: cancel}
	p.mu.Unlock()
	return s, nil
}

func (p *Pool) connectAndHandshake(ctx context.Context, dc session.DcOption) (*sender.Sender, error) {
	conn, err := p.dial.Dial("tcp", dc.IPv4)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	if _, err := conn.Write([]byte{0xef}); err != nil { // "full" transport preamble
		conn.Close()
		return nil, merry.Wrap(err)
	}

	authKey := dc.AuthKey
	timeOffset := int32(0)
	if authKey == nil {
		key, offset, err := p.authGen(ctx, conn, mtstate.NewPlain())
		if err != nil {
			conn.Close()
			return nil, merry.Wrap(err)
		}
		authKey = &key
		timeOffset = offset
		dc.AuthKey = authKey
		p.store.SetDcOption(dc)
	}

	sessionID, err := randomSessionID()
	if err != nil {
		conn.Close()
		return nil, err
	}
	mtp := mtstate.NewEncrypted(*authKey, sessionID, 0)
	mtp.SetTimeOffset(timeOffset)

	s := sender.New(dc.ID, conn, mtp, p.Updates, p.log)
	go s.Run()

	initBody := tl.NewEncoder(256)
	initBody.Object(tl.InvokeWithLayer{Layer: p.layer, Query: p.initQuery()})
	result, err := sendAndWait(s, initBody.Bytes())
	if err != nil {
		s.Close()
		return nil, err
	}
	if cfg, ok := decodeConfig(result); ok {
		for _, opt := range cfg {
			if old, ok := p.store.DcOption(opt.ID); ok {
				opt.AuthKey = old.AuthKey
			}
			p.store.SetDcOption(opt)
		}
	}

	return s, nil
}

// randomSessionID draws a fresh MTProto session_id. The teacher's
// InitSession seeds math/rand; a wire session identifier is worth the
// crypto/rand import instead.
func randomSessionID() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, merry.Wrap(err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

func sendAndWait(s *sender.Sender, body []byte) ([]byte, error) {
	result := <-s.Send(body)
	return result.Body, result.Err
}

// decodeConfig decodes a help.GetConfig response as tl.Config and turns its
// dc_options vector into session.DcOption values addressed as host:port.
// It reports false when the body is not a decodable config.
func decodeConfig(body []byte) ([]session.DcOption, bool) {
	d := tl.NewDecoder(body)
	obj := d.Object()
	cfg, ok := obj.(tl.Config)
	if !ok || d.Err() != nil {
		return nil, false
	}
	opts := make([]session.DcOption, 0, len(cfg.DcOptions))
	for _, dc := range cfg.DcOptions {
		opts = append(opts, session.DcOption{ID: dc.ID, IPv4: net.JoinHostPort(dc.IPAddress, strconv.Itoa(int(dc.Port)))})
	}
	return opts, true
}

// DisconnectFromDc aborts the sender for dcID, reporting whether one was
// running.
func (p *Pool) DisconnectFromDc(dcID int32) bool {
	p.mu.Lock()
	info, ok := p.conns[dcID]
	if ok {
		delete(p.conns, dcID)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	info.cancel()
	return true
}

// Quit aborts every sender. Uses errgroup to issue every sender's cancel and
// wait for those calls to return; it does not wait for the senders' Run
// loops to exit.
func (p *Pool) Quit() error {
	p.mu.Lock()
	infos := make([]*connectionInfo, 0, len(p.conns))
	for id, info := range p.conns {
		infos = append(infos, info)
		delete(p.conns, id)
	}
	p.mu.Unlock()

	var g errgroup.Group
	for _, info := range infos {
		info := info
		g.Go(func() error {
			info.cancel()
			return nil
		})
	}
	return g.Wait()
}

// isNotFound reports whether err is the transport's bad-status frame for a
// 404: the server holds no auth key for this session, so bootstrap gets one
// retry (spec.md §4.4 step (c)).
func isNotFound(err error) bool {
	var te *transport.Error
	return errors.As(err, &te) && te.Kind == transport.KindBadStatus && te.Status == 404
}

func keyFor(dcID int32) string {
	return strconv.Itoa(int(dcID))
}
