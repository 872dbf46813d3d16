package mtclient

import (
	"context"

	"github.com/gotdgram/mtclient/invoker"
	"github.com/gotdgram/mtclient/peer"
	"github.com/gotdgram/mtclient/sender"
	"github.com/gotdgram/mtclient/senderpool"
	"github.com/gotdgram/mtclient/session"
	"github.com/gotdgram/mtclient/tl"
	"github.com/gotdgram/mtclient/updates"
)

// Client wires the whole stack together: a Store for persistence, a Pool of
// per-dc senders, an Invoker applying the retry policy on top, and a
// Sequencer turning the pool's raw update feed into an ordered stream
// (spec.md §4, the four collaborating subsystems).
type Client struct {
	cfg   Config
	store session.Store
	peers *peer.Map
	pool  *senderpool.Pool
	inv   *invoker.Invoker
	seq   *updates.Sequencer
	log   Logger
}

// New builds a Client. dial and authGen are the two collaborators spec.md
// §1 leaves pluggable: dial supplies sockets (senderpool.DefaultDialer for
// plain TCP, or a golang.org/x/net/proxy dialer routed through
// senderpool.NewSOCKS5Dialer), and authGen runs the Diffie-Hellman handshake
// out of this core's scope. Whether this session belongs to a bot — which
// selects the getChannelDifference page size spec.md §4.6.4 gives bots
// versus regular users — is read from store.UserInfo() rather than taken as
// a parameter, so it survives a restart without a live RPC round trip.
func New(cfg Config, store session.Store, dial senderpool.Dialer, authGen senderpool.AuthKeyGen, log Logger) (*Client, error) {
	peers := peer.NewMap()
	bot := store.UserInfo().Bot

	initQuery := func() tl.Object {
		return tl.InvokeWithLayer{
			Layer: cfg.Layer,
			Query: tl.InitConnection{
				APIID:          cfg.APIID,
				DeviceModel:    cfg.Device.DeviceModel,
				SystemVersion:  cfg.Device.SystemVersion,
				AppVersion:     cfg.Device.AppVersion,
				SystemLangCode: cfg.Device.SystemLangCode,
				LangCode:       cfg.Device.LangCode,
				Query:          tl.HelpGetConfig{},
			},
		}
	}

	pool := senderpool.New(store, dial, authGen, cfg.Layer, initQuery, log)
	inv := invoker.New(pool, store, cfg.FloodSleepThreshold, log)

	seq, err := updates.New(pool.Updates, store, peers, inv, bot, log)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:   cfg,
		store: store,
		peers: peers,
		pool:  pool,
		inv:   inv,
		seq:   seq,
		log:   log,
	}, nil
}

// Run drives the update sequencer until ctx is cancelled or Close is
// called. Callers typically run this in its own goroutine alongside normal
// Invoke traffic.
func (c *Client) Run(ctx context.Context) error {
	return c.seq.Run(ctx)
}

// Updates is the ordered, gap-free update stream (spec.md §4.6).
func (c *Client) Updates() <-chan updates.Update {
	return c.seq.Updates()
}

// Invoke sends call to the session's home dc and returns the raw reply body
// once the retry policy has settled (spec.md §4.5).
func (c *Client) Invoke(ctx context.Context, call tl.Object) ([]byte, error) {
	return c.inv.Invoke(ctx, call)
}

// InvokeInDc is Invoke targeted at a specific dc, copying the home auth key
// over on first use (spec.md §4.5).
func (c *Client) InvokeInDc(ctx context.Context, dcID int32, call tl.Object) ([]byte, error) {
	return c.inv.InvokeInDc(ctx, dcID, call)
}

// InvokeAfter wraps call in invokeAfterMsg{prevMsgID, call} (spec.md §5).
func (c *Client) InvokeAfter(ctx context.Context, prevMsgID int64, call tl.Object) ([]byte, error) {
	return c.inv.InvokeAfter(ctx, prevMsgID, call)
}

// Peers is the per-update peer cache (spec.md §4.7); callers feed it from
// the users/chats vectors that ride along with RPC replies and differences.
func (c *Client) Peers() *peer.Map {
	return c.peers
}

// Close stops the sequencer and tears down every open dc connection.
func (c *Client) Close() error {
	c.seq.Close()
	return c.pool.Quit()
}

// sender.Logger is satisfied by Logger's Error/Debug methods directly, so
// invoker, senderpool and updates take it without importing this package
// (which would cycle back here).
var _ sender.Logger = Logger{}
