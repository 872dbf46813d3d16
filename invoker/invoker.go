// Package invoker turns a typed TL call into bytes, hands it to the sender
// pool, and applies the retry policy to the reply (spec.md §4.5).
package invoker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ansel1/merry/v2"
	"golang.org/x/time/rate"

	"github.com/gotdgram/mtclient/rpcerr"
	"github.com/gotdgram/mtclient/sender"
	"github.com/gotdgram/mtclient/senderpool"
	"github.com/gotdgram/mtclient/session"
	"github.com/gotdgram/mtclient/tl"
	"github.com/gotdgram/mtclient/transport"
)

// Invoker serializes calls, dispatches them through a Pool, and retries
// per Policy, bounded by FloodSleepThreshold.
type Invoker struct {
	pool                *senderpool.Pool
	store               session.Store
	policy              Policy
	floodSleepThreshold int32
	log                 sender.Logger

	mu           sync.Mutex
	authorizedDc map[int32]bool // dcs the home auth key has been copied to
}

// New builds an Invoker around an already-running Pool.
func New(pool *senderpool.Pool, store session.Store, floodSleepThreshold int32, log sender.Logger) *Invoker {
	return &Invoker{
		pool:                pool,
		store:               store,
		policy:              DefaultPolicy(floodSleepThreshold),
		floodSleepThreshold: floodSleepThreshold,
		log:                 log,
		authorizedDc:        make(map[int32]bool),
	}
}

// Invoke serializes call and sends it to the session's home dc, retrying
// per policy (spec.md §4.5 invoke).
func (inv *Invoker) Invoke(ctx context.Context, call tl.Object) ([]byte, error) {
	return inv.InvokeInDc(ctx, inv.store.HomeDcID(), call)
}

// InvokeInDc is Invoke with an explicit target dc, performing cross-dc auth
// copying on first use of a non-home dc (spec.md §4.5).
func (inv *Invoker) InvokeInDc(ctx context.Context, dcID int32, call tl.Object) ([]byte, error) {
	if err := inv.ensureAuthorized(ctx, dcID); err != nil {
		return nil, err
	}
	return inv.invokeInDcNoAuth(ctx, dcID, call)
}

// invokeInDcNoAuth is InvokeInDc without the ensureAuthorized step, used
// internally so exportAuthorization/importAuthorization don't recurse into
// each other while copying auth to dcID.
func (inv *Invoker) invokeInDcNoAuth(ctx context.Context, dcID int32, call tl.Object) ([]byte, error) {
	body := encode(call)

	var failCount int
	var sleptSoFar time.Duration
	for {
		result, rawErr := inv.pool.InvokeInDc(ctx, dcID, body)
		if rawErr == nil {
			return result, nil
		}

		ierr := classify(rawErr)
		decision := inv.policy(RetryContext{FailCount: failCount, SleptSoFar: sleptSoFar, Err: ierr})
		if !decision.Continue {
			return nil, ierr
		}

		failCount++
		if inv.log != nil {
			inv.log.Debug("invoker: retrying after %v (attempt %d): %v", decision.Delay, failCount, ierr)
		}
		if decision.Delay > 0 {
			if err := sleepFor(ctx, decision.Delay); err != nil {
				return nil, merry.Wrap(err)
			}
			sleptSoFar += decision.Delay
		}
	}
}

// InvokeAfter wraps call in invokeAfterMsg{prevMsgID, call} so the server
// processes it only once prevMsgID's effects have landed (spec.md §5's
// invokeAfterMsg bundling, named as an explicit operation here).
func (inv *Invoker) InvokeAfter(ctx context.Context, prevMsgID int64, call tl.Object) ([]byte, error) {
	return inv.Invoke(ctx, tl.InvokeAfterMsg{MsgID: prevMsgID, Query: call})
}

func (inv *Invoker) ensureAuthorized(ctx context.Context, dcID int32) error {
	home := inv.store.HomeDcID()
	if dcID == home {
		return nil
	}

	inv.mu.Lock()
	done := inv.authorizedDc[dcID]
	inv.mu.Unlock()
	if done {
		return nil
	}

	exported, err := inv.Invoke(ctx, tl.AuthExportAuthorization{DCID: dcID})
	if err != nil {
		return err
	}
	d := tl.NewDecoder(exported)
	obj := d.Object()
	auth, ok := obj.(tl.AuthExportedAuthorization)
	if !ok || d.Err() != nil {
		return merry.New("invoker: unexpected reply to auth.exportAuthorization")
	}

	if _, err := inv.invokeInDcNoAuth(ctx, dcID, tl.AuthImportAuthorization{ID: auth.ID, Bytes: auth.Bytes}); err != nil {
		return err
	}

	inv.mu.Lock()
	inv.authorizedDc[dcID] = true
	inv.mu.Unlock()
	return nil
}

func encode(call tl.Object) []byte {
	e := tl.NewEncoder(256)
	e.Object(call)
	return e.Bytes()
}

// classify turns whatever error the pool/sender surfaced into the
// caller-visible InvocationError taxonomy (spec.md §7).
func classify(err error) *rpcerr.InvocationError {
	if ie, ok := err.(*rpcerr.InvocationError); ok {
		return ie
	}
	if rpc, ok := err.(*sender.RPCError); ok {
		return rpcerr.FromRPCError(tl.RPCError{ErrorCode: rpc.Code, ErrorMessage: rpc.Message})
	}
	if merry.Is(err, sender.ErrDropped) {
		return &rpcerr.InvocationError{Kind: rpcerr.KindDropped, Cause: err}
	}
	var te *transport.Error
	if errors.As(err, &te) {
		return &rpcerr.InvocationError{Kind: rpcerr.KindTransport, Cause: err}
	}
	return &rpcerr.InvocationError{Kind: rpcerr.KindIo, Cause: err}
}

// sleepFor waits out delay via a single-shot rate.Limiter rather than a
// bare time.Sleep, matching how mtg throttles its own retries: the burst
// token is consumed immediately, then the second Wait blocks until the
// next token refills after delay.
func sleepFor(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	lim := rate.NewLimiter(rate.Every(delay), 1)
	if err := lim.Wait(ctx); err != nil {
		return err
	}
	return lim.Wait(ctx)
}
