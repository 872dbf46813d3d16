package invoker

import (
	"time"

	"github.com/gotdgram/mtclient/rpcerr"
)

// Decision is what a Policy returns for one failed attempt (spec.md §4.5
// "Continue(delay) or Break").
type Decision struct {
	Continue bool
	Delay    time.Duration
}

func continueAfter(d time.Duration) Decision { return Decision{Continue: true, Delay: d} }

var breakDecision = Decision{}

// RetryContext is what a Policy inspects to decide whether to retry.
type RetryContext struct {
	FailCount  int
	SleptSoFar time.Duration
	Err        error
}

// Policy is the strategy-object collaborator spec.md §4.5 describes: a
// function from RetryContext to Continue(delay) or Break.
type Policy func(RetryContext) Decision

// DefaultPolicy implements spec.md §4.5's table exactly:
//
//	Rpc(420 FLOOD_WAIT_N)     continue once if N <= floodSleepThreshold
//	Rpc(500 *)                continue with min(failCount*2s, 30s), up to ~5 attempts
//	Rpc(303 *_MIGRATE_N)      never retried here
//	Io/Transport/Dropped      continue up to 5 attempts, exponential backoff
//	anything else             break
func DefaultPolicy(floodSleepThreshold int32) Policy {
	return func(rc RetryContext) Decision {
		ie, ok := rc.Err.(*rpcerr.InvocationError)
		if !ok {
			return breakDecision
		}

		switch ie.Kind {
		case rpcerr.KindRpc:
			rpc := ie.Rpc
			if rpc == nil {
				return breakDecision
			}
			switch rpc.Code {
			case 420:
				if rpc.Value != nil && *rpc.Value <= floodSleepThreshold && rc.SleptSoFar == 0 {
					return continueAfter(time.Duration(*rpc.Value) * time.Second)
				}
				return breakDecision
			case 500:
				if rc.FailCount >= 5 {
					return breakDecision
				}
				delay := time.Duration(rc.FailCount) * 2 * time.Second
				if delay > 30*time.Second {
					delay = 30 * time.Second
				}
				return continueAfter(delay)
			case 303:
				// *_MIGRATE_N: the higher layer is expected to re-issue in
				// the hinted dc (spec.md §6), not retried here.
				return breakDecision
			default:
				return breakDecision
			}

		case rpcerr.KindIo, rpcerr.KindTransport, rpcerr.KindDropped:
			if rc.FailCount >= 5 {
				return breakDecision
			}
			delay := time.Duration(1<<uint(rc.FailCount)) * time.Second
			if delay > 30*time.Second {
				delay = 30 * time.Second
			}
			return continueAfter(delay)

		default:
			return breakDecision
		}
	}
}
