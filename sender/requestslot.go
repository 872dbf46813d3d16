package sender

// Result is what a completed RequestSlot resolves with: either a decoded
// response body or an error classified by the caller (spec.md §7).
type Result struct {
	Body []byte
	Err  error
}

// RequestSlot awaits a reply for one outgoing message (spec.md §3
// RequestSlot). Owned by the sender until the reply arrives, a matching
// bad_msg_notification requires retry, or the connection drops.
type RequestSlot struct {
	MsgID    int64
	Body     []byte
	Response chan Result
	NeedAck  bool
}

// outboundRequest is what callers push down the sender's inbound channel:
// a serialized body plus the channel it expects its Result on. Response
// may be nil for fire-and-forget sends (pings, acks).
type outboundRequest struct {
	body     []byte
	response chan Result
}
