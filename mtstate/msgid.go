package mtstate

import "time"

// newMsgID computes a msg_id candidate from the current wall clock and a
// seconds offset (adjusted by the caller when the server reports skew):
// (unix_seconds+offset)<<32 | (nanos<<2), with the low two bits always zero
// (spec.md §3 MessageId, §4.2 assignment formula).
func newMsgID(offsetSeconds int32) int64 {
	now := time.Now()
	seconds := uint64(now.Unix() + int64(offsetSeconds))
	low32 := uint32(now.Nanosecond()) << 2
	return int64(seconds<<32 | uint64(low32))
}
