// Package rpcerr holds the caller-visible error taxonomy spec.md §7
// describes (Rpc/Io/Transport/Deserialize/Dropped/InvalidDc/Authentication).
// It lives outside the root package so both the root client and invoker can
// depend on it without an import cycle.
package rpcerr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"

	"github.com/gotdgram/mtclient/tl"
)

// numericInfix matches the first "_<digits>" run in an error string, e.g.
// the "_31" in "FLOOD_WAIT_31" or the "_2" in "INTERDC_2_CALL_ERROR".
var numericInfix = regexp.MustCompile(`_([0-9]+)`)

// ErrInvalidDc is returned when a caller targets a dc_id the session does
// not know about (spec.md §7 InvalidDc).
var ErrInvalidDc = merry.New("mtclient: unknown dc_id")

// ErrAuthentication wraps an auth_key_gen failure (spec.md §7
// Authentication).
var ErrAuthentication = merry.New("mtclient: authentication failed")

// Kind discriminates InvocationError, mirroring grammers-mtsender's error
// enum one-for-one (spec.md §7).
type Kind int

const (
	KindRpc Kind = iota
	KindIo
	KindTransport
	KindDeserialize
	KindDropped
	KindInvalidDc
	KindAuthentication
)

// RPCError is the parsed, caller-visible shape of a server rejection
// (spec.md §7 Rpc, §8 property 7).
type RPCError struct {
	Code     int32
	Name     string
	Value    *int32
	CausedBy *uint32
}

func (e *RPCError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("rpc error %d: %s (%d)", e.Code, e.Name, *e.Value)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Name)
}

// Is reports whether name matches pattern, where pattern may carry a
// leading and/or trailing '*' wildcard (spec.md §7 "leading/trailing *
// wildcard").
func (e *RPCError) Is(pattern string) bool {
	prefix := strings.HasPrefix(pattern, "*")
	suffix := strings.HasSuffix(pattern, "*")
	core := strings.Trim(pattern, "*")
	switch {
	case prefix && suffix:
		return strings.Contains(e.Name, core)
	case prefix:
		return strings.HasSuffix(e.Name, core)
	case suffix:
		return strings.HasPrefix(e.Name, core)
	default:
		return e.Name == core
	}
}

// ParseRPCError splits a raw rpc_error into {name, value} per spec.md §8
// property 7: the first "_<digits>" run, wherever it occurs, is split out
// as Value and removed from Name (e.g. "FLOOD_WAIT_31" -> {"FLOOD_WAIT",
// 31}, "INTERDC_2_CALL_ERROR" -> {"INTERDC_CALL_ERROR", 2}).
func ParseRPCError(code int32, raw string) *RPCError {
	loc := numericInfix.FindStringSubmatchIndex(raw)
	if loc == nil {
		return &RPCError{Code: code, Name: raw}
	}
	n, err := strconv.ParseInt(raw[loc[2]:loc[3]], 10, 32)
	if err != nil {
		return &RPCError{Code: code, Name: raw}
	}
	v := int32(n)
	name := raw[:loc[0]] + raw[loc[1]:]
	return &RPCError{Code: code, Name: name, Value: &v}
}

// InvocationError is the error type invoke()/invoke_in_dc() return,
// covering every caller-visible failure class (spec.md §7).
type InvocationError struct {
	Kind  Kind
	Rpc   *RPCError
	Cause error
}

func (e *InvocationError) Error() string {
	switch e.Kind {
	case KindRpc:
		return e.Rpc.Error()
	case KindIo:
		return fmt.Sprintf("mtclient: io error: %v", e.Cause)
	case KindTransport:
		return fmt.Sprintf("mtclient: transport error: %v", e.Cause)
	case KindDeserialize:
		return fmt.Sprintf("mtclient: deserialize error: %v", e.Cause)
	case KindDropped:
		return "mtclient: request dropped before completion"
	case KindInvalidDc:
		return "mtclient: invalid dc_id"
	case KindAuthentication:
		return fmt.Sprintf("mtclient: authentication error: %v", e.Cause)
	default:
		return "mtclient: unknown error"
	}
}

func (e *InvocationError) Unwrap() error { return e.Cause }

// Is applies the RPC name-pattern matcher when the receiver wraps an RPC
// error and reports false for every other kind. It takes a pattern string,
// so it does not take part in errors.Is matching.
func (e *InvocationError) Is(pattern string) bool {
	return e.Kind == KindRpc && e.Rpc != nil && e.Rpc.Is(pattern)
}

// FromRPCError turns a decoded tl.RPCError into a caller-facing
// InvocationError.
func FromRPCError(raw tl.RPCError) *InvocationError {
	return &InvocationError{Kind: KindRpc, Rpc: ParseRPCError(raw.ErrorCode, raw.ErrorMessage)}
}
