package mtclient

import "github.com/gotdgram/mtclient/rpcerr"

// The caller-visible error taxonomy (spec.md §7) lives in package rpcerr so
// both this root package and invoker can depend on it without a cycle.
// These aliases keep the familiar mtclient.InvocationError spelling for
// library consumers.
type (
	Kind            = rpcerr.Kind
	RPCError        = rpcerr.RPCError
	InvocationError = rpcerr.InvocationError
)

const (
	KindRpc            = rpcerr.KindRpc
	KindIo             = rpcerr.KindIo
	KindTransport      = rpcerr.KindTransport
	KindDeserialize    = rpcerr.KindDeserialize
	KindDropped        = rpcerr.KindDropped
	KindInvalidDc      = rpcerr.KindInvalidDc
	KindAuthentication = rpcerr.KindAuthentication
)

var (
	ErrInvalidDc      = rpcerr.ErrInvalidDc
	ErrAuthentication = rpcerr.ErrAuthentication

	ParseRPCError = rpcerr.ParseRPCError
	FromRPCError  = rpcerr.FromRPCError
)
