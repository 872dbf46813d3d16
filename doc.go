// Package mtclient is a Telegram MTProto 2.0 client core: the record layer,
// a per-dc sender pool, an invoker with a retry policy, and an update
// sequencer, wired together behind the Client facade.
//
// The Diffie-Hellman handshake that produces a datacenter's auth key is a
// black-box collaborator (AuthKeyGen in package senderpool); this module
// drives it but does not implement it. TL schema generation beyond the
// hand-maintained subset in package tl, session persistence algorithms
// beyond the reference file store in package session, and anything above
// the wire (dialog/message helpers, a CLI) are likewise out of scope.
package mtclient
