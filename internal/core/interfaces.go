package core

// Frame is one encoded signaling envelope.
type Frame []byte

// ConnID identifies a single socket's lifetime. A client that reconnects gets
// a fresh ConnID; its domain.ClientID stays the same.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
