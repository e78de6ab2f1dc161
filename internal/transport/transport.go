// Package transport adapts raw byte channels to the link's interrupt-style
// read model: an adapter stages inbound bytes as they arrive, and while the
// interrupt is armed the first staged byte disarms it and fires the ready
// callback exactly once. Read hands back staged bytes without blocking for
// arrival. EnableInterrupt re-arms, firing immediately when bytes are
// already staged, which models a level-triggered receive interrupt.
package transport

// Transport is a raw byte channel with an rx-ready interrupt.
type Transport interface {
	// Read copies staged inbound bytes into p. It returns 0 when nothing
	// is staged; it never blocks waiting for arrival.
	Read(p []byte) (int, error)
	// Write sends p toward the peer.
	Write(p []byte) (int, error)
	// EnableInterrupt re-arms the rx-ready interrupt.
	EnableInterrupt()
	// SetReadyFunc binds the callback fired from the adapter's own
	// context when staged data exists and the interrupt is armed. The
	// callback must not block.
	SetReadyFunc(func())
	Close() error
}
