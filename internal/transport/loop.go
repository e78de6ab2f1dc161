package transport

import (
	"io"
	"sync"
)

// Loop is an in-memory adapter for tests: Feed plays the role of the wire
// delivering inbound bytes in whatever chunking the caller chooses, and
// outbound writes are captured per call.
type Loop struct {
	mu     sync.Mutex
	staged []byte
	sent   [][]byte
	armed  bool
	ready  func()
	closed bool
}

func NewLoop() *Loop {
	return &Loop{}
}

// Feed stages inbound bytes, firing the interrupt if armed.
func (l *Loop) Feed(p []byte) {
	l.mu.Lock()
	l.staged = append(l.staged, p...)
	fire := l.fireLocked()
	l.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// Sent returns a copy of every Write call observed, one element per call.
func (l *Loop) Sent() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.sent))
	for i, b := range l.sent {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

func (l *Loop) fireLocked() func() {
	if !l.armed || l.ready == nil || len(l.staged) == 0 {
		return nil
	}
	l.armed = false
	return l.ready
}

func (l *Loop) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := copy(p, l.staged)
	l.staged = l.staged[n:]
	if n == 0 && l.closed {
		return 0, io.EOF
	}
	return n, nil
}

func (l *Loop) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, append([]byte(nil), p...))
	return len(p), nil
}

func (l *Loop) EnableInterrupt() {
	l.mu.Lock()
	l.armed = true
	fire := l.fireLocked()
	l.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (l *Loop) SetReadyFunc(fn func()) {
	l.mu.Lock()
	l.ready = fn
	l.mu.Unlock()
}

func (l *Loop) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}
