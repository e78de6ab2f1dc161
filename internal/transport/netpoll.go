package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/netpoll"
	"github.com/rs/zerolog"
)

// Netpoll adapts a cloudwego/netpoll connection: the event loop's OnRequest
// callback is the rx-ready interrupt source. OnRequest moves everything out
// of netpoll's nocopy reader into the staging buffer, so the event loop is
// never left holding unconsumed bytes it would re-trigger on.
type Netpoll struct {
	conn netpoll.Connection
	log  zerolog.Logger

	mu     sync.Mutex
	staged []byte
	armed  bool
	ready  func()
}

// DialNetpoll connects to the emulator channel through the netpoll event
// loop.
func DialNetpoll(network, addr string, timeout time.Duration, log zerolog.Logger) (*Netpoll, error) {
	conn, err := netpoll.NewDialer().DialConnection(network, addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: netpoll dial %s %s: %w", network, addr, err)
	}
	t := &Netpoll{conn: conn, log: log}
	if err := conn.SetOnRequest(t.onRequest); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("transport: netpoll on-request: %w", err)
	}
	t.log.Debug().Str("network", network).Str("addr", addr).Msg("netpoll transport connected")
	return t, nil
}

func (t *Netpoll) onRequest(_ context.Context, conn netpoll.Connection) error {
	reader := conn.Reader()
	n := reader.Len()
	if n == 0 {
		return nil
	}
	buf, err := reader.ReadBinary(n)
	if err != nil {
		return err
	}
	if err := reader.Release(); err != nil {
		return err
	}

	t.mu.Lock()
	t.staged = append(t.staged, buf...)
	fire := t.fireLocked()
	t.mu.Unlock()
	if fire != nil {
		fire()
	}
	return nil
}

func (t *Netpoll) fireLocked() func() {
	if !t.armed || t.ready == nil || len(t.staged) == 0 {
		return nil
	}
	t.armed = false
	return t.ready
}

func (t *Netpoll) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := copy(p, t.staged)
	t.staged = t.staged[n:]
	return n, nil
}

func (t *Netpoll) Write(p []byte) (int, error) {
	writer := t.conn.Writer()
	n, err := writer.WriteBinary(p)
	if err != nil {
		return n, err
	}
	return n, writer.Flush()
}

func (t *Netpoll) EnableInterrupt() {
	t.mu.Lock()
	t.armed = true
	fire := t.fireLocked()
	t.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (t *Netpoll) SetReadyFunc(fn func()) {
	t.mu.Lock()
	t.ready = fn
	t.mu.Unlock()
}

func (t *Netpoll) Close() error {
	return t.conn.Close()
}
