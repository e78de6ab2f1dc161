package link

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/danmuck/framelink/internal/observability"
	"github.com/danmuck/framelink/internal/wire"
)

var (
	ErrNoTransport   = errors.New("link: no transport configured")
	ErrNoResolver    = errors.New("link: no endpoint resolver configured")
	ErrAlreadyActive = errors.New("link: already active")
	ErrInactive      = errors.New("link: not active")
	ErrInvalidConfig = errors.New("link: invalid config")
)

// Transport is the raw byte channel the link frames over. Read returns
// whatever bytes the adapter has staged without blocking for arrival; the
// ready callback fires from the adapter's own context when staged data
// exists and the interrupt is armed, and must not block.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	EnableInterrupt()
	SetReadyFunc(func())
}

// Config tunes the dispatch loop.
type Config struct {
	// ChunkSize bounds one transport read inside the drain cycle.
	ChunkSize int
	// RxBufferCap is the fixed reassembly buffer capacity.
	RxBufferCap int
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:   64,
		RxBufferCap: 4096,
	}
}

func (c Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.RxBufferCap < wire.EnvelopeLen+wire.MaxPayloadLen {
		return fmt.Errorf("%w: rx buffer cap %d below one max frame", ErrInvalidConfig, c.RxBufferCap)
	}
	return nil
}

// outcome is the result of one frame-handling attempt against the buffer.
type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeBufferHasData
	outcomeMoreData
	outcomeInvalid
)

// Link owns the receive path for one transport: the reassembly buffer, the
// rx-ready signal, the single dispatch worker, and the outgoing send path.
// All transport reads and writes serialize on one mutex so traffic in the
// two directions never interleaves mid-frame.
type Link struct {
	cfg Config
	tr  Transport
	reg Resolver
	log zerolog.Logger

	rx *rxBuffer

	ioMu   sync.Mutex
	ready  chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	active atomic.Bool
}

func New(tr Transport, reg Resolver, log zerolog.Logger) *Link {
	return NewWithConfig(DefaultConfig(), tr, reg, log)
}

func NewWithConfig(cfg Config, tr Transport, reg Resolver, log zerolog.Logger) *Link {
	return &Link{
		cfg:   cfg,
		tr:    tr,
		reg:   reg,
		log:   log,
		rx:    newRxBuffer(cfg.RxBufferCap),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Start validates the wiring, binds the transport's rx-ready callback,
// launches the one dispatch worker, and arms the interrupt. Failure here is
// terminal for the subsystem; there is no partial-init rollback.
func (l *Link) Start() error {
	if l.tr == nil {
		return ErrNoTransport
	}
	if l.reg == nil {
		return ErrNoResolver
	}
	if err := l.cfg.validate(); err != nil {
		return err
	}
	if !l.active.CompareAndSwap(false, true) {
		return ErrAlreadyActive
	}
	// a fresh stop channel each activation keeps Start usable after Close
	l.done = make(chan struct{})
	l.tr.SetReadyFunc(l.OnRxReady)
	l.wg.Add(1)
	go l.run()
	l.tr.EnableInterrupt()
	l.log.Info().Int("chunk_size", l.cfg.ChunkSize).Int("rx_cap", l.cfg.RxBufferCap).Msg("link started")
	return nil
}

// Close stops the dispatch worker and deactivates the send path.
func (l *Link) Close() error {
	if !l.active.CompareAndSwap(true, false) {
		return ErrInactive
	}
	close(l.done)
	l.wg.Wait()
	return nil
}

// OnRxReady is the interrupt callback handed to the transport. It is
// non-blocking and coalescing: any number of signals before the worker wakes
// collapse into one readiness. Safe to call from any goroutine.
func (l *Link) OnRxReady() {
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *Link) run() {
	defer l.wg.Done()
	chunk := make([]byte, l.cfg.ChunkSize)
	for {
		select {
		case <-l.done:
			return
		case <-l.ready:
		}
		l.drain(chunk)
		l.tr.EnableInterrupt()
	}
}

// drain is one pass of the inner loop: read available bytes, attempt to
// decode and dispatch, repeat until a terminal outcome. A consumed frame
// with trailing bytes re-attempts decode immediately, without waiting for a
// new signal; back-to-back frames arriving in one burst depend on that.
func (l *Link) drain(chunk []byte) {
	done := false
	for !done {
		l.ioMu.Lock()
		n, err := l.tr.Read(chunk)
		l.ioMu.Unlock()
		if err != nil {
			l.log.Error().Err(err).Msg("transport read failed")
			l.rx.reset()
			observability.SetRxBufferUsed(0)
			return
		}
		if n > 0 {
			observability.RecordBytesRead(n)
			if aerr := l.rx.append(chunk[:n]); aerr != nil {
				l.log.Error().Err(aerr).Int("used", l.rx.size()).Msg("rx buffer overflow, dropping backlog")
				observability.RecordFrameInvalid("overflow")
				l.rx.reset()
				observability.SetRxBufferUsed(0)
				break
			}
			observability.SetRxBufferUsed(l.rx.size())
		}

		switch l.handleFrame() {
		case outcomeProcessed, outcomeMoreData:
			done = true
		case outcomeInvalid:
			l.rx.reset()
			observability.SetRxBufferUsed(0)
			done = true
		case outcomeBufferHasData:
			// loop again without waiting; the next read is free to
			// return zero bytes
		}
	}
}

// handleFrame attempts to decode and dispatch exactly one frame from the
// front of the reassembly buffer.
func (l *Link) handleFrame() outcome {
	if l.rx.size() < wire.HeaderLen {
		return outcomeMoreData
	}

	hdr, status, err := wire.Inspect(l.rx.view())
	switch status {
	case wire.StatusInvalid:
		l.log.Error().Err(err).
			Uint16("signature", hdr.Signature).
			Uint16("protocol", hdr.Protocol).
			Uint16("len", hdr.Len).
			Msg("invalid frame, dropping backlog")
		observability.RecordFrameInvalid(invalidReason(err))
		return outcomeInvalid
	case wire.StatusIncomplete:
		l.log.Debug().Uint16("len", hdr.Len).Int("used", l.rx.size()).Msg("more data required")
		return outcomeMoreData
	}

	handler, found := l.reg.Resolve(hdr.Protocol)
	if !found {
		// not a framing error; the frame is still consumed
		l.log.Warn().Uint16("protocol", hdr.Protocol).Msg("unknown protocol, skipping dispatch")
		observability.RecordUnknownProtocol(hdr.Protocol)
	}

	payloadLen := int(hdr.Len)
	l.rx.stripEnvelope(payloadLen)

	if found {
		payload := make([]byte, payloadLen)
		copy(payload, l.rx.view()[:payloadLen])
		handler(&Packet{Protocol: hdr.Protocol, Payload: payload, link: l})
		observability.RecordFrameProcessed(hdr.Protocol)
	}

	l.rx.compactHead(payloadLen)
	observability.SetRxBufferUsed(l.rx.size())

	if l.rx.size() > 0 {
		return outcomeBufferHasData
	}
	return outcomeProcessed
}

// Send encodes data as a session-variant frame addressed to endpoint and
// writes it under the transport mutex. It is a no-op returning ErrInactive
// when the link is not active.
func (l *Link) Send(endpoint uint16, data []byte) error {
	if !l.active.Load() {
		return ErrInactive
	}
	buf, err := wire.AppendSessionFrame(nil, endpoint, data)
	if err != nil {
		return err
	}
	return l.write(buf)
}

// SendFrame encodes data as a plain frame on protocol and writes it under
// the transport mutex.
func (l *Link) SendFrame(protocol uint16, data []byte) error {
	if !l.active.Load() {
		return ErrInactive
	}
	buf, err := wire.AppendFrame(nil, protocol, data)
	if err != nil {
		return err
	}
	return l.write(buf)
}

func (l *Link) write(buf []byte) error {
	l.ioMu.Lock()
	defer l.ioMu.Unlock()
	n, err := l.tr.Write(buf)
	if err != nil {
		return fmt.Errorf("link: transport write: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("link: short transport write: %d of %d", n, len(buf))
	}
	observability.RecordBytesWritten(n)
	observability.RecordFrameSent()
	return nil
}

func invalidReason(err error) string {
	switch {
	case errors.Is(err, wire.ErrBadHeaderSignature):
		return "header_signature"
	case errors.Is(err, wire.ErrBadFooterSignature):
		return "footer_signature"
	case errors.Is(err, wire.ErrOversizedLength):
		return "oversized_length"
	default:
		return "unknown"
	}
}
