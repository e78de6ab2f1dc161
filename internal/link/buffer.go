package link

import (
	"errors"
	"sync"

	"github.com/danmuck/framelink/internal/wire"
)

var ErrRxOverflow = errors.New("link: receive buffer capacity exceeded")

const (
	headerLen = wire.HeaderLen
	footerLen = wire.FooterLen
)

// rxBuffer is the single reassembly buffer for bytes not yet consumed into a
// decoded frame. One instance lives for the lifetime of a Link; it is never
// reallocated, only reset or compacted in place.
//
// The worker goroutine is the only mutator. The lock exists so that content
// and used-length always change together and no concurrent caller of the
// accessors can observe a partial update.
type rxBuffer struct {
	mu   sync.Mutex
	data []byte
	used int
}

func newRxBuffer(capacity int) *rxBuffer {
	return &rxBuffer{data: make([]byte, capacity)}
}

// append adds p at the current used-length. It either fully succeeds or, on
// capacity overflow, returns ErrRxOverflow leaving the buffer untouched.
func (b *rxBuffer) append(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used+len(p) > len(b.data) {
		return ErrRxOverflow
	}
	copy(b.data[b.used:], p)
	b.used += len(p)
	return nil
}

// reset discards all buffered bytes.
func (b *rxBuffer) reset() {
	b.mu.Lock()
	b.used = 0
	b.mu.Unlock()
}

// stripEnvelope removes the frame envelope around a validated payload of
// payloadLen bytes: the payload shifts to offset 0 and any trailing bytes of
// a following frame land directly after it, in order.
func (b *rxBuffer) stripEnvelope(payloadLen int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.data, b.data[headerLen:headerLen+payloadLen])
	copy(b.data[payloadLen:], b.data[headerLen+payloadLen+footerLen:b.used])
	b.used -= headerLen + footerLen
}

// compactHead shifts all bytes from offset n to offset 0 and shrinks the
// used-length by n.
func (b *rxBuffer) compactHead(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.data, b.data[n:b.used])
	b.used -= n
}

func (b *rxBuffer) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// view returns the filled region of the buffer. The slice aliases the
// buffer's backing array; only the worker may hold it across a mutation.
func (b *rxBuffer) view() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data[:b.used]
}
