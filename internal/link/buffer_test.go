package link

import (
	"bytes"
	"errors"
	"testing"
)

func TestRxBufferAppendAllOrNothing(t *testing.T) {
	b := newRxBuffer(8)
	if err := b.append([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := b.append([]byte{6, 7, 8, 9}); !errors.Is(err, ErrRxOverflow) {
		t.Fatalf("expected ErrRxOverflow, got %v", err)
	}
	// failed append must leave state untouched
	if b.size() != 5 || !bytes.Equal(b.view(), []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("buffer corrupted after failed append: used=%d", b.size())
	}
	if err := b.append([]byte{6, 7, 8}); err != nil {
		t.Fatalf("append to exact capacity: %v", err)
	}
}

func TestRxBufferReset(t *testing.T) {
	b := newRxBuffer(8)
	if err := b.append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	b.reset()
	if b.size() != 0 {
		t.Fatalf("used after reset: %d", b.size())
	}
}

func TestRxBufferStripEnvelope(t *testing.T) {
	b := newRxBuffer(64)
	frame := append([]byte{0xFE, 0xED, 0x00, 0x01, 0x00, 0x03}, // header, len=3
		0xAA, 0xBB, 0xCC, // payload
		0xBE, 0xEF, // footer
	)
	trailing := []byte{0xFE, 0xED, 0x00}
	if err := b.append(append(frame, trailing...)); err != nil {
		t.Fatalf("append: %v", err)
	}

	b.stripEnvelope(3)
	if b.size() != 3+len(trailing) {
		t.Fatalf("used after strip: %d", b.size())
	}
	if !bytes.Equal(b.view()[:3], []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("payload not at offset 0: %x", b.view())
	}
	if !bytes.Equal(b.view()[3:], trailing) {
		t.Fatalf("trailing bytes not preserved: %x", b.view())
	}

	b.compactHead(3)
	if b.size() != len(trailing) || !bytes.Equal(b.view(), trailing) {
		t.Fatalf("compact: used=%d bytes=%x", b.size(), b.view())
	}
}
