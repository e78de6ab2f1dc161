package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestPlainFrameRoundTrip(t *testing.T) {
	payload := []byte("ping")
	buf, err := AppendFrame(nil, 0x3001, payload)
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}
	if len(buf) != HeaderLen+len(payload)+FooterLen {
		t.Fatalf("encoded length: got %d", len(buf))
	}

	hdr, status, err := Inspect(buf)
	if err != nil || status != StatusComplete {
		t.Fatalf("inspect: status=%v err=%v", status, err)
	}
	if hdr.Protocol != 0x3001 || int(hdr.Len) != len(payload) {
		t.Fatalf("header mismatch: %+v", hdr)
	}
	if !bytes.Equal(buf[HeaderLen:HeaderLen+int(hdr.Len)], payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestSessionFrameRoundTrip(t *testing.T) {
	payload := []byte("hello endpoint")
	buf, err := AppendSessionFrame(nil, 0x0bb2, payload)
	if err != nil {
		t.Fatalf("append session frame: %v", err)
	}

	hdr, status, err := Inspect(buf)
	if err != nil || status != StatusComplete {
		t.Fatalf("inspect: status=%v err=%v", status, err)
	}
	if hdr.Protocol != ProtocolSPP {
		t.Fatalf("outer protocol: got 0x%04x", hdr.Protocol)
	}
	if int(hdr.Len) != len(payload)+SessionOverhead {
		t.Fatalf("outer len: got %d", hdr.Len)
	}

	endpoint, inner, err := ParseSessionBody(buf[HeaderLen : HeaderLen+int(hdr.Len)])
	if err != nil {
		t.Fatalf("parse session body: %v", err)
	}
	if endpoint != 0x0bb2 {
		t.Fatalf("endpoint: got 0x%04x", endpoint)
	}
	if !bytes.Equal(inner, payload) {
		t.Fatalf("inner payload mismatch: %q", inner)
	}
}

func TestInspectBadHeaderSignature(t *testing.T) {
	buf, err := AppendFrame(nil, 0x3001, []byte("ping"))
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}
	buf[0] ^= 0x01 // single bit flip in the magic

	_, status, err := Inspect(buf)
	if status != StatusInvalid || !errors.Is(err, ErrBadHeaderSignature) {
		t.Fatalf("expected invalid/ErrBadHeaderSignature, got %v %v", status, err)
	}
}

func TestInspectOversizedLengthStopsAtHeader(t *testing.T) {
	// header only, claiming an impossible payload; Inspect must reject it
	// without needing any payload bytes present
	buf := EncodeHeader(Header{Signature: HeaderSignature, Protocol: 0x0001, Len: MaxPayloadLen + 1})
	_, status, err := Inspect(buf)
	if status != StatusInvalid || !errors.Is(err, ErrOversizedLength) {
		t.Fatalf("expected invalid/ErrOversizedLength, got %v %v", status, err)
	}
}

func TestInspectTruncatedIsIncomplete(t *testing.T) {
	full, err := AppendFrame(nil, 0x3001, []byte("ping"))
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}
	for cut := 0; cut < len(full); cut++ {
		_, status, err := Inspect(full[:cut])
		if status != StatusIncomplete || err != nil {
			t.Fatalf("cut=%d: expected incomplete, got %v %v", cut, status, err)
		}
	}
}

func TestInspectBadFooterSignature(t *testing.T) {
	buf, err := AppendFrame(nil, 0x3001, []byte("ping"))
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}
	buf[len(buf)-1] ^= 0xff

	_, status, err := Inspect(buf)
	if status != StatusInvalid || !errors.Is(err, ErrBadFooterSignature) {
		t.Fatalf("expected invalid/ErrBadFooterSignature, got %v %v", status, err)
	}
}

func TestAppendFrameRejectsOversizedPayload(t *testing.T) {
	if _, err := AppendFrame(nil, 0x0001, make([]byte, MaxPayloadLen+1)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := AppendSessionFrame(nil, 1, make([]byte, MaxPayloadLen-SessionOverhead+1)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestParseSessionBodyErrors(t *testing.T) {
	if _, _, err := ParseSessionBody([]byte{0, 1}); !errors.Is(err, ErrShortSessionBody) {
		t.Fatalf("expected ErrShortSessionBody, got %v", err)
	}
	// inner length claims 3 bytes, body carries 2
	if _, _, err := ParseSessionBody([]byte{0, 3, 0, 1, 0xaa, 0xbb}); !errors.Is(err, ErrSessionLenMismatch) {
		t.Fatalf("expected ErrSessionLenMismatch, got %v", err)
	}
}
