package wire

import (
	"encoding/binary"
	"errors"
)

// Wire format constants. These must match the peer emulator bit for bit;
// every multi-byte field is big-endian.
const (
	HeaderSignature uint16 = 0xFEED
	FooterSignature uint16 = 0xBEEF

	HeaderLen   = 6
	FooterLen   = 2
	EnvelopeLen = HeaderLen + FooterLen

	MaxPayloadLen = 2048

	// SessionOverhead is the inner length + endpoint prefix carried by
	// session-variant frames.
	SessionOverhead = 4
)

// Well-known protocol identifiers.
const (
	ProtocolSPP   uint16 = 0x0001
	ProtocolTests uint16 = 0x0063
)

var (
	ErrBadHeaderSignature = errors.New("wire: bad header signature")
	ErrBadFooterSignature = errors.New("wire: bad footer signature")
	ErrOversizedLength    = errors.New("wire: declared length exceeds max payload")
	ErrPayloadTooLarge    = errors.New("wire: payload too large")
	ErrShortSessionBody   = errors.New("wire: session body shorter than inner prefix")
	ErrSessionLenMismatch = errors.New("wire: inner length disagrees with body size")
)

// Header is the fixed wire header preceding every frame payload.
type Header struct {
	Signature uint16
	Protocol  uint16
	Len       uint16
}

// Footer closes every frame.
type Footer struct {
	Signature uint16
}

// Status classifies one decode attempt against a partially filled buffer.
type Status int

const (
	// StatusComplete means a full, valid frame starts at offset 0.
	StatusComplete Status = iota
	// StatusIncomplete means the frame is valid so far but not all of its
	// bytes have arrived yet. Not an error.
	StatusIncomplete
	// StatusInvalid means the buffered bytes cannot be a frame; the caller
	// must discard its backlog and resynchronize.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusIncomplete:
		return "incomplete"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], h.Signature)
	binary.BigEndian.PutUint16(buf[2:4], h.Protocol)
	binary.BigEndian.PutUint16(buf[4:6], h.Len)
	return buf
}

// DecodeHeader reads the fixed header at the start of b. The caller
// guarantees len(b) >= HeaderLen.
func DecodeHeader(b []byte) Header {
	return Header{
		Signature: binary.BigEndian.Uint16(b[0:2]),
		Protocol:  binary.BigEndian.Uint16(b[2:4]),
		Len:       binary.BigEndian.Uint16(b[4:6]),
	}
}

// Inspect validates the frame starting at offset 0 of buf, where buf holds
// every byte received so far. Checks run cheapest-first: header signature,
// declared length bound, completeness, footer signature. The length bound is
// checked before any length-derived offset is computed, so Inspect never
// reads past the header for an oversized claim.
func Inspect(buf []byte) (Header, Status, error) {
	if len(buf) < HeaderLen {
		return Header{}, StatusIncomplete, nil
	}
	h := DecodeHeader(buf)

	if h.Signature != HeaderSignature {
		return h, StatusInvalid, ErrBadHeaderSignature
	}
	if h.Len > MaxPayloadLen {
		return h, StatusInvalid, ErrOversizedLength
	}
	total := HeaderLen + int(h.Len) + FooterLen
	if len(buf) < total {
		return h, StatusIncomplete, nil
	}
	footer := binary.BigEndian.Uint16(buf[HeaderLen+int(h.Len):])
	if footer != FooterSignature {
		return h, StatusInvalid, ErrBadFooterSignature
	}
	return h, StatusComplete, nil
}

// AppendFrame appends a plain frame: header, payload, footer.
func AppendFrame(dst []byte, protocol uint16, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadLen {
		return dst, ErrPayloadTooLarge
	}
	dst = append(dst, EncodeHeader(Header{
		Signature: HeaderSignature,
		Protocol:  protocol,
		Len:       uint16(len(payload)),
	})...)
	dst = append(dst, payload...)
	return binary.BigEndian.AppendUint16(dst, FooterSignature), nil
}

// AppendSessionFrame appends the session-variant frame used by the outgoing
// send path: the outer header declares ProtocolSPP and a length covering the
// inner prefix, then a repeated 16-bit payload length, the 16-bit endpoint,
// the payload, and the footer.
func AppendSessionFrame(dst []byte, endpoint uint16, payload []byte) ([]byte, error) {
	if len(payload)+SessionOverhead > MaxPayloadLen {
		return dst, ErrPayloadTooLarge
	}
	dst = append(dst, EncodeHeader(Header{
		Signature: HeaderSignature,
		Protocol:  ProtocolSPP,
		Len:       uint16(len(payload) + SessionOverhead),
	})...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(payload)))
	dst = binary.BigEndian.AppendUint16(dst, endpoint)
	dst = append(dst, payload...)
	return binary.BigEndian.AppendUint16(dst, FooterSignature), nil
}

// ParseSessionBody splits a session-variant frame payload into its endpoint
// and inner payload.
func ParseSessionBody(body []byte) (endpoint uint16, payload []byte, err error) {
	if len(body) < SessionOverhead {
		return 0, nil, ErrShortSessionBody
	}
	inner := binary.BigEndian.Uint16(body[0:2])
	endpoint = binary.BigEndian.Uint16(body[2:4])
	if int(inner) != len(body)-SessionOverhead {
		return 0, nil, ErrSessionLenMismatch
	}
	return endpoint, body[SessionOverhead:], nil
}
