package link

// Handler consumes one decoded inbound packet. Handlers run synchronously on
// the dispatch worker; a slow handler stalls the drain cycle.
type Handler func(*Packet)

// Resolver maps a wire protocol identifier to its handler. The registry is
// consulted, never mutated, by the dispatch loop.
type Resolver interface {
	Resolve(protocol uint16) (Handler, bool)
}

// Packet is one decoded frame payload handed to an endpoint handler. The
// payload is the handler's to keep; it does not alias the receive buffer.
type Packet struct {
	Protocol uint16
	Payload  []byte

	link *Link
}

// Reply sends data back through the session send path, addressed by the
// packet's protocol id. The capability is bound at dispatch time so
// handlers can answer without holding a reference to the link.
func (p *Packet) Reply(data []byte) error {
	if p.link == nil {
		return ErrInactive
	}
	return p.link.Send(p.Protocol, data)
}

// ReplyFrame answers with a plain frame on the packet's protocol, the shape
// protocol-level test endpoints use.
func (p *Packet) ReplyFrame(data []byte) error {
	if p.link == nil {
		return ErrInactive
	}
	return p.link.SendFrame(p.Protocol, data)
}
