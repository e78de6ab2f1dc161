// Package link reassembles frames from a raw byte transport and dispatches
// their payloads to protocol endpoint handlers.
//
// Ownership boundary:
// - the reassembly buffer and its compaction discipline
//
// - the rx-ready signal and the single dispatch worker
//
// - serialization of all transport reads and writes
//
// - outgoing frame encoding (Send, SendFrame)
//
// Link does not own the endpoint registry and never parses endpoint payload
// bodies; it locates the handler for a protocol id and delegates.
//
// A framing failure of any kind discards the entire buffered backlog rather
// than scanning for the next signature. The peer resends; this layer does
// not buffer for retransmission.
package link
