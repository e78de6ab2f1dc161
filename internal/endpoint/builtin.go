package endpoint

import (
	"encoding/binary"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/framelink/internal/link"
	"github.com/danmuck/framelink/internal/wire"
)

// ProtocolTime answers with the current unix time.
const ProtocolTime uint16 = 0x0065

// RegisterBuiltins installs the stock endpoints every deployment carries:
// ping echoes its payload, time replies with a big-endian u32 unix time.
func RegisterBuiltins(r *Registry, log zerolog.Logger) error {
	if err := r.Register(wire.ProtocolTests, "ping", pingHandler(log)); err != nil {
		return err
	}
	return r.Register(ProtocolTime, "time", timeHandler(log))
}

func pingHandler(log zerolog.Logger) link.Handler {
	return func(p *link.Packet) {
		if err := p.ReplyFrame(p.Payload); err != nil {
			log.Error().Err(err).Msg("ping reply failed")
		}
	}
}

func timeHandler(log zerolog.Logger) link.Handler {
	return func(p *link.Packet) {
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, uint32(time.Now().Unix()))
		if err := p.ReplyFrame(out); err != nil {
			log.Error().Err(err).Msg("time reply failed")
		}
	}
}
