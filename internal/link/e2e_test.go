package link

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/framelink/internal/testutil/testlog"
	"github.com/danmuck/framelink/internal/transport"
	"github.com/danmuck/framelink/internal/wire"
)

// Exercises the whole path over a real connection: peer writes a frame, the
// socket adapter interrupts, the worker reassembles and dispatches, the
// handler replies, and the peer reads the reply back.
func TestEchoOverSocketTransport(t *testing.T) {
	testlog.Start(t)
	local, remote := net.Pipe()
	sock := transport.NewSocket(local, zerolog.Nop())
	t.Cleanup(func() { _ = sock.Close(); _ = remote.Close() })

	reg := stubResolver{wire.ProtocolTests: func(p *Packet) {
		assert.NoError(t, p.Reply(p.Payload))
	}}
	lk := New(sock, reg, zerolog.Nop())
	require.NoError(t, lk.Start())
	t.Cleanup(func() { _ = lk.Close() })

	frame, err := wire.AppendFrame(nil, wire.ProtocolTests, []byte("echo me"))
	require.NoError(t, err)

	reply := make(chan []byte, 1)
	go func() {
		if _, err := remote.Write(frame); err != nil {
			return
		}
		var backlog []byte
		buf := make([]byte, 64)
		_ = remote.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			n, err := remote.Read(buf)
			if err != nil {
				return
			}
			backlog = append(backlog, buf[:n]...)
			if hdr, status, _ := wire.Inspect(backlog); status == wire.StatusComplete {
				assert.Equal(t, wire.ProtocolSPP, hdr.Protocol)
				endpoint, inner, perr := wire.ParseSessionBody(backlog[wire.HeaderLen : wire.HeaderLen+int(hdr.Len)])
				assert.NoError(t, perr)
				assert.Equal(t, wire.ProtocolTests, endpoint)
				reply <- inner
				return
			}
		}
	}()

	select {
	case body := <-reply:
		assert.Equal(t, []byte("echo me"), body)
	case <-time.After(5 * time.Second):
		t.Fatal("no echo reply")
	}
}
