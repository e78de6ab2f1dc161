// framelink-ping plays the emulator side of the channel for smoke testing:
// it listens where framelinkd dials, and once the daemon connects it frames
// a payload for the ping endpoint and waits for the echoed reply.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/danmuck/framelink/internal/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "framelink-ping: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	network := flag.String("network", "tcp", "transport network (tcp or unix)")
	addr := flag.String("listen", "127.0.0.1:12344", "address framelinkd dials")
	payload := flag.String("payload", "ping", "payload to echo")
	timeout := flag.Duration("timeout", 10*time.Second, "connect and reply timeout")
	flag.Parse()

	ln, err := net.Listen(*network, *addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	fmt.Printf("listening on %s, waiting for framelinkd\n", *addr)

	if dl, ok := ln.(interface{ SetDeadline(time.Time) error }); ok {
		if err := dl.SetDeadline(time.Now().Add(*timeout)); err != nil {
			return err
		}
	}
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("waiting for daemon: %w", err)
	}
	defer conn.Close()

	out, err := wire.AppendFrame(nil, wire.ProtocolTests, []byte(*payload))
	if err != nil {
		return err
	}

	start := time.Now()
	if _, err := conn.Write(out); err != nil {
		return err
	}
	if err := conn.SetReadDeadline(time.Now().Add(*timeout)); err != nil {
		return err
	}

	// reassemble the reply across however many reads it takes
	var backlog []byte
	chunk := make([]byte, 256)
	for {
		n, err := conn.Read(chunk)
		if err != nil {
			return fmt.Errorf("waiting for reply: %w", err)
		}
		backlog = append(backlog, chunk[:n]...)

		hdr, status, ierr := wire.Inspect(backlog)
		switch status {
		case wire.StatusInvalid:
			return fmt.Errorf("invalid reply frame: %w", ierr)
		case wire.StatusIncomplete:
			continue
		}

		body := backlog[wire.HeaderLen : wire.HeaderLen+int(hdr.Len)]
		if hdr.Protocol == wire.ProtocolSPP {
			// session-variant reply; unwrap the inner payload
			_, inner, perr := wire.ParseSessionBody(body)
			if perr != nil {
				return fmt.Errorf("invalid session reply: %w", perr)
			}
			body = inner
		}
		if !bytes.Equal(body, []byte(*payload)) {
			return fmt.Errorf("reply payload mismatch: %q", body)
		}
		fmt.Printf("reply protocol=0x%04x len=%d rtt=%s\n", hdr.Protocol, hdr.Len, time.Since(start))
		return nil
	}
}
