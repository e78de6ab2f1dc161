package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Socket adapts a net.Conn (the emulator's serial channel, tcp or unix) to
// the Transport contract. A reader goroutine stages inbound bytes; the
// interrupt arm/disarm state lives under one mutex with the staging buffer.
type Socket struct {
	conn net.Conn
	id   string
	log  zerolog.Logger

	mu          sync.Mutex
	staged      []byte
	armed       bool
	ready       func()
	readErr     error
	errNotified bool
	closed      bool
}

// DialSocket connects to the emulator channel and starts staging.
func DialSocket(network, addr string, log zerolog.Logger) (*Socket, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s %s: %w", network, addr, err)
	}
	return NewSocket(conn, log), nil
}

// NewSocket wraps an established connection and starts staging.
func NewSocket(conn net.Conn, log zerolog.Logger) *Socket {
	id := uuid.NewString()
	s := &Socket{
		conn: conn,
		id:   id,
		log:  log.With().Str("conn_id", id).Logger(),
	}
	go s.stage()
	return s
}

func (s *Socket) stage() {
	buf := make([]byte, 512)
	for {
		n, err := s.conn.Read(buf)
		s.mu.Lock()
		if n > 0 {
			s.staged = append(s.staged, buf[:n]...)
		}
		if err != nil {
			s.readErr = err
		}
		fire := s.fireLocked()
		s.mu.Unlock()
		if fire != nil {
			fire()
		}
		if err != nil {
			if !s.isClosed() {
				s.log.Warn().Err(err).Msg("transport read loop ended")
			}
			return
		}
	}
}

// fireLocked disarms and returns the ready callback when there is a reason
// to wake the worker. Caller holds s.mu; the callback runs unlocked. A read
// error wakes the worker at most once so re-arming after a dead connection
// cannot spin.
func (s *Socket) fireLocked() func() {
	if !s.armed || s.ready == nil {
		return nil
	}
	if len(s.staged) == 0 {
		if s.readErr == nil || s.errNotified {
			return nil
		}
		s.errNotified = true
	}
	s.armed = false
	return s.ready
}

// ID is the stable identifier this adapter logs under.
func (s *Socket) ID() string {
	return s.id
}

func (s *Socket) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.staged)
	s.staged = s.staged[n:]
	if n == 0 && s.readErr != nil {
		return 0, s.readErr
	}
	return n, nil
}

func (s *Socket) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

func (s *Socket) EnableInterrupt() {
	s.mu.Lock()
	s.armed = true
	fire := s.fireLocked()
	s.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (s *Socket) SetReadyFunc(fn func()) {
	s.mu.Lock()
	s.ready = fn
	s.mu.Unlock()
}

func (s *Socket) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Socket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
