package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/geohunt/arcoin/pkg/streaming"
)

const (
	outboxSize     = 10_000
	ackBuffer      = 16
	redialAttempts = 10
	redialCap      = 30 * time.Second
	writeDeadline  = 10 * time.Second
	ackDeadline    = 10 * time.Second
)

// socket wraps one gorilla connection behind an outbox drained by a
// single writer goroutine, with ack routing and automatic redial. The
// session greeting is cached so a redial can re-identify the hunt to the
// server before any further records flow.
type socket struct {
	mu       sync.Mutex
	conn     *ws.Conn
	shutdown bool

	outbox chan []byte
	acks   chan streaming.AckMessage
	quit   chan struct{}

	addr     string
	secret   string
	greeting []byte

	log *slog.Logger
}

func newSocket(log *slog.Logger) *socket {
	return &socket{
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan streaming.AckMessage, ackBuffer),
		quit:   make(chan struct{}),
		log:    log,
	}
}

// current returns the live connection, nil when disconnected.
func (s *socket) current() *ws.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// open dials the server and starts the writer and reader goroutines.
func (s *socket) open(rawURL, secret string) error {
	s.addr = rawURL
	s.secret = secret

	conn, err := s.dial()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.writer()
	go s.reader()
	return nil
}

// dial performs one connection attempt, passing the stream secret as a
// query parameter.
func (s *socket) dial() (*ws.Conn, error) {
	u, err := url.Parse(s.addr)
	if err != nil {
		return nil, fmt.Errorf("invalid stream URL %q: %w", s.addr, err)
	}
	q := u.Query()
	q.Set("secret", s.secret)
	u.RawQuery = q.Encode()

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("stream dial: %w", err)
	}
	return conn, nil
}

// writer drains the outbox onto the wire. It exits on shutdown or on the
// first write error, handing off to redial.
func (s *socket) writer() {
	for {
		select {
		case <-s.quit:
			return
		case payload := <-s.outbox:
			conn := s.current()
			if conn == nil {
				continue
			}
			if err := s.write(conn, payload); err != nil {
				s.log.Warn("stream write failed", "error", err)
				go s.redial()
				return
			}
		}
	}
}

func (s *socket) write(conn *ws.Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, payload)
}

// reader routes server acks to the acks channel, dropping anything else.
func (s *socket) reader() {
	for {
		conn := s.current()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			s.log.Warn("stream read failed", "error", err)
			go s.redial()
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(raw, &ack); err != nil || ack.Type != "ack" {
			s.log.Debug("ignoring non-ack stream message", "raw", string(raw))
			continue
		}
		select {
		case s.acks <- ack:
		default:
			s.log.Debug("ack buffer full, dropping", "for", ack.For)
		}
	}
}

// redial re-establishes the connection with doubling backoff, replays the
// cached session greeting and restarts the goroutine pair. It gives up
// after redialAttempts tries.
func (s *socket) redial() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	greeting := s.greeting
	s.mu.Unlock()

	backoff := time.Second
	for attempt := 1; attempt <= redialAttempts; attempt++ {
		select {
		case <-s.quit:
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > redialCap {
			backoff = redialCap
		}

		conn, err := s.dial()
		if err != nil {
			s.log.Warn("stream redial failed", "attempt", attempt, "error", err)
			continue
		}

		if greeting != nil {
			if err := s.write(conn, greeting); err != nil {
				s.log.Warn("session greeting replay failed", "error", err)
				_ = conn.Close()
				continue
			}
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.log.Info("stream reconnected", "attempt", attempt)
		go s.writer()
		go s.reader()
		return
	}

	s.log.Error("stream gone after redial attempts", "attempts", redialAttempts)
}

// send queues a payload without blocking; when the outbox is full the
// payload is dropped, never the tick.
func (s *socket) send(payload []byte) {
	select {
	case s.outbox <- payload:
	default:
		s.log.Warn("stream outbox full, dropping message")
	}
}

// sendAwaitAck queues a payload and blocks until the server acks it by
// name or the deadline passes. Session boundaries use this; bulk records
// never do.
func (s *socket) sendAwaitAck(payload []byte, ackFor string, deadline time.Duration) error {
	s.send(payload)

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		select {
		case ack := <-s.acks:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("no ack for %q within %s", ackFor, deadline)
		case <-s.quit:
			return fmt.Errorf("stream closed awaiting ack for %q", ackFor)
		}
	}
}

// close sends a close frame once and stops both goroutines.
func (s *socket) close() error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	close(s.quit)
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteMessage(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
	return conn.Close()
}
