package listener

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/journal"
)

const recordTimeout = 5 * time.Second

var errInvalidText = errors.New("payload is not valid UTF-8 text")

// handleConnection reads the whole stream, compares it with the secret and
// triggers a shutdown on an exact match. There is no read deadline: a peer
// that never closes its write side keeps this goroutine alive.
func (s *Service) handleConnection(conn net.Conn) {
	defer conn.Close()

	attempt := journal.Attempt{
		ID:         journal.NewID(),
		ReceivedAt: time.Now(),
		RemoteAddr: conn.RemoteAddr().String(),
		LocalAddr:  conn.LocalAddr().String(),
	}
	attempt.ExpectedLocal = s.expectedLocal(conn.LocalAddr())

	s.debugf("%s: new connection from %s on %s", attempt.ID, attempt.RemoteAddr, attempt.LocalAddr)
	if !attempt.ExpectedLocal {
		log.Printf("[Listener] %s: local address %s is not in the configured address set (not enforced)", attempt.ID, attempt.LocalAddr)
	}

	data, err := io.ReadAll(conn)
	attempt.PayloadBytes = len(data)
	if err == nil && !utf8.Valid(data) {
		err = errInvalidText
	}
	if err != nil {
		log.Printf("[Listener] %s: an error occurred, terminating connection with %s: %v", attempt.ID, attempt.RemoteAddr, err)
		conn.Close()
		attempt.Outcome = journal.OutcomeReadError
		attempt.Detail = err.Error()
		s.record(attempt)
		return
	}

	input := strings.TrimSpace(string(data))
	s.debugf("%s: received %d bytes", attempt.ID, len(data))

	if input != s.cfg.Secret {
		log.Printf("[Listener] %s: secret mismatch from %s", attempt.ID, attempt.RemoteAddr)
		attempt.Outcome = journal.OutcomeRejected
		s.record(attempt)
		return
	}

	if err := s.trigger.Shutdown(); err != nil {
		log.Printf("[Listener] %s: failed to shut down: %v", attempt.ID, err)
		attempt.Outcome = journal.OutcomeTriggerFailed
		attempt.Detail = err.Error()
		s.record(attempt)
		return
	}

	log.Printf("[Listener] %s: shutting down (requested by %s)", attempt.ID, attempt.RemoteAddr)
	attempt.Outcome = journal.OutcomeAccepted
	s.record(attempt)
}

func (s *Service) expectedLocal(addr net.Addr) bool {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return false
	}
	return s.cfg.Contains(tcpAddr.AddrPort().Addr())
}

func (s *Service) record(a journal.Attempt) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, a); err != nil {
		log.Printf("[Listener] WARNING: failed to record attempt %s: %v", a.ID, err)
	}
}
