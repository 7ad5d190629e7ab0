// Package listener accepts TCP connections carrying a shared secret and
// powers the machine off when a peer presents the configured secret.
//
// The protocol is unframed: a peer writes the secret as text and closes its
// write side. Nothing is written back. The configured address set is only
// used for diagnostics; connections arriving on other local addresses are
// still served.
package listener

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/config"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/journal"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/power"
)

// Recorder receives one Attempt per handled connection.
type Recorder interface {
	Record(ctx context.Context, a journal.Attempt) error
}

// Options configures a Service.
type Options struct {
	Config   config.Configuration
	Trigger  power.Trigger
	Recorder Recorder // optional
	Verbose  bool     // log per-connection debug lines
}

// Service is the shutdown listener. The configuration is copied at
// construction and never changes afterwards.
type Service struct {
	cfg      config.Configuration
	trigger  power.Trigger
	recorder Recorder
	verbose  bool

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New returns a Service for opts.
func New(opts Options) (*Service, error) {
	if opts.Trigger == nil {
		return nil, fmt.Errorf("listener: shutdown trigger is nil")
	}
	return &Service{
		cfg:      opts.Config.Clone(),
		trigger:  opts.Trigger,
		recorder: opts.Recorder,
		verbose:  opts.Verbose,
	}, nil
}

// Start binds the listening socket and begins accepting connections in the
// background. A bind failure is returned and nothing is started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("listener: already started on %s", s.listener.Addr())
	}

	listenAddr := s.cfg.ListenAddress()
	listener, err := net.Listen("tcp4", listenAddr)
	if err != nil {
		return fmt.Errorf("listener: bind %s: %w", listenAddr, err)
	}
	s.listener = listener

	log.Printf("[Listener] Listening on %s (expected addresses: %s)", listener.Addr(), config.FormatAddresses(s.cfg.Addresses))

	s.wg.Add(1)
	go s.acceptLoop(ctx, listener)

	return nil
}

// Run starts the service and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Shutdown(context.Background())
}

// Addr returns the bound address, or nil before Start.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown closes the listening socket and waits for the accept loop to
// exit. Connections already being handled run to completion on their own.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("[Listener] Error closing listener: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) acceptLoop(ctx context.Context, listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return
			}

			log.Printf("[Listener] Error initializing socket: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Service) debugf(format string, args ...any) {
	if s.verbose {
		log.Printf("[Listener] "+format, args...)
	}
}
