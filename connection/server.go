package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/metrics"
	"github.com/skyezerfox/magma/protocol"
)

// Options configures a Server. Settings and Players are required.
type Options struct {
	Settings Settings
	Players  Players
	Sink     PlaySink
	Metrics  *metrics.Collector
	Log      zerolog.Logger

	// IdleTimeout bounds every socket read and write; defaults to
	// constants.IdleTimeout.
	IdleTimeout time.Duration
}

// Server accepts game connections and runs one goroutine per socket.
type Server struct {
	settings    Settings
	players     Players
	sink        PlaySink
	metrics     *metrics.Collector
	log         zerolog.Logger
	idleTimeout time.Duration

	nextID uint64

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closing  bool
	wg       sync.WaitGroup
}

// NewServer creates a Server that is not yet listening.
func NewServer(opts Options) *Server {
	s := &Server{
		settings:    opts.Settings,
		players:     opts.Players,
		sink:        opts.Sink,
		metrics:     opts.Metrics,
		log:         opts.Log.With().Str("component", "network").Logger(),
		idleTimeout: opts.IdleTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
	if s.idleTimeout <= 0 {
		s.idleTimeout = constants.IdleTimeout
	}
	if s.sink == nil {
		s.sink = LoggingSink{Log: s.log}
	}
	return s
}

// Listen binds the configured address. An empty bind address listens on
// every interface.
func (s *Server) Listen() (net.Listener, error) {
	addr := net.JoinHostPort(s.settings.BindAddress(), strconv.Itoa(s.settings.ServerPort()))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return l, nil
}

// Serve accepts connections on l until Shutdown is called, which makes it
// return nil. Accept errors are retried with backoff; only a listener closed
// outside Shutdown ends the loop with an error.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = l.Close()
		return nil
	}
	s.listener = l
	s.mu.Unlock()

	s.log.Info().Str("addr", l.Addr().String()).Msg("Listening")

	var backoff time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.shuttingDown() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			switch {
			case backoff == 0:
				backoff = 5 * time.Millisecond
			case backoff < time.Second:
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			s.log.Warn().Err(err).Dur("retry", backoff).Msg("Accept error")
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		go s.handle(conn)
	}
}

// Addr is the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ServeConn runs the protocol on an already accepted socket and blocks
// until it closes. It returns the reason the connection ended.
func (s *Server) ServeConn(conn net.Conn) error {
	if !s.track(conn) {
		_ = conn.Close()
		return protocol.ErrServerShutdown
	}
	return s.handle(conn)
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) handle(conn net.Conn) error {
	defer s.untrack(conn)

	c := newConnection(s, atomic.AddUint64(&s.nextID, 1), conn)
	s.metrics.ConnectionOpened()
	c.log.Info().Msg("Client connected")

	err := c.serve()
	_ = conn.Close()
	c.release()

	reason := protocol.Reason(err)
	s.metrics.ConnectionClosed(reason)
	switch {
	case errors.Is(err, protocol.ErrPeerClosed), errors.Is(err, protocol.ErrServerShutdown):
		c.log.Info().Str("reason", reason).Str("state", c.state.String()).Msg("Client disconnected")
	default:
		c.log.Warn().Err(err).Str("reason", reason).Str("state", c.state.String()).Msg("Closing connection")
	}
	return err
}

func (s *Server) shuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Shutdown stops accepting, closes every live connection and waits for
// their goroutines until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Closing listener")
		}
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info().Msg("Network server stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
