package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/fusion32/forgottenserver/internal/config"
	"github.com/fusion32/forgottenserver/internal/crypto"
	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// Server accepts game clients, runs the handshake, and owns the per
// connection reader and writer tasks. Game logic is reached only through the
// executor and the façade interfaces.
type Server struct {
	cfg      config.Gateway
	rsa      *crypto.RSAKey
	exec     *game.Executor
	eng      game.Engine
	ops      game.PlayerOps
	sessions game.SessionStore
	bans     game.BanStore
	pool     *protocol.OutputPool

	waitList *game.WaitList // game thread only

	// itemClassifier reports whether an item carries a market tier byte;
	// supplied by the item catalog when one is wired.
	itemClassifier func(spriteID uint16) bool

	mu       sync.Mutex
	listener net.Listener
}

// NewServer wires a gateway server. All collaborators are required.
func NewServer(
	cfg config.Gateway,
	rsa *crypto.RSAKey,
	exec *game.Executor,
	eng game.Engine,
	ops game.PlayerOps,
	sessions game.SessionStore,
	bans game.BanStore,
) *Server {
	return &Server{
		cfg:      cfg,
		rsa:      rsa,
		exec:     exec,
		eng:      eng,
		ops:      ops,
		sessions: sessions,
		bans:     bans,
		pool:     protocol.NewOutputPool(protocol.DefaultPoolCapacity),
		waitList: game.NewWaitList(),
	}
}

// SetItemClassifier wires the item catalog's tier-byte rule into the market
// parsers.
func (s *Server) SetItemClassifier(fn func(spriteID uint16) bool) {
	s.itemClassifier = fn
}

// Addr returns the bound listen address, nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens on the configured game port and accepts until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	bind := s.cfg.IP
	if !s.cfg.BindOnlyGlobalAddress {
		bind = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", bind, s.cfg.GamePort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from a ready listener. Split out for tests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("game service listening", "address", ln.Addr())

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			slog.Error("accept failed", "error", err)
			continue
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetNoDelay(true)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handshake(newConnection(s, conn), bufio.NewReaderSize(conn, protocol.MaxMessageSize))
		}()
	}

	wg.Wait()
	return nil
}
