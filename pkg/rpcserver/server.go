// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Config describes where the RPC surface listens.
type Config struct {
	Host string
	Port int
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server is the daemon's JSON-RPC listener: a TCP newline-delimited
// socket plus an HTTP POST /rpc wrapper (and a /healthz probe) sharing
// the same Dispatcher.
type Server struct {
	cfg        Config
	dispatcher *Dispatcher
	log        *slog.Logger

	tcpListener net.Listener
	httpServer  *http.Server
}

// New builds a Server bound to deps. Call Run to start serving.
func New(cfg Config, deps *Deps, log *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: NewDispatcher(deps, log),
		log:        log,
	}
}

// Name identifies this worker for the daemon's run-group.
func (s *Server) Name() string { return "rpcserver" }

// Run starts the TCP listener and the HTTP wrapper and blocks until ctx
// is canceled or either server fails.
func (s *Server) Run(ctx context.Context) error {
	lc := &net.ListenConfig{}
	tcpListener, err := lc.Listen(ctx, "tcp", s.cfg.addr())
	if err != nil {
		return fmt.Errorf("rpcserver: listen tcp %s: %w", s.cfg.addr(), err)
	}
	s.tcpListener = tcpListener
	defer tcpListener.Close()

	router := chi.NewRouter()
	router.Get("/healthz", s.handleHealthz)
	router.Post("/rpc", s.handleHTTPRpc)

	s.httpServer = &http.Server{
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	httpListener, err := lc.Listen(ctx, "tcp", s.httpAddr())
	if err != nil {
		return fmt.Errorf("rpcserver: listen http %s: %w", s.httpAddr(), err)
	}
	defer httpListener.Close()

	errCh := make(chan error, 2)

	go func() {
		errCh <- s.serveTCP(ctx, tcpListener)
	}()
	go func() {
		if err := s.httpServer.Serve(httpListener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("rpcserver: http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		_ = tcpListener.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

// httpAddr is the HTTP wrapper's listen address: same host, port+1, so
// the two transports never collide on the configured port.
func (s *Server) httpAddr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port+1)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleHTTPRpc(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	resp, err := s.dispatcher.DispatchBatch(r.Context(), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_, _ = w.Write(resp)
}

// serveTCP accepts connections and handles each with one
// newline-delimited JSON request/response loop per connection.
func (s *Server) serveTCP(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return fmt.Errorf("rpcserver: accept: %w", err)
		}
		go s.handleTCPConn(ctx, conn)
	}
}

func (s *Server) handleTCPConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp, err := s.dispatcher.DispatchBatch(ctx, line)
		if err != nil {
			if s.log != nil {
				s.log.Warn("rpc dispatch error", slog.String("error", err.Error()))
			}
			continue
		}
		if resp == nil {
			continue
		}
		if _, err := conn.Write(append(resp, '\n')); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
