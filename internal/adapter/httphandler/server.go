package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const DefaultHandlerTimeout = 5 * time.Second

// msgUnavailable is the body of requests cut by the handler timeout.
const msgUnavailable = `{"error":"service unavailable"}`

type HTTPServer struct {
	httpServer *http.Server
}

// NewHTTPServer cancels handlers running longer than timeout,
// [DefaultHandlerTimeout] is used when timeout is zero.
func NewHTTPServer(
	addr string, handler http.Handler, timeout time.Duration,
) HTTPServer {
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}
	s := &http.Server{
		Addr:              addr,
		Handler:           http.TimeoutHandler(handler, timeout, msgUnavailable),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      timeout + time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return HTTPServer{s}
}

// Run listens on the configured address. stopFn is called once
// serving ends, so a failed bind stops the application.
func (s HTTPServer) Run(stopFn context.CancelFunc) {
	s.serve(stopFn, s.httpServer.ListenAndServe)
}

// Serve is Run on an already bound listener.
func (s HTTPServer) Serve(l net.Listener, stopFn context.CancelFunc) {
	s.serve(stopFn, func() error { return s.httpServer.Serve(l) })
}

func (s HTTPServer) serve(stopFn context.CancelFunc, serveFn func() error) {
	const op = "HTTPServer.serve"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("listening", "addr", s.httpServer.Addr)
	if err := serveFn(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("unexpected server shutdown", "err", err)
	}
}

// Close waits for in-flight requests until ctx is done.
func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
		return
	}
	log.Info("http server is closed")
}
