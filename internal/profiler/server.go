// Package profiler serves pprof and a JSON status page for a running watcher.
// It only binds to the loopback interface.
package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/rs/zerolog"
)

// StatusFunc reports a JSON-serializable snapshot of the watcher state.
type StatusFunc func() any

// Handler returns the debug routes. /debug/status is only mounted when
// status is non-nil.
func Handler(status StatusFunc, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("GET /debug/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if status != nil {
		mux.HandleFunc("GET /debug/status", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(status()); err != nil {
				log.Warn().Err(err).Msg("encode status")
			}
		})
	}

	return mux
}

// Server is a running debug HTTP server.
type Server struct {
	http *http.Server
	addr net.Addr
	log  zerolog.Logger
	done chan struct{}
}

// Listen binds 127.0.0.1:port (0 picks a free port) and starts serving in
// the background. Bind errors are returned directly.
func Listen(ctx context.Context, port int, status StatusFunc, log zerolog.Logger) (*Server, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}

	s := &Server{
		http: &http.Server{
			Handler:           Handler(status, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr(),
		log:  log,
		done: make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("debug server stopped")
		}
	}()

	log.Info().Str("addr", s.Addr()).Msg("debug server listening")
	return s, nil
}

// Addr is the bound host:port.
func (s *Server) Addr() string {
	return s.addr.String()
}

// URL returns the absolute URL of path on this server.
func (s *Server) URL(path string) string {
	return "http://" + s.Addr() + path
}

// Close stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Close(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	<-s.done
	return err
}
