// control/http.go
// Author: momentics <momentics@gmail.com>
//
// HTTP control surface: /healthz, /metrics and /debug/state. It runs on its
// own goroutine and never touches reactor descriptors.

package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/momentics/webserv/api"
)

// NewRouter builds the control routes. A nil gatherer omits /metrics.
func NewRouter(g prometheus.Gatherer, probes *DebugProbes) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if g != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	r.Get("/debug/state", func(w http.ResponseWriter, _ *http.Request) {
		state := map[string]any{}
		if probes != nil {
			state = probes.DumpState()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	})
	return r
}

// Server serves the control router.
type Server struct {
	srv *http.Server
	ln  net.Listener
	log zerolog.Logger
}

// StartServer listens on addr and serves h in the background.
func StartServer(addr string, h http.Handler, log zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, api.Wrap(api.KindSocket, "control listen", err)
	}
	s := &Server{
		srv: &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
		log: log,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("control server stopped")
		}
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("control surface listening")
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Shutdown stops the control server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
