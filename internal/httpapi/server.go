// Package httpapi exposes the syncer's published state on a local HTTP
// listener for dashboards and health checks.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/nhle/activity-sync/internal/sync"
)

// StateSource is implemented by *sync.Syncer.
type StateSource interface {
	Snapshot() (sync.Snapshot, bool)
	Status() sync.SyncStatus
}

type statusBody struct {
	Status   string     `json:"status"`
	Sync     string     `json:"sync"`
	LastSync *time.Time `json:"last_sync,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type stateBody struct {
	sync.Snapshot
	Sync  string `json:"sync"`
	Error string `json:"error,omitempty"`
}

// NewRouter creates the chi router serving /state, /healthz and /metrics.
func NewRouter(src StateSource, gatherer prometheus.Gatherer, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := corslib.New(corslib.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Cache-Control"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		st := src.Status()
		body := statusBody{Status: "ok", Sync: st.State.String()}
		if !st.LastSync.IsZero() {
			last := st.LastSync
			body.LastSync = &last
		}
		if st.Error != nil {
			body.Error = st.Error.Error()
		}
		writeJSON(w, http.StatusOK, body)
	})

	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		snap, ok := src.Snapshot()
		st := src.Status()
		if !ok {
			body := statusBody{Status: "pending", Sync: st.State.String()}
			if st.Error != nil {
				body.Error = st.Error.Error()
			}
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}

		body := stateBody{Snapshot: snap, Sync: st.State.String()}
		if st.Error != nil {
			body.Error = st.Error.Error()
		}
		writeJSON(w, http.StatusOK, body)
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log *logrus.Entry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http surface listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}
