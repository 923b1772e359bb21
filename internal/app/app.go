// Package app assembles the sync daemon from configuration: the device
// store, the provider client, the push listener, the syncer and the local
// HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/activity-sync/internal/credential"
	"github.com/nhle/activity-sync/internal/freshness"
	"github.com/nhle/activity-sync/internal/httpapi"
	"github.com/nhle/activity-sync/internal/model"
	"github.com/nhle/activity-sync/internal/provider"
	"github.com/nhle/activity-sync/internal/push"
	"github.com/nhle/activity-sync/internal/relevance"
	"github.com/nhle/activity-sync/internal/store"
	appsync "github.com/nhle/activity-sync/internal/sync"
)

// App is a fully wired sync daemon.
type App struct {
	cfg      *model.AppConfig
	log      *logrus.Entry
	registry *prometheus.Registry
	db       *store.SQLiteStore
	syncer   *appsync.Syncer
	listener *push.Listener
}

// Option customises New.
type Option func(*options)

type options struct {
	ring *credential.Ring
}

// WithKeyring uses ring instead of opening the system keyring.
func WithKeyring(ring *credential.Ring) Option {
	return func(o *options) { o.ring = ring }
}

// New builds an App from cfg. The caller must Close it.
func New(cfg *model.AppConfig, log *logrus.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Viewer.Identity == "" {
		return nil, errors.New("viewer.identity must be set")
	}
	if cfg.Provider.BaseURL == "" {
		return nil, errors.New("provider.base_url must be set")
	}

	a := &App{
		cfg:      cfg,
		log:      logrus.NewEntry(log).WithField("viewer", cfg.Viewer.Identity),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ring := o.ring
	if ring == nil {
		var err error
		if ring, err = credential.Open(credentialDir(cfg)); err != nil {
			a.log.WithError(err).Warn("keyring unavailable")
		}
	}

	token := cfg.Provider.Token
	if ring != nil {
		resolved, err := ring.ResolveToken(token)
		if err != nil {
			a.log.WithError(err).Warn("reading provider token from keyring")
		} else {
			token = resolved
		}
	}

	markers, err := a.openMarkerStore(ring)
	if err != nil {
		return nil, err
	}

	client := provider.NewClient(cfg.Provider.BaseURL, token,
		provider.WithTimeout(time.Duration(cfg.Provider.TimeoutSec)*time.Second),
		provider.WithRequestsPerMinute(cfg.Provider.RequestsPerMinute),
		provider.WithLogger(a.log.WithField("component", "provider")),
	)

	titles := relevance.NewTitleSet(cfg.Surface.Titles...)
	if len(titles) == 0 {
		titles = relevance.ParticipantTitles()
	}

	syncCfg := appsync.Config{
		Viewer:     model.ViewerContext{Identity: cfg.Viewer.Identity},
		Filter:     relevance.NewFilter(titles),
		Provider:   client,
		Tracker:    freshness.NewTracker(markers, a.log),
		ResyncSpec: cfg.Resync.Cron,
		Registerer: a.registry,
		Log:        a.log,
	}
	if a.db != nil {
		syncCfg.Cache = a.db
	}

	a.syncer, err = appsync.New(syncCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating syncer: %w", err)
	}

	if cfg.Push.URL != "" {
		a.listener = push.NewListener(cfg.Push.URL, token, a.log)
		if err := appsync.RegisterPushMetrics(a.registry, a.listener); err != nil {
			a.Close()
			return nil, fmt.Errorf("registering push metrics: %w", err)
		}
	}

	return a, nil
}

// openMarkerStore selects the seen-marker backend named by store.backend.
func (a *App) openMarkerStore(ring *credential.Ring) (freshness.SeenMarkerStore, error) {
	switch a.cfg.Store.Backend {
	case model.StoreBackendMemory:
		return freshness.NewMemoryStore(), nil

	case model.StoreBackendKeyring:
		if ring == nil {
			return nil, errors.New("store.backend is keyring but no keyring is available")
		}
		return freshness.NewKVStore(ring, markerKey(a.cfg)), nil

	default:
		path := a.cfg.Store.Path
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		db, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("opening store %s: %w", path, err)
		}
		a.db = db
		return freshness.NewKVStore(db, ""), nil
	}
}

// markerKey keeps markers of different viewers apart in the shared keyring.
func markerKey(cfg *model.AppConfig) string {
	return freshness.MarkerKey + ":" + cfg.Viewer.Identity
}

// credentialDir is where the file keyring backend keeps its entries.
func credentialDir(cfg *model.AppConfig) string {
	if cfg.Store.Path != "" {
		return filepath.Join(filepath.Dir(cfg.Store.Path), "credentials")
	}
	return filepath.Join(filepath.Dir(model.DefaultConfigPath()), "credentials")
}

// Syncer exposes the syncer, mainly for tests and status commands.
func (a *App) Syncer() *appsync.Syncer {
	return a.syncer
}

// Handler returns the local HTTP surface.
func (a *App) Handler() http.Handler {
	return httpapi.NewRouter(a.syncer, a.registry, nil)
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	events := make(chan model.InboundEvent, 16)

	if a.listener != nil {
		g.Go(func() error {
			err := a.listener.Run(ctx, events)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		a.log.Warn("push.url not set; relying on scheduled resync only")
	}

	g.Go(func() error {
		err := a.syncer.Run(ctx, events)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		a.logSnapshots(ctx)
		return nil
	})

	if a.cfg.HTTP.Listen != "" {
		g.Go(func() error {
			return httpapi.Serve(ctx, a.cfg.HTTP.Listen, a.Handler(), a.log)
		})
	}

	return g.Wait()
}

func (a *App) logSnapshots(ctx context.Context) {
	snapshots := a.syncer.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snapshots:
			a.log.WithFields(logrus.Fields{
				"projects":      len(snap.Projects),
				"notifications": len(snap.Notifications),
				"has_new":       snap.HasNew,
				"cached":        snap.Cached,
			}).Info("snapshot published")
		}
	}
}

// Close releases the device store.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
