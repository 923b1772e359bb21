// Package sync wires the push channel to the provider: every relevant
// event triggers a full re-fetch, the freshness window is re-evaluated
// against the fetched notification list, and the resulting Snapshot is
// published to subscribers.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/nhle/activity-sync/internal/freshness"
	"github.com/nhle/activity-sync/internal/logger"
	"github.com/nhle/activity-sync/internal/model"
	"github.com/nhle/activity-sync/internal/provider"
	"github.com/nhle/activity-sync/internal/relevance"
	"github.com/nhle/activity-sync/internal/trend"
)

// SyncState represents the current state of the syncer.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the outcome of the most recent refresh.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// Snapshot is the published client state after a refresh.
type Snapshot struct {
	Projects      []model.Project         `json:"projects"`
	Users         []model.User            `json:"users"`
	Notifications []model.Notification    `json:"notifications"`
	Latest        *model.Notification     `json:"latest,omitempty"`
	HasNew        bool                    `json:"has_new"`
	Metrics       []model.MetricSnapshot  `json:"metrics"`
	Series        map[string]trend.Series `json:"series"`
	FetchedAt     time.Time               `json:"fetched_at"`
	Cached        bool                    `json:"cached"`
}

// Cache persists the last fetched lists so a restarted client can publish
// something before its first refresh completes.
type Cache interface {
	ReplaceNotifications(ctx context.Context, list []model.Notification) error
	GetNotifications(ctx context.Context) ([]model.Notification, error)
	ReplaceProjects(ctx context.Context, list []model.Project) error
	GetProjects(ctx context.Context, includeArchived bool) ([]model.Project, error)
}

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// Config wires a Syncer. Viewer, Filter, Provider and Tracker are required.
type Config struct {
	Viewer   model.ViewerContext
	Filter   *relevance.Filter
	Provider provider.Provider
	Tracker  *freshness.Tracker

	// Cache is optional.
	Cache Cache

	// Trends memoises fallback series; a fresh cache is created when nil.
	Trends      *trend.Cache
	TrendLength int

	// ResyncSpec is a cron expression for periodic safety-net refreshes.
	// Empty disables it.
	ResyncSpec string

	// Registerer receives the sync metrics; nil disables them.
	Registerer prometheus.Registerer

	Log *logrus.Entry
	Now func() time.Time
}

// Syncer processes events and refreshes on a single goroutine, so the
// freshness tracker and published snapshot never see interleaved updates.
type Syncer struct {
	viewer      model.ViewerContext
	filter      *relevance.Filter
	provider    provider.Provider
	tracker     *freshness.Tracker
	cache       Cache
	trends      *trend.Cache
	trendLength int
	resyncSpec  string
	metrics     *metrics
	log         *logrus.Entry
	now         func() time.Time

	resyncCh chan struct{}

	mu          gosync.Mutex
	status      SyncStatus
	snapshot    *Snapshot
	subscribers []chan Snapshot
}

// New validates cfg and creates a Syncer.
func New(cfg Config) (*Syncer, error) {
	if cfg.Filter == nil || cfg.Provider == nil || cfg.Tracker == nil {
		return nil, errors.New("syncer requires a filter, a provider and a tracker")
	}
	if cfg.ResyncSpec != "" {
		if _, err := cron.ParseStandard(cfg.ResyncSpec); err != nil {
			return nil, fmt.Errorf("parsing resync schedule %q: %w", cfg.ResyncSpec, err)
		}
	}

	trends := cfg.Trends
	if trends == nil {
		var err error
		if trends, err = trend.NewCache(0); err != nil {
			return nil, err
		}
	}
	length := cfg.TrendLength
	if length <= 0 {
		length = trend.DefaultLength
	}

	log := cfg.Log
	if log == nil {
		log = logger.Discard()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Syncer{
		viewer:      cfg.Viewer,
		filter:      cfg.Filter,
		provider:    cfg.Provider,
		tracker:     cfg.Tracker,
		cache:       cfg.Cache,
		trends:      trends,
		trendLength: length,
		resyncSpec:  cfg.ResyncSpec,
		metrics:     newMetrics(cfg.Registerer),
		log:         log.WithField("component", "sync"),
		now:         now,
		resyncCh:    make(chan struct{}, 1),
	}, nil
}

// Run publishes the cached state, performs an initial refresh, then
// handles events and resync requests in order until ctx is cancelled or
// events is closed.
func (s *Syncer) Run(ctx context.Context, events <-chan model.InboundEvent) error {
	s.LoadCached(ctx)
	if err := s.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("initial refresh failed")
	}

	if s.resyncSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.resyncSpec, s.RequestResync); err != nil {
			return fmt.Errorf("scheduling resync: %w", err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		s.log.WithField("schedule", s.resyncSpec).Info("resync scheduled")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.HandleEvent(ctx, ev)
		case <-s.resyncCh:
			if err := s.Refresh(ctx); err != nil {
				s.log.WithError(err).Warn("scheduled refresh failed")
			}
		}
	}
}

// RequestResync asks Run to refresh. Requests made while one is pending
// collapse into it.
func (s *Syncer) RequestResync() {
	select {
	case s.resyncCh <- struct{}{}:
	default:
	}
}

// HandleEvent refreshes when ev concerns the viewer and reports whether it
// did. A failed refresh is logged and leaves the previous snapshot in place.
func (s *Syncer) HandleEvent(ctx context.Context, ev model.InboundEvent) bool {
	relevant := s.filter.IsRelevant(ev, s.viewer)
	s.metrics.recordEvent(relevant)

	log := s.log.WithField("event_title", ev.Title)
	if !relevant {
		log.Debug("ignoring event")
		return false
	}

	log.Info("relevant event, refreshing")
	if err := s.Refresh(ctx); err != nil {
		log.WithError(err).Warn("refresh after event failed")
	}
	return true
}

// Refresh fetches all provider data, re-evaluates the freshness window
// and publishes a new snapshot. On error the previous snapshot stays
// published.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.setStatus(SyncRunning, nil)
	started := time.Now()

	snap, err := s.fetch(ctx)
	s.metrics.recordRefresh(time.Since(started).Seconds(), err)
	if err != nil {
		s.setStatus(SyncError, err)
		return err
	}

	if s.cache != nil {
		if err := s.cache.ReplaceNotifications(ctx, snap.Notifications); err != nil {
			s.log.WithError(err).Warn("caching notifications")
		}
		if err := s.cache.ReplaceProjects(ctx, snap.Projects); err != nil {
			s.log.WithError(err).Warn("caching projects")
		}
	}

	s.metrics.recordHasNew(snap.HasNew)
	s.publish(snap)
	s.setStatus(SyncIdle, nil)
	return nil
}

func (s *Syncer) fetch(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	projects, err := s.provider.Projects(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	users, err := s.provider.Users(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	notifications, err := s.provider.Notifications(ctx, s.viewer.Identity)
	if err != nil {
		return Snapshot{}, err
	}
	metrics, err := s.provider.Metrics(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	now := s.now()
	snap := Snapshot{
		Projects:      projects,
		Users:         users,
		Notifications: notifications,
		Metrics:       metrics,
		Series:        s.seriesFor(metrics),
		FetchedAt:     now,
	}

	if latest, ok := model.LatestNotification(notifications); ok {
		snap.Latest = &latest
		// Notifications without an id cannot be tracked across refreshes.
		if latest.ID != "" {
			snap.HasNew = s.tracker.Evaluate(ctx, latest.ID, now)
		}
	}

	return snap, nil
}

func (s *Syncer) seriesFor(metrics []model.MetricSnapshot) map[string]trend.Series {
	out := make(map[string]trend.Series, len(metrics))
	for _, m := range metrics {
		out[m.Key] = s.trends.SeriesFor(m, s.trendLength)
	}
	return out
}

// LoadCached publishes the cached lists when nothing has been published
// yet. HasNew is never set from the cache.
func (s *Syncer) LoadCached(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	if _, ok := s.Snapshot(); ok {
		return false
	}

	notifications, err := s.cache.GetNotifications(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reading cached notifications")
		return false
	}
	projects, err := s.cache.GetProjects(ctx, true)
	if err != nil {
		s.log.WithError(err).Warn("reading cached projects")
		return false
	}
	if len(notifications) == 0 && len(projects) == 0 {
		return false
	}

	snap := Snapshot{
		Projects:      projects,
		Notifications: notifications,
		Series:        map[string]trend.Series{},
		Cached:        true,
	}
	if latest, ok := model.LatestNotification(notifications); ok {
		snap.Latest = &latest
	}
	s.publish(snap)
	return true
}

// Snapshot returns the latest published snapshot. The boolean is false
// before the first publish.
func (s *Syncer) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// Status returns the outcome of the most recent refresh.
func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe returns a channel that receives every published snapshot. A
// slow subscriber only ever sees the most recent one.
func (s *Syncer) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Syncer) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = &snap
	for _, ch := range s.subscribers {
		// Replace an unread snapshot rather than block.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Syncer) setStatus(state SyncState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.State = state
	s.status.Error = err
	if state == SyncIdle {
		s.status.LastSync = s.now()
	}
}
