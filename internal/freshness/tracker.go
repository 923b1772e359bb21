// Package freshness decides whether the latest known notification should
// still be flagged as "new" for a viewer.
//
// A single SeenMarker per viewer and device records the newest event id and
// when it was first observed. An id stays "new" for Window after that first
// observation. Staleness is only noticed on the next Evaluate call; nothing
// runs in the background.
package freshness

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/activity-sync/internal/logger"
	"github.com/nhle/activity-sync/internal/model"
)

// Window is how long an event id stays "new" after its first observation.
const Window = 20 * time.Minute

// State is the tracker state derived from the persisted marker.
type State int

const (
	// Unseen means no marker has been persisted yet.
	Unseen State = iota
	// Fresh means the marker was observed less than Window ago.
	Fresh
	// Stale means the marker was observed Window or more ago.
	Stale
)

func (s State) String() string {
	switch s {
	case Unseen:
		return "unseen"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// StateOf classifies marker at now. A nil marker is Unseen.
func StateOf(marker *model.SeenMarker, now time.Time) State {
	if marker == nil {
		return Unseen
	}
	if now.Sub(marker.ObservedAt) < Window {
		return Fresh
	}
	return Stale
}

// SeenMarkerStore persists the single marker of one viewer on one device.
type SeenMarkerStore interface {
	// Get returns the stored marker, or nil when none is stored.
	Get(ctx context.Context) (*model.SeenMarker, error)

	// Set replaces the stored marker.
	Set(ctx context.Context, marker model.SeenMarker) error
}

// Tracker evaluates the freshness window against an injected store.
// Evaluate holds a lock across its read-then-write, so a store must be
// driven by exactly one Tracker.
type Tracker struct {
	store SeenMarkerStore
	log   *logrus.Entry
	mu    sync.Mutex
}

// NewTracker creates a tracker over store. A nil log discards output.
func NewTracker(store SeenMarkerStore, log *logrus.Entry) *Tracker {
	if log == nil {
		log = logger.Discard()
	}
	return &Tracker{
		store: store,
		log:   log.WithField("component", "freshness"),
	}
}

// Evaluate reports whether latestID should be flagged as new at now and
// updates the stored marker when latestID differs from it.
//
// A marker that cannot be read is treated as absent. A failed write is
// logged; the id is still reported as new.
func (t *Tracker) Evaluate(ctx context.Context, latestID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	marker, err := t.store.Get(ctx)
	if err != nil {
		t.log.WithError(err).Warn("Reading seen marker failed, treating as unseen")
		marker = nil
	}

	if marker == nil || marker.LastSeenEventID != latestID {
		next := model.SeenMarker{LastSeenEventID: latestID, ObservedAt: now}
		if err := t.store.Set(ctx, next); err != nil {
			t.log.WithError(err).WithField("event_id", latestID).Warn("Persisting seen marker failed")
		}
		return true
	}

	return StateOf(marker, now) == Fresh
}

// Evaluate runs a one-off evaluation against store.
func Evaluate(ctx context.Context, latestID string, now time.Time, store SeenMarkerStore) bool {
	return NewTracker(store, nil).Evaluate(ctx, latestID, now)
}
