package model

import "time"

// SeenMarker records the most recently observed event id and when it was
// first observed. There is one marker per viewer per device.
type SeenMarker struct {
	LastSeenEventID string
	ObservedAt      time.Time
}

// SeenMarkerRecord is the persisted JSON form of a SeenMarker.
type SeenMarkerRecord struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// Record converts the marker into its persisted form (epoch millis).
func (m SeenMarker) Record() SeenMarkerRecord {
	return SeenMarkerRecord{
		ID:        m.LastSeenEventID,
		Timestamp: m.ObservedAt.UnixMilli(),
	}
}

// Marker converts the persisted form back into a SeenMarker.
func (r SeenMarkerRecord) Marker() SeenMarker {
	return SeenMarker{
		LastSeenEventID: r.ID,
		ObservedAt:      time.UnixMilli(r.Timestamp),
	}
}
