// Package trend produces reproducible placeholder time-series for dashboard
// metrics whose authoritative history is unavailable.
//
// A series is a bounded random walk seeded from a string key, so the same
// key and anchor always render the same line across reloads and processes.
package trend

import (
	"math"
	"unicode/utf16"

	"github.com/nhle/activity-sync/internal/model"
)

// DefaultLength is the number of points in a generated series.
const DefaultLength = 18

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619

	// mulberryIncrement is the odd increment of the mulberry32 scrambler.
	mulberryIncrement uint32 = 0x6d2b79f5

	// driftScale bounds each step to roughly ±15% of the current value.
	driftScale = 0.3

	minLength = 2
	minAnchor = 1.0
)

// Series is an ordered sequence of non-negative values.
type Series []float64

// Generate returns the walk for (key, anchor, length). Lengths below two
// are raised to two. Anchors below one (including NaN and infinities) start
// the walk at one.
func Generate(key string, anchor float64, length int) Series {
	if length < minLength {
		length = minLength
	}

	rng := newMulberry32(Seed(key))

	out := make(Series, length)
	out[0] = startValue(anchor)
	for i := 1; i < length; i++ {
		prev := out[i-1]
		drift := (rng.next() - 0.5) * driftScale * prev
		out[i] = math.Max(0, prev+drift)
	}

	return out
}

// Seed folds key into a 32-bit seed with FNV-1a over its UTF-16 code units.
func Seed(key string) uint32 {
	h := fnvOffset32
	for _, unit := range utf16.Encode([]rune(key)) {
		h ^= uint32(unit)
		h *= fnvPrime32
	}
	return h
}

func startValue(anchor float64) float64 {
	if math.IsNaN(anchor) || math.IsInf(anchor, 0) {
		return minAnchor
	}
	return math.Max(anchor, minAnchor)
}

// mulberry32 is a small 32-bit PRNG; the same seed yields the same stream.
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

// next returns the next value in [0, 1).
func (m *mulberry32) next() float64 {
	m.state += mulberryIncrement
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	t ^= t >> 14
	return float64(t) / 4294967296.0
}

// SeriesFor returns the metric's own history when it has at least two
// points, otherwise a generated series keyed by the metric key and
// anchored at its current value.
func SeriesFor(m model.MetricSnapshot, length int) Series {
	return seriesFor(m, length, Generate)
}

func seriesFor(m model.MetricSnapshot, length int, generate func(string, float64, int) Series) Series {
	if len(m.History) >= minLength {
		out := make(Series, len(m.History))
		copy(out, m.History)
		return out
	}
	return generate(m.Key, m.Value, length)
}
