package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/activity-sync/internal/model"
)

func TestCache_MatchesGenerate(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	got := c.Generate("members", 12, DefaultLength)
	assert.Equal(t, Generate("members", 12, DefaultLength), got)
	assert.Equal(t, 1, c.Len())

	again := c.Generate("members", 12, DefaultLength)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ReturnsCopies(t *testing.T) {
	c, err := NewCache(0)
	require.NoError(t, err)

	first := c.Generate("k", 5, 4)
	first[0] = -1

	second := c.Generate("k", 5, 4)
	assert.Equal(t, 5.0, second[0])
}

func TestCache_Evicts(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	c.Generate("a", 1, 3)
	c.Generate("b", 1, 3)
	c.Generate("c", 1, 3)
	assert.Equal(t, 2, c.Len())
}

func TestCache_SeriesFor(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	withHistory := model.MetricSnapshot{Key: "open-tasks", Value: 9, History: []float64{4, 6, 9}}
	assert.Equal(t, Series{4, 6, 9}, c.SeriesFor(withHistory, DefaultLength))
	assert.Equal(t, 0, c.Len())

	sparse := model.MetricSnapshot{Key: "open-tasks", Value: 9, History: []float64{9}}
	assert.Equal(t, SeriesFor(sparse, DefaultLength), c.SeriesFor(sparse, DefaultLength))
	assert.Equal(t, 1, c.Len())
}
