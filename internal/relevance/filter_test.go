package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/activity-sync/internal/model"
)

var alice = model.ViewerContext{Identity: "alice@example.com"}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name     string
		event    model.InboundEvent
		viewer   model.ViewerContext
		titles   TitleSet
		expected bool
	}{
		{
			name:     "title and identity match",
			event:    model.InboundEvent{Title: "Activity join", Message: "alice@example.com joined activity X"},
			viewer:   alice,
			titles:   ParticipantTitles(),
			expected: true,
		},
		{
			name:     "title not of interest",
			event:    model.InboundEvent{Title: "Join request", Message: "alice@example.com joined activity X"},
			viewer:   alice,
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "identity absent",
			event:    model.InboundEvent{Title: "Activity join", Message: "bob@example.com joined activity X"},
			viewer:   alice,
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "identity absent and title mismatch",
			event:    model.InboundEvent{Title: "Other", Message: "nobody"},
			viewer:   alice,
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "match is case sensitive",
			event:    model.InboundEvent{Title: "Activity join", Message: "ALICE@EXAMPLE.COM joined"},
			viewer:   alice,
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "title match is exact",
			event:    model.InboundEvent{Title: "activity join", Message: "alice@example.com joined"},
			viewer:   alice,
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "leader surface",
			event:    model.InboundEvent{Title: "Join request", Message: "carol asked alice@example.com to join"},
			viewer:   alice,
			titles:   LeaderTitles(),
			expected: true,
		},
		{
			name:     "substring identities collide",
			event:    model.InboundEvent{Title: "Activity join", Message: "bob@x.company.com joined"},
			viewer:   model.ViewerContext{Identity: "bob@x.com"},
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "shorter identity inside longer one",
			event:    model.InboundEvent{Title: "Activity join", Message: "xbob@x.com joined"},
			viewer:   model.ViewerContext{Identity: "bob@x.com"},
			titles:   ParticipantTitles(),
			expected: true,
		},
		{
			name:     "empty identity",
			event:    model.InboundEvent{Title: "Activity join", Message: "anyone joined"},
			viewer:   model.ViewerContext{},
			titles:   ParticipantTitles(),
			expected: false,
		},
		{
			name:     "empty title set",
			event:    model.InboundEvent{Title: "Activity join", Message: "alice@example.com joined"},
			viewer:   alice,
			titles:   NewTitleSet(),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRelevant(tt.event, tt.viewer, tt.titles))
		})
	}
}

func TestFilter(t *testing.T) {
	f := NewFilter(NewTitleSet("Join request", "Activity join"))
	assert.Equal(t, []string{"Activity join", "Join request"}, f.Titles())

	assert.True(t, f.IsRelevant(model.InboundEvent{Title: "Join request", Message: "from alice@example.com"}, alice))
	assert.False(t, f.IsRelevant(model.InboundEvent{Title: "Deleted", Message: "alice@example.com"}, alice))
}
