// Package relevance decides whether a push event concerns the current
// viewer and should trigger a data refresh.
//
// The push channel carries free-text messages rather than structured
// recipient fields, so addressing is a literal substring match of the
// viewer identity against the message. One identity being a substring of
// another (bob@x.com and bob@x.company.com) yields false positives; that
// weakness is kept for compatibility with existing senders.
package relevance

import (
	"sort"
	"strings"

	"github.com/nhle/activity-sync/internal/model"
)

// Event titles used by the built-in surfaces.
const (
	TitleActivityJoin = "Activity join"
	TitleJoinRequest  = "Join request"
)

// TitleSet is a set of event titles a surface reacts to.
type TitleSet map[string]struct{}

// NewTitleSet builds a set from titles.
func NewTitleSet(titles ...string) TitleSet {
	set := make(TitleSet, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	return set
}

// ParticipantTitles is the set for the participant surface.
func ParticipantTitles() TitleSet {
	return NewTitleSet(TitleActivityJoin)
}

// LeaderTitles is the set for the leader surface.
func LeaderTitles() TitleSet {
	return NewTitleSet(TitleJoinRequest)
}

// Contains reports whether title is in the set. Matching is exact.
func (s TitleSet) Contains(title string) bool {
	_, ok := s[title]
	return ok
}

// Titles returns the set members sorted.
func (s TitleSet) Titles() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsRelevant reports whether event concerns viewer: its title must be in
// interested and its message must contain the viewer identity as a
// case-sensitive substring. An empty identity matches nothing.
func IsRelevant(
	event model.InboundEvent,
	viewer model.ViewerContext,
	interested TitleSet,
) bool {
	if viewer.Identity == "" {
		return false
	}
	if !interested.Contains(event.Title) {
		return false
	}
	return strings.Contains(event.Message, viewer.Identity)
}

// Filter binds a title set so a surface can be configured once.
type Filter struct {
	titles TitleSet
}

// NewFilter creates a filter for the given titles.
func NewFilter(titles TitleSet) *Filter {
	return &Filter{titles: titles}
}

// Titles returns the configured titles, sorted.
func (f *Filter) Titles() []string {
	return f.titles.Titles()
}

// IsRelevant applies IsRelevant with the filter's titles.
func (f *Filter) IsRelevant(event model.InboundEvent, viewer model.ViewerContext) bool {
	return IsRelevant(event, viewer, f.titles)
}
