// Package events looks up catalog events around an anchor timestamp and
// classifies the result so the router can name a destination folder.
package events

import (
	"context"
	"time"
)

// CandidateEvent is a catalog record used purely to name a target folder.
// Fetched per device-arrival episode, never cached.
type CandidateEvent struct {
	ID       int
	Name     string
	StartsAt time.Time
	URL      string
}

// Catalog is the external event-catalog collaborator.
type Catalog interface {
	// QueryEvents returns events of the organization whose start time lies
	// in [startMin, startMax].
	QueryEvents(ctx context.Context, orgID int, startMin, startMax time.Time) ([]CandidateEvent, error)
}

type MatchKind int

const (
	NoMatch MatchKind = iota
	Unique
	Ambiguous
)

func (k MatchKind) String() string {
	switch k {
	case NoMatch:
		return "no match"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Match is the classified result of one catalog lookup. Events is empty for
// NoMatch, has one element for Unique and all candidates for Ambiguous;
// picking among the ambiguous candidates is the caller's business.
type Match struct {
	Kind   MatchKind
	Events []CandidateEvent
}

// Event returns the unique event. Valid only when Kind is Unique.
func (m Match) Event() CandidateEvent {
	return m.Events[0]
}

type Matcher struct {
	catalog Catalog
	orgID   int
}

func NewMatcher(catalog Catalog, orgID int) *Matcher {
	return &Matcher{catalog: catalog, orgID: orgID}
}

// Match queries events starting within window before anchor and classifies
// the result.
func (m *Matcher) Match(ctx context.Context, anchor time.Time, window time.Duration) (Match, error) {
	evs, err := m.catalog.QueryEvents(ctx, m.orgID, anchor.Add(-window), anchor)
	if err != nil {
		return Match{}, err
	}

	switch len(evs) {
	case 0:
		return Match{Kind: NoMatch}, nil
	case 1:
		return Match{Kind: Unique, Events: evs}, nil
	default:
		return Match{Kind: Ambiguous, Events: evs}, nil
	}
}
