package router

import "fmt"

// State of one device-arrival episode.
type State int

const (
	StateIdle State = iota
	StateSourceSearch
	StateAnchorAnalysis
	StateRouteDecision
	StateEventLookup
	StateLostRoute
	StateEventRoute
	StateConfirmMove
	StateMoving
	StateStaged
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSourceSearch:
		return "source-search"
	case StateAnchorAnalysis:
		return "anchor-analysis"
	case StateRouteDecision:
		return "route-decision"
	case StateEventLookup:
		return "event-lookup"
	case StateLostRoute:
		return "lost-route"
	case StateEventRoute:
		return "event-route"
	case StateConfirmMove:
		return "confirm-move"
	case StateMoving:
		return "moving"
	case StateStaged:
		return "staged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type transition struct {
	from State
	to   State
}

// validTransitions is the full transition table of the episode state
// machine. Everything funnels back to idle: benign dead ends (no source, no
// files, abandoned selection, declined move) as well as completion.
var validTransitions = map[transition]bool{
	{StateIdle, StateSourceSearch}: true,

	{StateSourceSearch, StateIdle}:           true, // no candidate subfolder
	{StateSourceSearch, StateAnchorAnalysis}: true,

	{StateAnchorAnalysis, StateIdle}:          true, // empty source folder
	{StateAnchorAnalysis, StateRouteDecision}: true,

	{StateRouteDecision, StateEventLookup}: true,
	{StateRouteDecision, StateLostRoute}:   true, // anchor older than the lookup window

	{StateEventLookup, StateLostRoute}:  true, // no matching event
	{StateEventLookup, StateEventRoute}: true,
	{StateEventLookup, StateIdle}:       true, // user abandoned disambiguation

	{StateLostRoute, StateConfirmMove}:  true,
	{StateEventRoute, StateConfirmMove}: true,

	{StateConfirmMove, StateIdle}:   true, // declined
	{StateConfirmMove, StateMoving}: true,

	{StateMoving, StateStaged}: true,

	{StateStaged, StateIdle}: true,
}

// ValidateTransition reports whether from → to is a legal step.
func ValidateTransition(from, to State) error {
	if !validTransitions[transition{from: from, to: to}] {
		return fmt.Errorf("invalid state transition from %s to %s", from, to)
	}
	return nil
}
