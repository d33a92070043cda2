package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	valid := []transition{
		{StateIdle, StateSourceSearch},
		{StateSourceSearch, StateIdle},
		{StateSourceSearch, StateAnchorAnalysis},
		{StateRouteDecision, StateLostRoute},
		{StateEventLookup, StateEventRoute},
		{StateEventLookup, StateIdle},
		{StateConfirmMove, StateMoving},
		{StateMoving, StateStaged},
		{StateStaged, StateIdle},
	}
	for _, tr := range valid {
		assert.NoError(t, ValidateTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	invalid := []transition{
		{StateIdle, StateMoving},
		{StateMoving, StateIdle},
		{StateLostRoute, StateEventRoute},
		{StateStaged, StateMoving},
		{StateAnchorAnalysis, StateEventLookup},
	}
	for _, tr := range invalid {
		assert.Error(t, ValidateTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}
