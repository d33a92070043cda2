package retryx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
)

func TestShouldAbort(t *testing.T) {
	tests := []struct {
		name      string
		attempt   int
		maxTries  int
		cancelled bool
		want      bool
	}{
		{name: "first attempt within budget", attempt: 0, maxTries: 3, want: false},
		{name: "last attempt within budget", attempt: 2, maxTries: 3, want: false},
		{name: "budget exhausted", attempt: 3, maxTries: 3, want: true},
		{name: "zero budget aborts immediately", attempt: 0, maxTries: 0, want: true},
		{name: "cancel wins over remaining budget", attempt: 0, maxTries: 10, cancelled: true, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c uploadset.Cancel
			c.Set(tc.cancelled)
			assert.Equal(t, tc.want, ShouldAbort(tc.attempt, tc.maxTries, &c))
		})
	}
}

func TestShouldAbort_NilCancel(t *testing.T) {
	assert.False(t, ShouldAbort(0, 1, nil))
	assert.True(t, ShouldAbort(1, 1, nil))
}
