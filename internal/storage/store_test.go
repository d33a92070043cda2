package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"media", "media/"},
		{"media/", "media/"},
		{"media/2024", "media/2024/"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizePrefix(tc.in))
	}
}

func TestProgressReader_ReportsFraction(t *testing.T) {
	var got []float64
	pr := &progressReader{
		r:      strings.NewReader("0123456789"),
		total:  10,
		report: func(f float64) { got = append(got, f) },
	}

	buf := make([]byte, 4)
	for {
		if _, err := pr.Read(buf); err != nil {
			break
		}
	}

	require.NotEmpty(t, got)
	assert.Equal(t, 0.4, got[0])
	assert.Equal(t, 1.0, got[len(got)-1])
	for _, f := range got {
		assert.LessOrEqual(t, f, 1.0)
		assert.GreaterOrEqual(t, f, 0.0)
	}
}

func TestProgressReader_ZeroSizeReportsDone(t *testing.T) {
	var got []float64
	pr := &progressReader{
		r:      strings.NewReader(""),
		total:  0,
		report: func(f float64) { got = append(got, f) },
	}

	buf := make([]byte, 4)
	_, _ = pr.Read(buf)

	require.NotEmpty(t, got)
	assert.Equal(t, 1.0, got[0])
}
