package router

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestAnchorTime_PicksEarliestModTime(t *testing.T) {
	dir := t.TempDir()
	earliest := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	touch(t, dir, "b.mp4", earliest.Add(2*time.Hour))
	touch(t, dir, "a.mp4", earliest)
	touch(t, dir, "c.mp4", earliest.Add(time.Hour))

	entry, anchor, ok, err := anchorTime(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, anchor.Equal(earliest))
	assert.Equal(t, "a.mp4", filepath.Base(entry.Path))
}

func TestAnchorTime_EmptyDir(t *testing.T) {
	_, _, ok, err := anchorTime(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnchorTime_MissingDir(t *testing.T) {
	_, _, _, err := anchorTime(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
