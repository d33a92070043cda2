package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediauploader/internal/logging"
	"github.com/dmitrijs2005/mediauploader/internal/storage"
	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
)

// fakeStore scripts per-file outcomes. By default every upload completes
// with the correct size.
type fakeStore struct {
	folders []storage.FolderRef

	listCalls   int
	createCalls int

	// failuresLeft[name] > 0 makes the next attempt for that file fail.
	failuresLeft map[string]int
	// remoteSizes[name] overrides the reported remote size.
	remoteSizes map[string]int64

	attempts map[string]int
	uploaded []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failuresLeft: map[string]int{},
		remoteSizes:  map[string]int64{},
		attempts:     map[string]int{},
	}
}

func (s *fakeStore) ListFoldersByName(ctx context.Context, name, parentID string) ([]storage.FolderRef, error) {
	s.listCalls++
	return s.folders, nil
}

func (s *fakeStore) CreateFolder(ctx context.Context, name, parentID string) (storage.FolderRef, error) {
	s.createCalls++
	return storage.FolderRef{ID: parentID + name + "/", Name: name}, nil
}

func (s *fakeStore) UploadResumable(ctx context.Context, r io.Reader, size int64, name, mimeType, parentID string, progress storage.ProgressFunc) (storage.UploadResult, error) {
	s.attempts[name]++

	if n := s.failuresLeft[name]; n > 0 {
		s.failuresLeft[name] = n - 1
		return storage.UploadResult{}, nil
	}

	if progress != nil {
		progress(0.5)
		progress(1.0)
	}

	remote := size
	if v, ok := s.remoteSizes[name]; ok {
		remote = v
	}
	s.uploaded = append(s.uploaded, name)
	return storage.UploadResult{Completed: true, RemoteSize: remote}, nil
}

func writeFile(t *testing.T, dir, name, content string) uploadset.FileRef {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return uploadset.FileRef{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

func newPipeline(store RemoteStore) (*Pipeline, *uploadset.Set, *uploadset.Cancel) {
	set := uploadset.New()
	cancel := &uploadset.Cancel{}
	return New(store, set, cancel, logging.NopLogger{}), set, cancel
}

func TestUploadBatch_ReusesSingleMatchingFolder(t *testing.T) {
	store := newFakeStore()
	store.folders = []storage.FolderRef{{ID: "media/gig/", Name: "gig"}}
	p, set, _ := newPipeline(store)
	set.Add(writeFile(t, t.TempDir(), "a.txt", "aaa"))

	out, err := p.UploadBatch(context.Background(), "gig", "media/", 3, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "media/gig/", out.Folder.ID)
	assert.Equal(t, 0, store.createCalls)
}

func TestUploadBatch_CreatesFolderOnZeroOrManyMatches(t *testing.T) {
	for _, matches := range []int{0, 2} {
		store := newFakeStore()
		for i := 0; i < matches; i++ {
			store.folders = append(store.folders, storage.FolderRef{ID: "media/gig/", Name: "gig"})
		}
		p, set, _ := newPipeline(store)
		set.Add(writeFile(t, t.TempDir(), "a.txt", "aaa"))

		_, err := p.UploadBatch(context.Background(), "gig", "media/", 3, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, store.createCalls, "matches=%d", matches)
	}
}

func TestUploadBatch_RetryBound(t *testing.T) {
	store := newFakeStore()
	store.failuresLeft["b.txt"] = 100 // always fails
	p, set, _ := newPipeline(store)
	set.Add(writeFile(t, t.TempDir(), "b.txt", "bbb"))

	out, err := p.UploadBatch(context.Background(), "gig", "", 3, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, store.attempts["b.txt"])
	assert.Equal(t, 1, out.Failed)

	st, ok := set.Status(set.Files()[0].Path)
	require.True(t, ok)
	assert.Equal(t, uploadset.StatusFailed, st)
}

func TestUploadBatch_ZeroTriesFailsWithoutAttempting(t *testing.T) {
	store := newFakeStore()
	p, set, _ := newPipeline(store)
	set.Add(writeFile(t, t.TempDir(), "a.txt", "aaa"))

	out, err := p.UploadBatch(context.Background(), "gig", "", 0, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, store.attempts["a.txt"])
	assert.Equal(t, 1, out.Failed)
}

func TestUploadBatch_SizeMismatchFailsWithoutRetry(t *testing.T) {
	store := newFakeStore()
	store.remoteSizes["a.txt"] = 1 // truncated remote object
	p, set, _ := newPipeline(store)
	set.Add(writeFile(t, t.TempDir(), "a.txt", "aaa"))

	out, err := p.UploadBatch(context.Background(), "gig", "", 5, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, store.attempts["a.txt"], "integrity mismatch must not be retried in-pass")
	assert.Equal(t, 1, out.Failed)
}

func TestUploadBatch_MissingLocalFileFailsImmediately(t *testing.T) {
	store := newFakeStore()
	p, set, _ := newPipeline(store)
	set.Add(uploadset.FileRef{Path: filepath.Join(t.TempDir(), "ghost.txt"), Size: 3})

	out, err := p.UploadBatch(context.Background(), "gig", "", 5, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, store.attempts)
	assert.Equal(t, 1, out.Failed)
}

func TestUploadBatch_CancelSkipsRemainingFiles(t *testing.T) {
	store := newFakeStore()
	p, set, cancel := newPipeline(store)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "aaa")
	b := writeFile(t, dir, "b.txt", "bbb")
	set.Add(a, b)

	// Cancel as soon as the first file reports progress.
	progress := func(pr Progress) {
		cancel.Set(true)
	}

	out, err := p.UploadBatch(context.Background(), "gig", "", 3, progress, nil)
	require.NoError(t, err)

	assert.True(t, out.Cancelled)
	assert.Equal(t, 0, store.attempts["b.txt"])

	// The untouched file stays pending and is surfaced for the re-pass.
	st, ok := set.Status(b.Path)
	require.True(t, ok)
	assert.Equal(t, uploadset.StatusPending, st)
	assert.Equal(t, []uploadset.FileRef{b}, set.FailedFiles())
}

func TestUploadBatch_RetryPassUploadsOnlyFailedSubset(t *testing.T) {
	store := newFakeStore()
	store.failuresLeft["b.txt"] = 3 // fails the whole first pass, then recovers
	p, set, _ := newPipeline(store)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "aaa")
	b := writeFile(t, dir, "b.txt", "bbb")
	set.Add(a, b)

	var askedWith []string
	confirm := func(failed []uploadset.FileRef) bool {
		for _, f := range failed {
			askedWith = append(askedWith, filepath.Base(f.Path))
		}
		return true
	}

	out, err := p.UploadBatch(context.Background(), "gig", "", 3, nil, confirm)
	require.NoError(t, err)

	assert.Equal(t, []string{"b.txt"}, askedWith)
	assert.Equal(t, 0, out.Failed)
	assert.Equal(t, 4, store.attempts["b.txt"], "3 failed attempts, then one successful")
	assert.Equal(t, 1, store.attempts["a.txt"], "succeeded file must not be re-uploaded")
	assert.Equal(t, 1, set.Len(), "working set shrinks to the failed subset")
}

func TestUploadBatch_ProgressFractionsForwarded(t *testing.T) {
	store := newFakeStore()
	p, set, _ := newPipeline(store)
	a := writeFile(t, t.TempDir(), "a.txt", "aaa")
	set.Add(a)

	var got []float64
	progress := func(pr Progress) {
		assert.Equal(t, a.Path, pr.Path)
		got = append(got, pr.Fraction)
	}

	_, err := p.UploadBatch(context.Background(), "gig", "", 3, progress, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.0}, got)
}
