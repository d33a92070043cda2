// Package pipeline drives one upload batch through the remote store:
// destination folder resolution, per-file transfer with bounded retry,
// size verification and user-confirmed re-passes over the failed subset.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/mediauploader/internal/logging"
	"github.com/dmitrijs2005/mediauploader/internal/retryx"
	"github.com/dmitrijs2005/mediauploader/internal/storage"
	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
)

// RemoteStore is the object-storage collaborator. storage.S3Store is the
// production implementation.
type RemoteStore interface {
	ListFoldersByName(ctx context.Context, name, parentID string) ([]storage.FolderRef, error)
	CreateFolder(ctx context.Context, name, parentID string) (storage.FolderRef, error)
	UploadResumable(ctx context.Context, r io.Reader, size int64, name, mimeType, parentID string, progress storage.ProgressFunc) (storage.UploadResult, error)
}

// Progress is one progress event for a file being transferred.
// Fraction is in [0,1].
type Progress struct {
	Path     string
	Fraction float64
}

type ProgressFunc func(Progress)

// ConfirmRetryFunc is the confirmation boundary for re-passes: it receives
// the failed subset and reports whether another pass should run.
type ConfirmRetryFunc func(failed []uploadset.FileRef) bool

// Outcome summarizes one finished batch.
type Outcome struct {
	Folder    storage.FolderRef
	Succeeded int
	Failed    int
	Cancelled bool
}

type Pipeline struct {
	store  RemoteStore
	set    *uploadset.Set
	cancel *uploadset.Cancel
	log    logging.Logger
}

func New(store RemoteStore, set *uploadset.Set, cancel *uploadset.Cancel, log logging.Logger) *Pipeline {
	return &Pipeline{store: store, set: set, cancel: cancel, log: log}
}

// Set returns the batch ledger the pipeline operates on.
func (p *Pipeline) Set() *uploadset.Set { return p.set }

// SetCancel flips the batch cancellation flag.
func (p *Pipeline) SetCancel(v bool) { p.cancel.Set(v) }

// UploadBatch uploads every file in the set into a folder called name under
// parentID. Files are transferred one at a time in set order. After a full
// pass, confirmRetry decides whether the failed subset gets another pass;
// succeeded files are dropped from the working set and the cancellation flag
// is reset before each re-pass. There is no pass-count limit, only the
// per-file maxTries budget.
func (p *Pipeline) UploadBatch(ctx context.Context, name, parentID string, maxTries int, progress ProgressFunc, confirmRetry ConfirmRetryFunc) (Outcome, error) {
	p.cancel.Set(false)

	folder, err := p.resolveFolder(ctx, name, parentID)
	if err != nil {
		return Outcome{}, err
	}

	log := p.log.With("folder", folder.ID)
	log.Info(ctx, "starting batch", "files", p.set.Len(), "max_tries", maxTries)

	for {
		if !p.cancel.IsSet() {
			for _, f := range p.set.Files() {
				if p.cancel.IsSet() {
					log.Info(ctx, "batch cancelled, skipping remaining files")
					break
				}
				if st, ok := p.set.Status(f.Path); ok && st == uploadset.StatusSucceeded {
					continue
				}
				p.uploadOne(ctx, folder, f, maxTries, progress, log)
			}
		}

		failed := p.set.FailedFiles()
		if len(failed) == 0 {
			log.Info(ctx, "batch complete")
			return Outcome{Folder: folder, Succeeded: p.set.Len()}, nil
		}

		if confirmRetry == nil || !confirmRetry(failed) {
			return Outcome{
				Folder:    folder,
				Succeeded: p.set.Len() - len(failed),
				Failed:    len(failed),
				Cancelled: p.cancel.IsSet(),
			}, nil
		}

		p.dropSucceeded(failed)
		p.cancel.Set(false)
		log.Info(ctx, "retrying failed files", "count", len(failed))
	}
}

// resolveFolder reuses the destination folder only when the name matches
// exactly one existing folder; zero or several matches both create a fresh
// folder, so an ambiguous name never merges two batches.
func (p *Pipeline) resolveFolder(ctx context.Context, name, parentID string) (storage.FolderRef, error) {
	folders, err := p.store.ListFoldersByName(ctx, name, parentID)
	if err != nil {
		return storage.FolderRef{}, fmt.Errorf("resolve folder %q: %w", name, err)
	}
	if len(folders) == 1 {
		return folders[0], nil
	}
	folder, err := p.store.CreateFolder(ctx, name, parentID)
	if err != nil {
		return storage.FolderRef{}, fmt.Errorf("create folder %q: %w", name, err)
	}
	return folder, nil
}

type attemptResult int

const (
	attemptOK attemptResult = iota
	attemptRetriable
	attemptFatal
)

func (p *Pipeline) uploadOne(ctx context.Context, folder storage.FolderRef, f uploadset.FileRef, maxTries int, progress ProgressFunc, log logging.Logger) {
	info, err := os.Stat(f.Path)
	if err != nil {
		// Local precondition failure: the staged file is gone, retrying
		// cannot help.
		log.Error(ctx, "file missing at upload time", "path", f.Path, "error", err)
		p.set.SetStatus(f.Path, false)
		return
	}
	size := info.Size()

	for attempt := 0; ; attempt++ {
		if retryx.ShouldAbort(attempt, maxTries, p.cancel) {
			log.Warn(ctx, "giving up on file", "path", f.Path, "attempts", attempt)
			p.set.SetStatus(f.Path, false)
			return
		}

		switch p.attemptOnce(ctx, folder, f, size, progress, log) {
		case attemptOK:
			p.set.SetStatus(f.Path, true)
			return
		case attemptFatal:
			p.set.SetStatus(f.Path, false)
			return
		case attemptRetriable:
			// next iteration re-checks the retry budget
		}
	}
}

func (p *Pipeline) attemptOnce(ctx context.Context, folder storage.FolderRef, f uploadset.FileRef, size int64, progress ProgressFunc, log logging.Logger) attemptResult {
	file, err := os.Open(f.Path)
	if err != nil {
		log.Error(ctx, "cannot open file", "path", f.Path, "error", err)
		return attemptFatal
	}
	defer file.Close()

	var sink storage.ProgressFunc
	if progress != nil {
		sink = func(fraction float64) {
			progress(Progress{Path: f.Path, Fraction: fraction})
		}
	}

	name := filepath.Base(f.Path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))

	res, err := p.store.UploadResumable(ctx, file, size, name, mimeType, folder.ID, sink)
	if err != nil {
		log.Warn(ctx, "transfer attempt failed", "path", f.Path, "error", err)
		return attemptRetriable
	}
	if !res.Completed {
		log.Warn(ctx, "transfer did not complete", "path", f.Path)
		return attemptRetriable
	}

	// The transport said "done"; trust only a matching size. A truncated
	// object surfaces in the failed set for a user-driven re-pass.
	if res.RemoteSize != size {
		log.Error(ctx, "size mismatch after upload",
			"path", f.Path, "local", size, "remote", res.RemoteSize)
		return attemptFatal
	}

	return attemptOK
}

// dropSucceeded shrinks the working set to the failed subset, preserving the
// original relative order of the survivors.
func (p *Pipeline) dropSucceeded(failed []uploadset.FileRef) {
	keep := make(map[string]struct{}, len(failed))
	for _, f := range failed {
		keep[f.Path] = struct{}{}
	}

	var drop []string
	for _, f := range p.set.Files() {
		if _, ok := keep[f.Path]; !ok {
			drop = append(drop, f.Path)
		}
	}
	p.set.Remove(drop...)
}
