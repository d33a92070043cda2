package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediauploader/internal/history"
	"github.com/dmitrijs2005/mediauploader/internal/pipeline"
	"github.com/dmitrijs2005/mediauploader/internal/router"
	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
	"github.com/google/uuid"
)

// Add puts a file into the pending batch.
func (a *App) Add(ctx context.Context, path string) error {
	ref, err := fileRef(path)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	a.set.Add(ref)
	printlnFn("added", path)
	return nil
}

func (a *App) Remove(path string) error {
	a.set.Remove(path)
	printlnFn("removed", path)
	return nil
}

func (a *App) Clear() error {
	a.set.Clear()
	printlnFn("batch cleared")
	return nil
}

func (a *App) List(ctx context.Context) error {
	files := a.set.Files()
	if len(files) == 0 {
		printlnFn("batch is empty")
		return nil
	}
	for _, f := range files {
		st, _ := a.set.Status(f.Path)
		printlnFn(fmt.Sprintf("%-9s %10d  %s", st, f.Size, f.Path))
	}
	return nil
}

// Upload transfers the pending batch into a remote folder called name and
// records the run in the history journal.
func (a *App) Upload(ctx context.Context, name string) error {
	if a.set.Len() == 0 {
		printlnFn("batch is empty, nothing to upload")
		return nil
	}
	_, _, err := a.runBatch(ctx, name)
	return err
}

// CancelUpload flips the cancellation flag for the running batch.
func (a *App) CancelUpload() error {
	a.pipe.SetCancel(true)
	printlnFn("cancel requested")
	return nil
}

// Scan probes drive letters for a connected device and runs a full episode
// on the first root that has source material.
func (a *App) Scan(ctx context.Context, letter string) error {
	start := firstLetter(a.config.FirstDeviceLetter)
	if letter != "" {
		start = rune(letter[0])
	}
	ep, err := a.router.Scan(ctx, start)
	if err != nil {
		a.log.Error(ctx, "scan failed", "error", err)
		printlnFn(err.Error())
		return err
	}
	printEpisode(ep)
	return nil
}

// Watch polls for device arrivals and runs an episode per arrival. It blocks
// until ctx is cancelled; polling pauses while an episode is interactive.
func (a *App) Watch(ctx context.Context) error {
	printlnFn("watching for devices, Ctrl+C to stop")

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() { _ = a.watcher.Run(watchCtx) }()
	a.watcher.StartWatch()
	defer a.watcher.StopWatch()

	for {
		select {
		case <-ctx.Done():
			return nil
		case root := <-a.watcher.Events():
			a.watcher.StopWatch()
			ep, err := a.router.OnDeviceConnected(ctx, root)
			if err != nil {
				a.log.Error(ctx, "device episode failed", "root", root, "error", err)
				printlnFn(err.Error())
			} else {
				printEpisode(ep)
			}
			a.watcher.StartWatch()
		}
	}
}

// Reports prints the most recent batch history entries.
func (a *App) Reports(ctx context.Context) error {
	batches, err := a.journal.RecentBatches(ctx, 10)
	if err != nil {
		a.log.Error(ctx, "history query failed", "error", err)
		return err
	}
	if len(batches) == 0 {
		printlnFn("no batches recorded")
		return nil
	}
	for _, b := range batches {
		printlnFn(fmt.Sprintf("%s  %-20s  total=%d ok=%d failed=%d cancelled=%v",
			b.StartedAt.Format("2006-01-02 15:04"), b.Name, b.Total, b.Succeeded, b.Failed, b.Cancelled))
		if b.Failed > 0 {
			failures, err := a.journal.Failures(ctx, b.ID)
			if err != nil {
				return err
			}
			for _, f := range failures {
				printlnFn("  failed:", f.Path, "-", f.Reason)
			}
		}
	}
	return nil
}

// runBatch drives one pipeline batch with interactive progress and re-pass
// confirmation, then journals the outcome.
func (a *App) runBatch(ctx context.Context, name string) (pipeline.Outcome, int, error) {
	total := a.set.Len()
	started := time.Now()

	progress := func(p pipeline.Progress) {
		printlnFn(fmt.Sprintf("%s: %3.0f%%", p.Path, p.Fraction*100))
	}
	confirmRetry := func(failed []uploadset.FileRef) bool {
		ok, err := GetConfirm(a.reader, fmt.Sprintf("%d file(s) failed, retry them?", len(failed)), a.out)
		if err != nil {
			return false
		}
		return ok
	}

	outcome, err := a.pipe.UploadBatch(ctx, name, a.config.ParentPrefix, a.config.MaxTries, progress, confirmRetry)
	if err != nil {
		a.log.Error(ctx, "upload batch failed", "name", name, "error", err)
		printlnFn(err.Error())
		return outcome, total, err
	}

	rec := batchRecord(name, outcome, total, started)
	if err := a.journal.SaveBatch(ctx, rec, failureRecords(rec.ID, a.set)); err != nil {
		a.log.Error(ctx, "history save failed", "error", err)
	}

	printlnFn(fmt.Sprintf("done: %d/%d uploaded, %d failed, cancelled=%v",
		outcome.Succeeded, total, outcome.Failed, outcome.Cancelled))
	return outcome, total, nil
}

// UploadStaged is the router handoff: it loads the staged files into the
// batch ledger and runs an upload into a folder named after the episode.
func (a *App) UploadStaged(ctx context.Context, folderName string, files []uploadset.FileRef) (bool, int, error) {
	ok, err := GetConfirm(a.reader, fmt.Sprintf("Upload %d file(s) to %q?", len(files), folderName), a.out)
	if err != nil || !ok {
		return false, 0, err
	}

	a.set.Clear()
	for _, f := range files {
		a.set.Add(f)
	}

	outcome, _, err := a.runBatch(ctx, folderName)
	if err != nil {
		return false, len(files), err
	}
	return true, outcome.Failed, nil
}

func printEpisode(ep router.Episode) {
	if ep.Source == "" {
		printlnFn("no device material found")
		return
	}
	if ep.Target == "" {
		printlnFn("episode ended without a move:", ep.Source)
		return
	}
	if ep.Event != nil {
		printlnFn(fmt.Sprintf("%s → %s (event: %s)", ep.Source, ep.Target, ep.Event.Name))
	} else {
		printlnFn(fmt.Sprintf("%s → %s (no event matched)", ep.Source, ep.Target))
	}
}

func batchRecord(name string, o pipeline.Outcome, total int, started time.Time) history.BatchRecord {
	return history.BatchRecord{
		ID:         uuid.NewString(),
		Name:       name,
		FolderID:   o.Folder.ID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Total:      total,
		Succeeded:  o.Succeeded,
		Failed:     o.Failed,
		Cancelled:  o.Cancelled,
	}
}

func failureRecords(batchID string, set *uploadset.Set) []history.FailureRecord {
	var out []history.FailureRecord
	for _, f := range set.FailedFiles() {
		reason := "upload failed"
		if st, ok := set.Status(f.Path); ok && st == uploadset.StatusPending {
			reason = "not attempted"
		}
		out = append(out, history.FailureRecord{BatchID: batchID, Path: f.Path, Reason: reason})
	}
	return out
}
