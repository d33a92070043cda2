package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/mediauploader/internal/events"
	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
)

// Notify reports a benign episode outcome to the user.
func (a *App) Notify(ctx context.Context, msg string) {
	printlnFn(msg)
}

// ConfirmMove asks the user to approve moving the device material.
func (a *App) ConfirmMove(ctx context.Context, source, target string) (bool, error) {
	return GetConfirm(a.reader, fmt.Sprintf("Move %s → %s?", source, target), a.out)
}

// SelectEvent resolves an ambiguous catalog match by listing the candidates
// and reading a 1-based choice. An empty answer abandons the episode.
func (a *App) SelectEvent(ctx context.Context, candidates []events.CandidateEvent) (events.CandidateEvent, bool, error) {
	printlnFn("Several events match this material:")
	for i, ev := range candidates {
		printlnFn(fmt.Sprintf("  %d. %s  %s", i+1, ev.StartsAt.Format("2006-01-02 15:04"), ev.Name))
	}

	answer, err := GetSimpleText(a.reader, "Pick an event number (empty to skip)", a.out)
	if err != nil {
		return events.CandidateEvent{}, false, err
	}
	if answer == "" {
		return events.CandidateEvent{}, false, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(candidates) {
		printlnFn("no such event, skipping")
		return events.CandidateEvent{}, false, nil
	}
	return candidates[n-1], true, nil
}

// fileRef builds a batch entry from a path on disk.
func fileRef(path string) (uploadset.FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return uploadset.FileRef{}, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if info.IsDir() {
		return uploadset.FileRef{}, fmt.Errorf("%s is a directory", path)
	}
	return uploadset.FileRef{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}
