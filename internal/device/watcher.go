// Package device detects removable-media arrival. Without an OS-level
// volume notification hook the watcher polls candidate drive roots and
// reports a root the first time it appears.
package device

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/mediauploader/internal/filex"
	"github.com/dmitrijs2005/mediauploader/internal/logging"
)

// Listener is the device-arrival collaborator consumed by the application
// loop. StartWatch and StopWatch pause delivery while an episode or an
// upload batch is in flight.
type Listener interface {
	StartWatch()
	StopWatch()
	Events() <-chan string
}

// PollWatcher scans drive roots rendered from rootFormat for letters
// firstLetter..'Z' on a fixed interval. A root is announced once per
// insertion: it must disappear before it can fire again.
type PollWatcher struct {
	rootFormat  string
	firstLetter rune
	interval    time.Duration
	log         logging.Logger

	paused atomic.Bool
	events chan string
	seen   map[string]bool
}

func NewPollWatcher(rootFormat string, firstLetter rune, interval time.Duration, log logging.Logger) *PollWatcher {
	return &PollWatcher{
		rootFormat:  rootFormat,
		firstLetter: firstLetter,
		interval:    interval,
		log:         log,
		events:      make(chan string, 4),
		seen:        make(map[string]bool),
	}
}

func (w *PollWatcher) Events() <-chan string { return w.events }

// StartWatch resumes event delivery.
func (w *PollWatcher) StartWatch() { w.paused.Store(false) }

// StopWatch pauses event delivery; arrivals during the pause are announced
// on the next poll after StartWatch.
func (w *PollWatcher) StopWatch() { w.paused.Store(true) }

// Run polls until ctx is cancelled. It is meant to be started once, in its
// own goroutine.
func (w *PollWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *PollWatcher) poll(ctx context.Context) {
	for l := w.firstLetter; l <= 'Z'; l++ {
		root := fmt.Sprintf(w.rootFormat, l)
		exists := filex.DirExists(root)

		switch {
		case exists && !w.seen[root]:
			if w.paused.Load() {
				continue // stays unseen, re-announced after StartWatch
			}
			w.seen[root] = true
			select {
			case w.events <- root:
				w.log.Info(ctx, "device arrived", "root", root)
			default:
				w.log.Warn(ctx, "event channel full, dropping arrival", "root", root)
				w.seen[root] = false
			}
		case !exists && w.seen[root]:
			w.seen[root] = false
			w.log.Debug(ctx, "device removed", "root", root)
		}
	}
}
