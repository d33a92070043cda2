// Package router decides what happens when removable media shows up: find
// the source folder, derive the anchor timestamp, match a catalog event (or
// fall back to a dated "lost" folder), confirm, stage the files locally and
// hand the batch to the upload pipeline.
package router

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediauploader/internal/events"
	"github.com/dmitrijs2005/mediauploader/internal/filex"
	"github.com/dmitrijs2005/mediauploader/internal/logging"
	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
)

const dateLayout = "2006-01-02"

// Prompter is the user-confirmation boundary. The CLI implements it; tests
// script it.
type Prompter interface {
	// Notify reports a benign terminal outcome, e.g. "no files on device".
	Notify(ctx context.Context, msg string)

	// ConfirmMove presents the computed source → target pair.
	ConfirmMove(ctx context.Context, source, target string) (bool, error)

	// SelectEvent resolves an ambiguous catalog match. ok is false when the
	// user abandons the episode instead of choosing.
	SelectEvent(ctx context.Context, candidates []events.CandidateEvent) (ev events.CandidateEvent, ok bool, err error)
}

// Handoff receives the staged batch. failed is the number of files that did
// not upload; the staged folder is only deleted when it is zero. A Handoff
// that declines to upload reports uploaded=false.
type Handoff interface {
	UploadStaged(ctx context.Context, folderName string, files []uploadset.FileRef) (uploaded bool, failed int, err error)
}

type Config struct {
	// DeviceFolders are candidate subfolders under a device root, checked
	// in order; the first one that exists becomes the source.
	DeviceFolders []string

	// DownloadRoot receives event-routed folders; LostRoot receives dated
	// fallback folders.
	DownloadRoot string
	LostRoot     string

	// LookupWindow bounds how old the anchor may be for an event lookup.
	// StalenessWarn is the age past which the device clock looks wrong.
	LookupWindow  time.Duration
	StalenessWarn time.Duration

	// DriveRootFormat renders a drive letter into a root path for Scan,
	// e.g. "%c:/" on Windows-style layouts.
	DriveRootFormat string

	// DeleteAfterUpload removes the staged folder after a clean batch.
	DeleteAfterUpload bool
}

// Episode is the immutable result of one device-arrival cycle.
type Episode struct {
	State  State // final state, always StateIdle after the run
	Source string
	Target string
	Event  *events.CandidateEvent
	Staged []uploadset.FileRef
}

type Router struct {
	cfg     Config
	matcher *events.Matcher
	prompt  Prompter
	handoff Handoff
	log     logging.Logger
	now     func() time.Time

	// episodes and upload batches are mutually exclusive in time
	mu sync.Mutex
}

func New(cfg Config, matcher *events.Matcher, prompt Prompter, handoff Handoff, log logging.Logger) *Router {
	return &Router{
		cfg:     cfg,
		matcher: matcher,
		prompt:  prompt,
		handoff: handoff,
		log:     log,
		now:     time.Now,
	}
}

// OnDeviceConnected runs one full episode for the given device root.
// Benign dead ends (no source folder, no files, declined confirmation,
// abandoned selection) return to idle without error.
func (r *Router) OnDeviceConnected(ctx context.Context, driveRoot string) (Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runEpisode(ctx, driveRoot, false)
}

// Scan probes drive letters from startLetter through 'Z', running the
// normal episode flow on the first root that yields a source folder.
// Individual misses stay quiet; only a full sweep with no source is
// reported.
func (r *Router) Scan(ctx context.Context, startLetter rune) (Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for l := startLetter; l <= 'Z'; l++ {
		root := fmt.Sprintf(r.cfg.DriveRootFormat, l)
		if r.findSource(root) == "" {
			continue
		}
		return r.runEpisode(ctx, root, true)
	}

	r.prompt.Notify(ctx, "no device folder found on any drive")
	return Episode{State: StateIdle}, nil
}

func (r *Router) runEpisode(ctx context.Context, driveRoot string, quiet bool) (Episode, error) {
	log := r.log.With("device", driveRoot)
	ep := episode{state: StateIdle}

	// Idle → SourceSearch
	if err := ep.advance(StateSourceSearch); err != nil {
		return ep.result(), err
	}
	source := r.findSource(driveRoot)
	if source == "" {
		if !quiet {
			r.prompt.Notify(ctx, fmt.Sprintf("no known media folder under %s", driveRoot))
		}
		return ep.finish(), nil
	}
	ep.source = source
	log.Info(ctx, "source folder found", "source", source)

	// SourceSearch → AnchorAnalysis
	if err := ep.advance(StateAnchorAnalysis); err != nil {
		return ep.result(), err
	}
	_, anchor, ok, err := anchorTime(source)
	if err != nil {
		return ep.result(), err
	}
	if !ok {
		r.prompt.Notify(ctx, fmt.Sprintf("%s contains no files", source))
		return ep.finish(), nil
	}
	log.Info(ctx, "anchor resolved", "anchor", anchor)

	// AnchorAnalysis → RouteDecision
	if err := ep.advance(StateRouteDecision); err != nil {
		return ep.result(), err
	}
	now := r.now()
	age := now.Sub(anchor)
	if r.cfg.StalenessWarn > 0 && age >= r.cfg.StalenessWarn {
		log.Warn(ctx, "anchor is suspiciously old, device clock may be wrong",
			"anchor", anchor, "age", age)
	}

	var targetName string
	var matched *events.CandidateEvent

	if age <= r.cfg.LookupWindow {
		// RouteDecision → EventLookup
		if err := ep.advance(StateEventLookup); err != nil {
			return ep.result(), err
		}
		match, err := r.matcher.Match(ctx, anchor, r.cfg.LookupWindow)
		if err != nil {
			return ep.result(), err
		}

		switch match.Kind {
		case events.NoMatch:
			if err := ep.advance(StateLostRoute); err != nil {
				return ep.result(), err
			}
			targetName = now.Format(dateLayout)
		case events.Unique:
			ev := match.Event()
			matched = &ev
		case events.Ambiguous:
			ev, chosen, err := r.prompt.SelectEvent(ctx, match.Events)
			if err != nil {
				return ep.result(), err
			}
			if !chosen {
				log.Info(ctx, "event selection abandoned")
				return ep.finish(), nil
			}
			matched = &ev
		}

		if matched != nil {
			if err := ep.advance(StateEventRoute); err != nil {
				return ep.result(), err
			}
			targetName = eventFolderName(*matched)
			ep.event = matched
		}
	} else {
		// RouteDecision → LostRoute, catalog never queried
		if err := ep.advance(StateLostRoute); err != nil {
			return ep.result(), err
		}
		targetName = now.Format(dateLayout)
	}

	target := filepath.Join(r.targetRoot(ep.state), targetName)
	ep.target = target

	// LostRoute|EventRoute → ConfirmMove
	if err := ep.advance(StateConfirmMove); err != nil {
		return ep.result(), err
	}
	accepted, err := r.prompt.ConfirmMove(ctx, source, target)
	if err != nil {
		return ep.result(), err
	}
	if !accepted {
		log.Info(ctx, "move declined", "target", target)
		return ep.finish(), nil
	}

	// ConfirmMove → Moving
	if err := ep.advance(StateMoving); err != nil {
		return ep.result(), err
	}
	if err := filex.MoveDir(source, target); err != nil {
		return ep.result(), fmt.Errorf("stage %s: %w", source, err)
	}

	// Moving → Staged
	if err := ep.advance(StateStaged); err != nil {
		return ep.result(), err
	}
	staged, err := filex.ListFiles(target)
	if err != nil {
		return ep.result(), err
	}
	for _, f := range staged {
		ep.staged = append(ep.staged, uploadset.FileRef{Path: f.Path, Size: f.Size, ModTime: f.ModTime})
	}
	log.Info(ctx, "files staged", "target", target, "count", len(ep.staged))

	uploaded, failed, err := r.handoff.UploadStaged(ctx, targetName, ep.staged)
	if err != nil {
		return ep.result(), err
	}
	if uploaded && failed == 0 && r.cfg.DeleteAfterUpload {
		if err := filex.RemoveDir(target); err != nil {
			log.Warn(ctx, "cannot delete staged folder", "target", target, "error", err)
		}
	}

	return ep.finish(), nil
}

// findSource returns the first configured candidate subfolder that exists
// under root, or "".
func (r *Router) findSource(root string) string {
	for _, sub := range r.cfg.DeviceFolders {
		candidate := filepath.Join(root, sub)
		if filex.DirExists(candidate) {
			return candidate
		}
	}
	return ""
}

// targetRoot picks the staging root by route kind.
func (r *Router) targetRoot(s State) string {
	if s == StateEventRoute {
		return r.cfg.DownloadRoot
	}
	return r.cfg.LostRoot
}

// eventFolderName derives the destination folder name from the event's
// start date and name.
func eventFolderName(ev events.CandidateEvent) string {
	return fmt.Sprintf("%s %s", ev.StartsAt.Format(dateLayout), sanitizeName(ev.Name))
}

// sanitizeName strips characters that cannot appear in folder names.
func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// episode tracks the mutable state of one run and enforces the transition
// table.
type episode struct {
	state  State
	source string
	target string
	event  *events.CandidateEvent
	staged []uploadset.FileRef
}

func (e *episode) advance(to State) error {
	if err := ValidateTransition(e.state, to); err != nil {
		return err
	}
	e.state = to
	return nil
}

// finish returns to idle and snapshots the episode.
func (e *episode) finish() Episode {
	e.state = StateIdle
	return e.result()
}

func (e *episode) result() Episode {
	return Episode{
		State:  e.state,
		Source: e.source,
		Target: e.target,
		Event:  e.event,
		Staged: e.staged,
	}
}
