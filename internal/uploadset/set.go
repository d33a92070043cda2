// Package uploadset holds the shared ledger of one upload batch: which files
// are pending, which succeeded and which failed, plus the batch-wide
// cancellation flag.
package uploadset

import (
	"fmt"
	"sync"
	"time"
)

// Status of a single file within a batch.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FileRef identifies a local file queued for upload. Path is the key;
// Size and ModTime are captured at staging time.
type FileRef struct {
	Path    string
	Size    int64
	ModTime time.Time
}

type entry struct {
	ref    FileRef
	status Status
}

// Set is an insertion-ordered (file → status) map. The active pipeline is
// the single writer; status displays may read concurrently.
type Set struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

func New() *Set {
	return &Set{entries: make(map[string]entry)}
}

// Add inserts each file not already present with status pending.
// Re-adding an existing path is a no-op, so Add is idempotent.
func (s *Set) Add(files ...FileRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range files {
		if _, ok := s.entries[f.Path]; ok {
			continue
		}
		s.entries[f.Path] = entry{ref: f, status: StatusPending}
		s.order = append(s.order, f.Path)
	}
}

// Remove deletes entries for the given paths. Absent paths are ignored.
func (s *Set) Remove(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range paths {
		if _, ok := s.entries[p]; !ok {
			continue
		}
		delete(s.entries, p)
		for i, o := range s.order {
			if o == p {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.entries = make(map[string]entry)
}

// SetStatus records the outcome of an upload attempt for a file already in
// the set. Calling it for an unknown path is a programming error and panics.
func (s *Set) SetStatus(path string, succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[path]
	if !ok {
		panic(fmt.Sprintf("uploadset: SetStatus for unknown file %q", path))
	}
	if succeeded {
		e.status = StatusSucceeded
	} else {
		e.status = StatusFailed
	}
	s.entries[path] = e
}

// Files returns all entries in insertion order.
func (s *Set) Files() []FileRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FileRef, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.entries[p].ref)
	}
	return out
}

// FailedFiles returns, in insertion order, every entry that has not been
// confirmed succeeded. That covers both attempted-and-failed files and files
// a cancelled pass never reached, so a retry pass naturally picks up both.
func (s *Set) FailedFiles() []FileRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FileRef, 0, len(s.order))
	for _, p := range s.order {
		if e := s.entries[p]; e.status != StatusSucceeded {
			out = append(out, e.ref)
		}
	}
	return out
}

// Status reports the current status for path.
func (s *Set) Status(path string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[path]
	return e.status, ok
}

// Len returns the number of entries.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
