// Package retryx holds the per-file retry decision for upload attempts.
package retryx

import "github.com/dmitrijs2005/mediauploader/internal/uploadset"

// ShouldAbort reports whether the transfer loop must stop retrying the
// current file: either the batch was cancelled or the attempt budget is
// spent. attempt counts completed whole-file attempts, so maxTries n means
// exactly n attempts and maxTries 0 means the file fails without a single
// attempt.
func ShouldAbort(attempt, maxTries int, cancel *uploadset.Cancel) bool {
	if cancel != nil && cancel.IsSet() {
		return true
	}
	return attempt >= maxTries
}
