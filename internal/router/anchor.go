package router

import (
	"time"

	"github.com/dmitrijs2005/mediauploader/internal/filex"
)

// anchorTime scans dir (flat, no recursion) and returns the file with the
// earliest modification time. ok is false when the directory holds no
// regular files. When several files share the minimum timestamp any one of
// them may be returned; callers only rely on the timestamp itself.
func anchorTime(dir string) (entry filex.Entry, anchor time.Time, ok bool, err error) {
	files, err := filex.ListFiles(dir)
	if err != nil {
		return filex.Entry{}, time.Time{}, false, err
	}
	if len(files) == 0 {
		return filex.Entry{}, time.Time{}, false, nil
	}

	earliest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.Before(earliest.ModTime) {
			earliest = f
		}
	}
	return earliest, earliest.ModTime, true, nil
}
