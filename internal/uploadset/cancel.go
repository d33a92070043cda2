package uploadset

import "sync/atomic"

// Cancel is the batch-wide cooperative cancellation flag. It is reset at the
// start of every batch, set by an explicit user action, and checked by the
// retry loop before every attempt and between files.
type Cancel struct {
	flag atomic.Bool
}

func (c *Cancel) Set(v bool) {
	c.flag.Store(v)
}

func (c *Cancel) IsSet() bool {
	return c.flag.Load()
}
