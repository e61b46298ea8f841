package cart

import "context"

// call is one in-flight fetch. Its ctx is cancelled once a newer fetch of the
// same kind starts.
type call struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// slot holds the latest fetch of one kind. All methods require Service.mu.
type slot struct {
	cur *call
}

func (sl *slot) start(parent context.Context) *call {
	if sl.cur != nil {
		sl.cur.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	sl.cur = &call{ctx: ctx, cancel: cancel}
	return sl.cur
}

func (sl *slot) done(c *call) bool {
	c.cancel()
	if sl.cur != c {
		return false
	}
	sl.cur = nil
	return true
}

func (sl *slot) busy() bool {
	return sl.cur != nil
}

// stop cancels the current fetch, if any, so it cannot commit.
func (sl *slot) stop() {
	if sl.cur != nil {
		sl.cur.cancel()
	}
}
