package store

import "time"

// IDSource hands out event ids derived from the clock in milliseconds,
// bumped past the last id issued or observed so two events created in the
// same tick never collide.
type IDSource struct {
	now  func() time.Time
	last int64
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns an id strictly greater than every id seen so far.
func (g *IDSource) Next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe records an existing id so later ids stay above it.
func (g *IDSource) Observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
