package ledger

import "time"

// idSource hands out strictly increasing ids. Ids start from the wall clock in
// milliseconds, matching what older ledgers stored, but never repeat or go
// backwards when two entries land in the same tick or the clock steps back.
type idSource struct {
	now  func() time.Time
	last int64
}

func (g *idSource) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// observe raises the floor so that loaded ids are never handed out again.
func (g *idSource) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
