// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

// collector accumulates records for one search and enforces the result cap.
// Each search owns its collector; it is never shared.
type collector struct {
	max     int
	matches []Record
	state   State
}

func newCollector(max int) *collector {
	if max <= 0 {
		max = DefaultMaxResults
	}
	return &collector{
		max:     max,
		matches: make([]Record, 0, min(max, DefaultMaxResults)),
		state:   StateIdle,
	}
}

// start moves the collector into the traversing state.
func (c *collector) start() {
	c.state = StateTraversing
}

// offer appends rec unless the cap was already reached. capReached is true
// as soon as the number of matches equals the cap, including on the call that
// filled it.
func (c *collector) offer(rec Record) (accepted, capReached bool) {
	if c.state == StateCapped {
		return false, true
	}
	c.matches = append(c.matches, rec)
	if len(c.matches) >= c.max {
		c.state = StateCapped
		return true, true
	}
	return true, false
}

// finish closes the search. A walk that was not capped is exhausted.
func (c *collector) finish() []Record {
	if c.state != StateCapped {
		c.state = StateExhausted
	}
	return c.matches
}
