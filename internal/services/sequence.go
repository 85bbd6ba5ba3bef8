package services

import "sync/atomic"

// SequenceGuard issues increasing tokens so that only the newest of several
// overlapping async results is applied
type SequenceGuard struct {
	latest atomic.Uint64
}

// Next issues a new token, superseding every earlier one
func (g *SequenceGuard) Next() uint64 {
	return g.latest.Add(1)
}

// IsLatest reports whether token is the most recently issued one
func (g *SequenceGuard) IsLatest(token uint64) bool {
	return g.latest.Load() == token
}
