package entities

import "time"

// RepVec is the two-tier reputation vector kept per (scope, member, context
// type). Scope is either a project id or the fixed global scope id, and every
// vote writes both scopes together.
type RepVec struct {
	ScopeID     string
	Member      string
	ContextType string

	// PendingVotes breaks the unconsolidated total down by poll id.
	PendingVotes      map[string]uint64
	TotalPendingVotes uint64

	// ConfirmedVotes only grows through batch promotion or admin override.
	ConfirmedVotes uint64

	LastUpdated time.Time
	UpdateSeq   uint64
}

// ClonePendingVotes returns a defensive copy of the per-poll pending map so
// store reads never share mutable state with callers.
func (v RepVec) ClonePendingVotes() map[string]uint64 {
	if v.PendingVotes == nil {
		return map[string]uint64{}
	}
	pending := make(map[string]uint64, len(v.PendingVotes))
	for pollID, amount := range v.PendingVotes {
		pending[pollID] = amount
	}
	return pending
}
