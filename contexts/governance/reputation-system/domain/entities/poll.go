package entities

import "time"

// PollRequest is the reusable template a poll is activated from. A poll id,
// once registered, can never be registered again; the record stays mutable
// until a poll references it.
type PollRequest struct {
	PollID       string
	MinStartTime int64
	MaxStartTime int64
	PseudoPrice  uint64
	PriceGTEOne  bool
	TokenAddress string
	ContextTypes []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r PollRequest) HasContextType(contextType string) bool {
	for _, candidate := range r.ContextTypes {
		if candidate == contextType {
			return true
		}
	}
	return false
}

// Poll is an activation of a PollRequest under a specific project. Polls are
// never deleted; they fall out of the voting window instead.
type Poll struct {
	PollID    string
	ProjectID string
	StartTime int64
	EndTime   int64
	Active    bool
	CreatedAt time.Time
}

// AcceptsVotesAt reports whether the poll accepts votes at the given unix
// second.
func (p Poll) AcceptsVotesAt(unix int64) bool {
	return p.Active && unix >= p.StartTime && unix <= p.EndTime
}

// Project aggregates polls started against one project id.
type Project struct {
	ProjectID string
	PollCount uint64
}

// VoteRecord is the cumulative wei amount one voter has cast for one context
// type within one poll. It only ever grows within a poll.
type VoteRecord struct {
	PollID      string
	Voter       string
	ContextType string
	VotesWei    uint64
}
