package queries

import (
	"context"
	"strings"

	application "repledger/contexts/governance/reputation-system/application"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
)

// MemberVotes is the (confirmed, pending) tuple stored for one scope, member
// and context type. Pending is the currently unconsolidated total, not a
// per-poll breakdown.
type MemberVotes struct {
	ConfirmedVotes uint64
	PendingVotes   uint64
}

// ReputationQueries serves the read side of the vote ledger and reputation
// store. Reads never mutate state.
type ReputationQueries struct {
	Repo    ports.Repository
	Gateway application.Gateway
}

// GetVotesForMember returns the stored tuple for one scope. Unknown vectors
// read as zero, matching store semantics where vectors materialize on first
// write.
func (q ReputationQueries) GetVotesForMember(
	ctx context.Context,
	scopeID string,
	member string,
	contextType string,
) (MemberVotes, error) {
	scopeID = strings.TrimSpace(scopeID)
	member = strings.TrimSpace(member)
	contextType = strings.TrimSpace(contextType)
	if scopeID == "" || member == "" || contextType == "" {
		return MemberVotes{}, domainerrors.ErrInvalidRequest
	}
	vec, found, err := q.Repo.GetRepVec(ctx, scopeID, member, contextType)
	if err != nil {
		return MemberVotes{}, err
	}
	if !found {
		return MemberVotes{}, nil
	}
	return MemberVotes{
		ConfirmedVotes: vec.ConfirmedVotes,
		PendingVotes:   vec.TotalPendingVotes,
	}, nil
}

// GetVotingResultForMember returns the pending votes attributable to exactly
// one poll, independent of other polls feeding the same context bucket. The
// poll's project association selects the scope.
func (q ReputationQueries) GetVotingResultForMember(
	ctx context.Context,
	pollID string,
	member string,
	contextType string,
) (uint64, error) {
	pollID = strings.TrimSpace(pollID)
	member = strings.TrimSpace(member)
	contextType = strings.TrimSpace(contextType)
	if pollID == "" || member == "" || contextType == "" {
		return 0, domainerrors.ErrInvalidRequest
	}
	poll, found, err := q.Repo.GetPoll(ctx, pollID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrPollNotFound
	}
	vec, found, err := q.Repo.GetRepVec(ctx, poll.ProjectID, member, contextType)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return vec.PendingVotes[pollID], nil
}

// GetVotingResultForContextTypeByVoter returns the cumulative wei one voter
// has spent on one context type within a poll.
func (q ReputationQueries) GetVotingResultForContextTypeByVoter(
	ctx context.Context,
	pollID string,
	voter string,
	contextType string,
) (uint64, error) {
	pollID = strings.TrimSpace(pollID)
	voter = strings.TrimSpace(voter)
	contextType = strings.TrimSpace(contextType)
	if pollID == "" || voter == "" || contextType == "" {
		return 0, domainerrors.ErrInvalidRequest
	}
	return q.Repo.GetVoteRecord(ctx, pollID, voter, contextType)
}

// ReadAvailableVotesForContextType is a pure read-through to the external
// ledger. The context type does not partition the allowance; the parameter
// exists only for symmetry with Vote.
func (q ReputationQueries) ReadAvailableVotesForContextType(
	ctx context.Context,
	pollID string,
	voter string,
	contextType string,
) (uint64, error) {
	pollID = strings.TrimSpace(pollID)
	voter = strings.TrimSpace(voter)
	if pollID == "" || voter == "" || strings.TrimSpace(contextType) == "" {
		return 0, domainerrors.ErrInvalidRequest
	}
	return q.Gateway.AvailableVotes(ctx, pollID, voter)
}
