package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "repledger/contexts/governance/reputation-system/application"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
)

// VoteCommand casts amountWei of reputation weight from a voter towards a
// member within one poll and context type.
type VoteCommand struct {
	Voter       string
	ProjectID   string
	Member      string
	ContextType string
	PollID      string
	AmountWei   uint64
}

// VoteUseCase records votes against the poll/voter/context ledger and mirrors
// pending reputation into the project and global scopes in one atomic unit.
// The allowance read from the authorization ledger is a hard ceiling across
// all contexts of a poll; crossing it is a fatal invariant breach, not a
// normal rejection, because callers are expected to pre-check their
// remaining allowance.
type VoteUseCase struct {
	Repo          ports.Repository
	Gateway       application.Gateway
	Clock         ports.Clock
	GlobalScopeID string
	Logger        *slog.Logger
}

func (uc VoteUseCase) Vote(ctx context.Context, cmd VoteCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	projectID := strings.TrimSpace(cmd.ProjectID)
	member := strings.TrimSpace(cmd.Member)
	contextType := strings.TrimSpace(cmd.ContextType)
	pollID := strings.TrimSpace(cmd.PollID)
	if voter == "" || projectID == "" || member == "" || contextType == "" || pollID == "" || cmd.AmountWei == 0 {
		return domainerrors.ErrInvalidRequest
	}

	poll, found, err := uc.Repo.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if !found || !strings.EqualFold(poll.ProjectID, projectID) {
		return domainerrors.ErrPollNotFound
	}
	now := uc.now()
	if !poll.AcceptsVotesAt(now.Unix()) {
		return domainerrors.ErrPollNotActive
	}

	request, found, err := uc.Repo.GetPollRequest(ctx, pollID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrPollNotRegistered
	}
	if !request.HasContextType(contextType) {
		return domainerrors.ErrUnknownContextType
	}

	allowance, err := uc.Gateway.AvailableVotes(ctx, pollID, voter)
	if err != nil {
		return err
	}

	err = uc.Repo.ApplyVote(ctx, ports.ApplyVoteInput{
		PollID:         pollID,
		Voter:          voter,
		Member:         member,
		ContextType:    contextType,
		ProjectScopeID: poll.ProjectID,
		GlobalScopeID:  uc.GlobalScopeID,
		AmountWei:      cmd.AmountWei,
		Allowance:      allowance,
		Now:            now,
	})
	if err != nil {
		if domainerrors.IsInvariant(err) {
			logger.Error("vote rejected by allowance invariant",
				"event", "reputation_vote_invariant_breach",
				"module", "governance/reputation-system",
				"layer", "application",
				"poll_id", pollID,
				"voter", voter,
				"amount_wei", cmd.AmountWei,
				"allowance", allowance,
			)
		}
		return err
	}

	logger.Info("vote recorded",
		"event", "reputation_vote_recorded",
		"module", "governance/reputation-system",
		"layer", "application",
		"poll_id", pollID,
		"project_id", poll.ProjectID,
		"voter", voter,
		"member", member,
		"context_type", contextType,
		"amount_wei", cmd.AmountWei,
	)
	return nil
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
