package unit

import (
	"context"
	"errors"
	"testing"

	reputationsystem "repledger/contexts/governance/reputation-system"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	httptransport "repledger/contexts/governance/reputation-system/transport/http"
)

const (
	testVoter  = "0x0000000000000000000000000000000000000011"
	testMember = "0x0000000000000000000000000000000000000022"
)

func startActivePoll(t *testing.T, module reputationsystem.Module, pollID string, projectID string, contextTypes ...string) {
	t.Helper()
	installRegistrar(t, module)
	grantRegisterCapability(t, module)
	if err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload(pollID, contextTypes...)); err != nil {
		t.Fatalf("register poll request failed: %v", err)
	}
	_, err := module.Handler.StartPollHandler(context.Background(), testRegistrar, projectID, pollID, httptransport.StartPollRequest{
		LengthSeconds: 3600,
	})
	if err != nil {
		t.Fatalf("start poll failed: %v", err)
	}
}

func castVote(t *testing.T, module reputationsystem.Module, pollID string, projectID string, contextType string, amount uint64) {
	t.Helper()
	err := module.Handler.VoteHandler(context.Background(), testVoter, pollID, httptransport.VoteRequest{
		ProjectID:   projectID,
		Member:      testMember,
		ContextType: contextType,
		AmountWei:   amount,
	})
	if err != nil {
		t.Fatalf("vote of %d failed: %v", amount, err)
	}
}

func TestVoteMirrorsPendingIntoBothScopes(t *testing.T) {
	module := newReputationModule(t)
	startActivePoll(t, module, "poll-1", "project-1", "design", "development")
	module.Ledger.WriteAvailableVotes(module.NamespaceHash, "poll-1", testVoter, 100)

	castVote(t, module, "poll-1", "project-1", "design", 50)
	castVote(t, module, "poll-1", "project-1", "development", 10)

	result, err := module.Handler.VoterResultHandler(context.Background(), "poll-1", testVoter, "design")
	if err != nil {
		t.Fatalf("voter result failed: %v", err)
	}
	if result.VotesWei != 50 {
		t.Fatalf("expected 50 wei recorded for design, got %d", result.VotesWei)
	}

	for _, scopeID := range []string{"project-1", module.GlobalScopeID} {
		votes, err := module.Handler.MemberVotesHandler(context.Background(), scopeID, testMember, "design")
		if err != nil {
			t.Fatalf("member votes for scope %s failed: %v", scopeID, err)
		}
		if votes.ConfirmedVotes != 0 || votes.PendingVotes != 50 {
			t.Fatalf("scope %s: expected (0 confirmed, 50 pending), got (%d, %d)",
				scopeID, votes.ConfirmedVotes, votes.PendingVotes)
		}
	}

	pending, err := module.Handler.MemberPollPendingHandler(context.Background(), "poll-1", testMember, "development")
	if err != nil {
		t.Fatalf("member poll pending failed: %v", err)
	}
	if pending.PendingVotes != 10 {
		t.Fatalf("expected 10 pending for development, got %d", pending.PendingVotes)
	}
}

func TestVoteAllowanceBreachIsFatalAndLeavesStateIntact(t *testing.T) {
	module := newReputationModule(t)
	startActivePoll(t, module, "poll-1", "project-1", "design", "development")
	module.Ledger.WriteAvailableVotes(module.NamespaceHash, "poll-1", testVoter, 100)

	castVote(t, module, "poll-1", "project-1", "design", 50)

	// Cumulative 101 across context types breaches the single ceiling.
	err := module.Handler.VoteHandler(context.Background(), testVoter, "poll-1", httptransport.VoteRequest{
		ProjectID:   "project-1",
		Member:      testMember,
		ContextType: "development",
		AmountWei:   51,
	})
	if !domainerrors.IsInvariant(err) {
		t.Fatalf("expected invariant breach, got %v", err)
	}

	result, err := module.Handler.VoterResultHandler(context.Background(), "poll-1", testVoter, "development")
	if err != nil {
		t.Fatalf("voter result failed: %v", err)
	}
	if result.VotesWei != 0 {
		t.Fatalf("breached vote must not persist, got %d wei", result.VotesWei)
	}
	votes, err := module.Handler.MemberVotesHandler(context.Background(), "project-1", testMember, "design")
	if err != nil {
		t.Fatalf("member votes failed: %v", err)
	}
	if votes.PendingVotes != 50 {
		t.Fatalf("prior pending state disturbed by breach: %d", votes.PendingVotes)
	}

	// Exactly reaching the ceiling stays legal.
	castVote(t, module, "poll-1", "project-1", "development", 50)
	spend, err := module.Store.VoterSpend(context.Background(), "poll-1", testVoter)
	if err != nil {
		t.Fatalf("voter spend failed: %v", err)
	}
	if spend != 100 {
		t.Fatalf("expected full allowance spent, got %d", spend)
	}
}

func TestVotePreconditions(t *testing.T) {
	module := newReputationModule(t)
	startActivePoll(t, module, "poll-1", "project-1", "design")
	module.Ledger.WriteAvailableVotes(module.NamespaceHash, "poll-1", testVoter, 100)

	err := module.Handler.VoteHandler(context.Background(), testVoter, "poll-ghost", httptransport.VoteRequest{
		ProjectID:   "project-1",
		Member:      testMember,
		ContextType: "design",
		AmountWei:   10,
	})
	if !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound for unknown poll, got %v", err)
	}

	err = module.Handler.VoteHandler(context.Background(), testVoter, "poll-1", httptransport.VoteRequest{
		ProjectID:   "project-2",
		Member:      testMember,
		ContextType: "design",
		AmountWei:   10,
	})
	if !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound for wrong project, got %v", err)
	}

	err = module.Handler.VoteHandler(context.Background(), testVoter, "poll-1", httptransport.VoteRequest{
		ProjectID:   "project-1",
		Member:      testMember,
		ContextType: "marketing",
		AmountWei:   10,
	})
	if !errors.Is(err, domainerrors.ErrUnknownContextType) {
		t.Fatalf("expected ErrUnknownContextType, got %v", err)
	}

	err = module.Handler.VoteHandler(context.Background(), testVoter, "poll-1", httptransport.VoteRequest{
		ProjectID:   "project-1",
		Member:      testMember,
		ContextType: "design",
	})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero amount, got %v", err)
	}
}

func TestAvailableVotesReadThrough(t *testing.T) {
	module := newReputationModule(t)
	startActivePoll(t, module, "poll-1", "project-1", "design")
	module.Ledger.WriteAvailableVotes(module.NamespaceHash, "poll-1", testVoter, 100)

	castVote(t, module, "poll-1", "project-1", "design", 30)

	// The allowance is a raw ledger read; spend does not reduce it and the
	// context type does not partition it.
	resp, err := module.Handler.AvailableVotesHandler(context.Background(), "poll-1", testVoter, "design")
	if err != nil {
		t.Fatalf("available votes failed: %v", err)
	}
	if resp.AvailableVotes != 100 {
		t.Fatalf("expected ledger allowance 100, got %d", resp.AvailableVotes)
	}
	other, err := module.Handler.AvailableVotesHandler(context.Background(), "poll-1", testVoter, "development")
	if err != nil {
		t.Fatalf("available votes for other context failed: %v", err)
	}
	if other.AvailableVotes != resp.AvailableVotes {
		t.Fatalf("allowance must not vary by context type")
	}
}
