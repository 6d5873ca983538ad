package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
)

func TestApplyVoteEnforcesAllowanceAtomically(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	input := ports.ApplyVoteInput{
		PollID:         "poll-1",
		Voter:          "voter-1",
		Member:         "member-1",
		ContextType:    "design",
		ProjectScopeID: "project-1",
		GlobalScopeID:  "global",
		AmountWei:      60,
		Allowance:      100,
		Now:            now,
	}
	if err := store.ApplyVote(context.Background(), input); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	breach := input
	breach.ContextType = "development"
	breach.AmountWei = 41
	err := store.ApplyVote(context.Background(), breach)
	if !domainerrors.IsInvariant(err) {
		t.Fatalf("expected invariant breach at cumulative 101, got %v", err)
	}

	spend, err := store.VoterSpend(context.Background(), "poll-1", "voter-1")
	if err != nil {
		t.Fatalf("voter spend failed: %v", err)
	}
	if spend != 60 {
		t.Fatalf("breached vote must not change spend, got %d", spend)
	}
	for _, scopeID := range []string{"project-1", "global"} {
		vec, found, err := store.GetRepVec(context.Background(), scopeID, "member-1", "design")
		if err != nil || !found {
			t.Fatalf("scope %s vector missing: found=%v err=%v", scopeID, found, err)
		}
		if vec.TotalPendingVotes != 60 || vec.PendingVotes["poll-1"] != 60 {
			t.Fatalf("scope %s: expected 60 pending, got %+v", scopeID, vec)
		}
	}
	if _, found, _ := store.GetRepVec(context.Background(), "project-1", "member-1", "development"); found {
		t.Fatalf("breached vote must not materialize a vector")
	}
}

func TestApplyVoteRejectsOversizedSingleVote(t *testing.T) {
	store := NewStore()
	err := store.ApplyVote(context.Background(), ports.ApplyVoteInput{
		PollID:         "poll-1",
		Voter:          "voter-1",
		Member:         "member-1",
		ContextType:    "design",
		ProjectScopeID: "project-1",
		GlobalScopeID:  "global",
		AmountWei:      101,
		Allowance:      100,
		Now:            time.Now().UTC(),
	})
	if !domainerrors.IsInvariant(err) {
		t.Fatalf("expected invariant breach for oversized vote, got %v", err)
	}
}

func TestPromoteContextsFlagIndependence(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	seed := ports.ApplyVoteInput{
		PollID:         "poll-1",
		Voter:          "voter-1",
		Member:         "member-1",
		ContextType:    "design",
		ProjectScopeID: "project-1",
		GlobalScopeID:  "global",
		AmountWei:      40,
		Allowance:      100,
		Now:            now,
	}
	if err := store.ApplyVote(context.Background(), seed); err != nil {
		t.Fatalf("seed vote failed: %v", err)
	}

	err := store.PromoteContexts(context.Background(), ports.PromoteInput{
		ScopeIDs:        []string{"project-1", "global"},
		Member:          "member-1",
		ContextTypes:    []string{"design"},
		MoveToConfirmed: true,
		Now:             now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	vec, _, _ := store.GetRepVec(context.Background(), "global", "member-1", "design")
	if vec.ConfirmedVotes != 40 || vec.TotalPendingVotes != 40 {
		t.Fatalf("promotion without reset must keep pending: %+v", vec)
	}

	err = store.PromoteContexts(context.Background(), ports.PromoteInput{
		ScopeIDs:     []string{"project-1", "global"},
		Member:       "member-1",
		ContextTypes: []string{"design"},
		ResetPending: true,
		Now:          now.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	vec, _, _ = store.GetRepVec(context.Background(), "global", "member-1", "design")
	if vec.ConfirmedVotes != 40 || vec.TotalPendingVotes != 0 || len(vec.PendingVotes) != 0 {
		t.Fatalf("reset without promotion must only clear pending: %+v", vec)
	}
}

func TestRegistrarIsWriteOnce(t *testing.T) {
	store := NewStore()
	if err := store.SetRegistrar(context.Background(), "registrar-1"); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	err := store.SetRegistrar(context.Background(), "registrar-2")
	if !errors.Is(err, domainerrors.ErrRegistrarAlreadySet) {
		t.Fatalf("expected ErrRegistrarAlreadySet, got %v", err)
	}
	registrar, found, err := store.GetRegistrar(context.Background())
	if err != nil || !found || registrar != "registrar-1" {
		t.Fatalf("registrar must stay at first value: %q found=%v err=%v", registrar, found, err)
	}
}
