package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "repledger/contexts/governance/reputation-system/application"
	"repledger/contexts/governance/reputation-system/domain/entities"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
	"repledger/internal/shared/outbox"
)

const (
	EventTypeSetRepVec       = "reputation.repvec_set"
	EventTypeSetPendingVotes = "reputation.pending_votes_set"
)

// SetRepVecCommand overwrites a reputation vector wholesale. It exists for
// migration and recovery and bypasses time windows and allowances entirely.
type SetRepVecCommand struct {
	Caller             string
	ScopeID            string
	Member             string
	ContextType        string
	LastUpdated        time.Time
	UpdatedBlockNumber uint64
	ConfirmedVotes     uint64
	PendingPollIDs     []string
	PendingVotes       []uint64
	TotalPendingVotes  uint64
}

// setRepVecAudit captures the scalar fields of an override. Identifier-like
// fields are normalized to the fixed-width encoding.
type setRepVecAudit struct {
	Requester          string `json:"requester"`
	ReputationSystemID string `json:"reputation_system_id"`
	MemberAddress      string `json:"member_address"`
	ContextType        string `json:"context_type"`
	LastUpdated        int64  `json:"last_updated"`
	UpdatedBlockNumber uint64 `json:"updated_block_number"`
	Votes              uint64 `json:"votes"`
	TotalPendingVotes  uint64 `json:"total_pending_votes"`
}

// setPendingVotesAudit captures the parallel per-poll pending arrays.
type setPendingVotesAudit struct {
	PollIDsForPendingVotes []string `json:"poll_ids_for_pending_votes"`
	VotesForPendingVotes   []uint64 `json:"votes_for_pending_votes"`
}

// AdminUseCase is the root-restricted override path. Every override persists
// two audit records in the same transaction as the vector write.
type AdminUseCase struct {
	Repo          ports.Repository
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Root          string
	SourceService string
	Logger        *slog.Logger
}

func (uc AdminUseCase) SetRepVec(ctx context.Context, cmd SetRepVecCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	scopeID := strings.TrimSpace(cmd.ScopeID)
	member := strings.TrimSpace(cmd.Member)
	contextType := strings.TrimSpace(cmd.ContextType)
	if caller == "" || scopeID == "" || member == "" || contextType == "" {
		return domainerrors.ErrInvalidRequest
	}
	if caller != uc.Root {
		return domainerrors.ErrNotRoot
	}
	if len(cmd.PendingPollIDs) != len(cmd.PendingVotes) {
		return domainerrors.ErrPendingArrayMismatch
	}

	pending := make(map[string]uint64, len(cmd.PendingPollIDs))
	for i, pollID := range cmd.PendingPollIDs {
		pollID = strings.TrimSpace(pollID)
		if pollID == "" {
			return domainerrors.ErrInvalidRequest
		}
		pending[pollID] = cmd.PendingVotes[i]
	}

	vec := entities.RepVec{
		ScopeID:           scopeID,
		Member:            member,
		ContextType:       contextType,
		PendingVotes:      pending,
		TotalPendingVotes: cmd.TotalPendingVotes,
		ConfirmedVotes:    cmd.ConfirmedVotes,
		LastUpdated:       cmd.LastUpdated.UTC(),
		UpdateSeq:         cmd.UpdatedBlockNumber,
	}

	now := uc.now()
	audit, err := uc.buildAuditMessages(ctx, caller, cmd, now)
	if err != nil {
		return err
	}
	if err := uc.Repo.OverwriteRepVec(ctx, vec, audit); err != nil {
		return err
	}

	logger.Info("reputation vector overridden",
		"event", "reputation_repvec_overridden",
		"module", "governance/reputation-system",
		"layer", "application",
		"scope_id", scopeID,
		"member", member,
		"context_type", contextType,
		"confirmed_votes", cmd.ConfirmedVotes,
		"total_pending_votes", cmd.TotalPendingVotes,
		"pending_polls", len(cmd.PendingPollIDs),
	)
	return nil
}

func (uc AdminUseCase) buildAuditMessages(
	ctx context.Context,
	requester string,
	cmd SetRepVecCommand,
	now time.Time,
) ([]outbox.Message, error) {
	scalarPayload := setRepVecAudit{
		Requester:          entities.NormalizeID(requester),
		ReputationSystemID: entities.NormalizeID(strings.TrimSpace(cmd.ScopeID)),
		MemberAddress:      entities.NormalizeID(strings.TrimSpace(cmd.Member)),
		ContextType:        entities.NormalizeID(strings.TrimSpace(cmd.ContextType)),
		LastUpdated:        cmd.LastUpdated.UTC().Unix(),
		UpdatedBlockNumber: cmd.UpdatedBlockNumber,
		Votes:              cmd.ConfirmedVotes,
		TotalPendingVotes:  cmd.TotalPendingVotes,
	}
	arrayPayload := setPendingVotesAudit{
		PollIDsForPendingVotes: append([]string(nil), cmd.PendingPollIDs...),
		VotesForPendingVotes:   append([]uint64(nil), cmd.PendingVotes...),
	}

	scalarMessage, err := uc.envelopeMessage(ctx, EventTypeSetRepVec, cmd.Member, now, scalarPayload)
	if err != nil {
		return nil, err
	}
	arrayMessage, err := uc.envelopeMessage(ctx, EventTypeSetPendingVotes, cmd.Member, now, arrayPayload)
	if err != nil {
		return nil, err
	}
	return []outbox.Message{scalarMessage, arrayMessage}, nil
}

func (uc AdminUseCase) envelopeMessage(
	ctx context.Context,
	eventType string,
	member string,
	occurredAt time.Time,
	payload any,
) (outbox.Message, error) {
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return outbox.Message{}, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return outbox.Message{}, err
	}
	envelope := ports.AuditEvent{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SourceService: uc.SourceService,
		SchemaVersion: 1,
		PartitionKey:  entities.NormalizeID(strings.TrimSpace(member)),
		Data:          data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return outbox.Message{}, err
	}
	return outbox.Message{
		ID:        eventID,
		EventType: eventType,
		Payload:   raw,
		Status:    "pending",
	}, nil
}

func (uc AdminUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
