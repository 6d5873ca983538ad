package ports

import (
	"context"
	"time"

	"repledger/contexts/governance/reputation-system/domain/entities"
	contractsv1 "repledger/contracts/gen/events/v1"
	"repledger/internal/shared/outbox"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for audit/outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// VoteAuthorizationLedger is the external ledger that rations voting rights
// and gates privileged operations. Capability identifiers are keccak hashes
// of their logical names; the ledger is always consulted through the gateway
// and never re-implemented inside this system.
type VoteAuthorizationLedger interface {
	GrantCapability(ctx context.Context, capabilityHash string, caller string) error
	RevokeCapability(ctx context.Context, capabilityHash string, caller string) error
	HasCapability(ctx context.Context, capabilityHash string, caller string) (bool, error)
	AvailableVotes(ctx context.Context, namespaceHash string, pollID string, voter string) (uint64, error)
}

// ApplyVoteInput carries one vote cast plus the allowance snapshot read from
// the authorization ledger. The repository enforces the per-voter ceiling at
// write time inside the same atomic unit that mutates the vote record and
// both mirrored reputation vectors.
type ApplyVoteInput struct {
	PollID         string
	Voter          string
	Member         string
	ContextType    string
	ProjectScopeID string
	GlobalScopeID  string
	AmountWei      uint64
	Allowance      uint64
	Now            time.Time
}

// PromoteInput moves pending votes into confirmed reputation for one member
// across the given context types, applied identically to every scope id in
// one atomic unit. MoveToConfirmed and ResetPending are independent flags.
type PromoteInput struct {
	ScopeIDs        []string
	Member          string
	ContextTypes    []string
	MoveToConfirmed bool
	ResetPending    bool
	Now             time.Time
}

// Repository is the write/read boundary for all state this system owns.
// Multi-record mutations are atomic: either every table involved is updated
// or none is.
type Repository interface {
	// Poll request lifecycle.
	CreatePollRequest(ctx context.Context, request entities.PollRequest) error
	UpdatePollRequest(ctx context.Context, request entities.PollRequest) error
	GetPollRequest(ctx context.Context, pollID string) (entities.PollRequest, bool, error)

	// Poll activation. StartPoll records the poll, marks it existing and
	// increments the owning project's poll count in one unit.
	StartPoll(ctx context.Context, poll entities.Poll) (entities.Project, error)
	GetPoll(ctx context.Context, pollID string) (entities.Poll, bool, error)
	GetProject(ctx context.Context, projectID string) (entities.Project, bool, error)

	// Registrar allow-list, settable exactly once.
	GetRegistrar(ctx context.Context) (string, bool, error)
	SetRegistrar(ctx context.Context, registrar string) error

	// Vote ledger plus mirrored pending writes.
	ApplyVote(ctx context.Context, input ApplyVoteInput) error
	GetVoteRecord(ctx context.Context, pollID string, voter string, contextType string) (uint64, error)
	VoterSpend(ctx context.Context, pollID string, voter string) (uint64, error)

	// Reputation store.
	GetRepVec(ctx context.Context, scopeID string, member string, contextType string) (entities.RepVec, bool, error)
	PromoteContexts(ctx context.Context, input PromoteInput) error

	// Admin override: overwrite a full vector and persist its audit records
	// in the same transaction.
	OverwriteRepVec(ctx context.Context, vec entities.RepVec, audit []outbox.Message) error
}

// OutboxMessage represents a pending relay message.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// AuditEvent reuses the canonical cross-runtime envelope contract.
type AuditEvent = contractsv1.Envelope

// EventPublisher emits audit events to the event bus adapter.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event AuditEvent) error
}
