package application

import (
	"context"
	"fmt"

	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
)

// Gateway is the permission-gated bridge to the external vote authorization
// ledger. It fails closed: a ledger error or a missing grant blocks the
// dependent operation before any state changes. The ledger thereby acts as a
// circuit breaker that can halt poll activation independently of this
// system's own logic.
type Gateway struct {
	Ledger ports.VoteAuthorizationLedger

	// SystemAddress is this system's caller identity on the external ledger.
	SystemAddress string
	// NamespaceHash scopes allowance lookups to this system.
	NamespaceHash string
	// RegisterCapabilityHash gates poll activation.
	RegisterCapabilityHash string
}

// RequireRegisterCapability verifies the external ledger still grants this
// system the "register" capability.
func (g Gateway) RequireRegisterCapability(ctx context.Context) error {
	granted, err := g.Ledger.HasCapability(ctx, g.RegisterCapabilityHash, g.SystemAddress)
	if err != nil {
		return fmt.Errorf("query register capability: %w", err)
	}
	if !granted {
		return domainerrors.ErrCapabilityRevoked
	}
	return nil
}

// AvailableVotes reads the voter's total allowance for one poll. The
// allowance is one ceiling shared across all context types.
func (g Gateway) AvailableVotes(ctx context.Context, pollID string, voter string) (uint64, error) {
	allowance, err := g.Ledger.AvailableVotes(ctx, g.NamespaceHash, pollID, voter)
	if err != nil {
		return 0, fmt.Errorf("query available votes: %w", err)
	}
	return allowance, nil
}
