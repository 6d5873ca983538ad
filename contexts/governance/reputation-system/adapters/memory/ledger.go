package memory

import (
	"context"
	"sync"
)

type grantKey struct {
	capabilityHash string
	caller         string
}

type allowanceKey struct {
	namespaceHash string
	pollID        string
	voter         string
}

// Ledger is an in-process vote authorization ledger. It backs unit tests and
// dev wiring where the real external ledger is not reachable; tests drive the
// permission matrix and per-voter allowances directly.
type Ledger struct {
	mu         sync.RWMutex
	grants     map[grantKey]bool
	allowances map[allowanceKey]uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		grants:     make(map[grantKey]bool),
		allowances: make(map[allowanceKey]uint64),
	}
}

func (l *Ledger) GrantCapability(_ context.Context, capabilityHash string, caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.grants[grantKey{capabilityHash, caller}] = true
	return nil
}

func (l *Ledger) RevokeCapability(_ context.Context, capabilityHash string, caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.grants, grantKey{capabilityHash, caller})
	return nil
}

func (l *Ledger) HasCapability(_ context.Context, capabilityHash string, caller string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.grants[grantKey{capabilityHash, caller}], nil
}

func (l *Ledger) AvailableVotes(_ context.Context, namespaceHash string, pollID string, voter string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[allowanceKey{namespaceHash, pollID, voter}], nil
}

// WriteAvailableVotes seeds a voter's allowance for one poll, mirroring the
// master-account write on the external ledger.
func (l *Ledger) WriteAvailableVotes(namespaceHash string, pollID string, voter string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{namespaceHash, pollID, voter}] = amount
}
