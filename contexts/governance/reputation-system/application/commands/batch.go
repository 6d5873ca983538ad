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

// BatchUpdateCommand promotes or discards a member's pending votes for one or
// more context types. MoveToConfirmed and ResetPending are independent, so
// "confirm without discarding" and "discard without confirming" are both
// valid requests.
type BatchUpdateCommand struct {
	Caller          string
	ProjectID       string
	Member          string
	ContextTypes    []string
	MoveToConfirmed bool
	ResetPending    bool
}

// BatchUseCase is the only path by which pending votes become permanent
// reputation. Promotion is deliberately decoupled from voting so it can be
// batched or delayed by policy without blocking the vote ledger.
type BatchUseCase struct {
	Repo          ports.Repository
	Clock         ports.Clock
	Root          string
	GlobalScopeID string
	Logger        *slog.Logger
}

// BatchUpdateRepVecContext applies the promotion to the project scope and the
// global scope in one atomic unit, preserving the mirrored-write invariant.
func (uc BatchUseCase) BatchUpdateRepVecContext(ctx context.Context, cmd BatchUpdateCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.requireRegistrar(ctx, cmd.Caller); err != nil {
		return err
	}
	projectID := strings.TrimSpace(cmd.ProjectID)
	member := strings.TrimSpace(cmd.Member)
	if projectID == "" || member == "" || len(cmd.ContextTypes) == 0 {
		return domainerrors.ErrInvalidRequest
	}
	contexts := make([]string, 0, len(cmd.ContextTypes))
	for _, contextType := range cmd.ContextTypes {
		contextType = strings.TrimSpace(contextType)
		if contextType == "" {
			return domainerrors.ErrInvalidRequest
		}
		contexts = append(contexts, contextType)
	}

	err := uc.Repo.PromoteContexts(ctx, ports.PromoteInput{
		ScopeIDs:        []string{projectID, uc.GlobalScopeID},
		Member:          member,
		ContextTypes:    contexts,
		MoveToConfirmed: cmd.MoveToConfirmed,
		ResetPending:    cmd.ResetPending,
		Now:             uc.now(),
	})
	if err != nil {
		return err
	}

	logger.Info("pending votes promoted",
		"event", "reputation_batch_promoted",
		"module", "governance/reputation-system",
		"layer", "application",
		"project_id", projectID,
		"member", member,
		"context_types", len(contexts),
		"move_to_confirmed", cmd.MoveToConfirmed,
		"reset_pending", cmd.ResetPending,
	)
	return nil
}

func (uc BatchUseCase) requireRegistrar(ctx context.Context, caller string) error {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domainerrors.ErrInvalidRequest
	}
	if caller == uc.Root {
		return domainerrors.ErrRootMayNotRegister
	}
	registrar, found, err := uc.Repo.GetRegistrar(ctx)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrRegistrarNotSet
	}
	if caller != registrar {
		return domainerrors.ErrNotRegistrar
	}
	return nil
}

func (uc BatchUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
