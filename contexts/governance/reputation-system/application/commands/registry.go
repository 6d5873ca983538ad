package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "repledger/contexts/governance/reputation-system/application"
	"repledger/contexts/governance/reputation-system/domain/entities"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
)

// RegisterPollRequestCommand carries the full poll request template. The same
// shape serves registration and modification.
type RegisterPollRequestCommand struct {
	Caller       string
	PollID       string
	MinStartTime int64
	MaxStartTime int64
	PseudoPrice  uint64
	PriceGTEOne  bool
	TokenAddress string
	ContextTypes []string
}

// StartPollCommand activates a registered poll request under a project.
// Delay shifts the request window; Length extends it past the max start time.
type StartPollCommand struct {
	Caller    string
	ProjectID string
	PollID    string
	Delay     time.Duration
	Length    time.Duration
}

// StartPollResult reports the activated poll and the project's running poll
// count.
type StartPollResult struct {
	Poll    entities.Poll
	Project entities.Project
}

// RegistryUseCase owns the poll request lifecycle and poll activation. Every
// operation is all-or-nothing: a failed precondition leaves no state behind.
type RegistryUseCase struct {
	Repo    ports.Repository
	Gateway application.Gateway
	Clock   ports.Clock
	Root    string
	Logger  *slog.Logger
}

// SetRegistrar installs the single registrar identity. Only root may call it,
// it works exactly once, and root itself can never become the registrar.
func (uc RegistryUseCase) SetRegistrar(ctx context.Context, caller string, registrar string) error {
	logger := application.ResolveLogger(uc.Logger)
	caller = strings.TrimSpace(caller)
	registrar = strings.TrimSpace(registrar)
	if caller == "" || registrar == "" {
		return domainerrors.ErrInvalidRequest
	}
	if caller != uc.Root {
		return domainerrors.ErrNotRoot
	}
	if registrar == uc.Root {
		return domainerrors.ErrRootMayNotRegister
	}
	if err := uc.Repo.SetRegistrar(ctx, registrar); err != nil {
		return err
	}
	logger.Info("registrar installed",
		"event", "reputation_registrar_set",
		"module", "governance/reputation-system",
		"layer", "application",
		"registrar", registrar,
	)
	return nil
}

// RegisterPollRequest stores a new poll request template. Registering an
// already-known poll id always fails.
func (uc RegistryUseCase) RegisterPollRequest(ctx context.Context, cmd RegisterPollRequestCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.requireRegistrar(ctx, cmd.Caller); err != nil {
		return err
	}
	request, err := uc.pollRequestFromCommand(cmd)
	if err != nil {
		return err
	}
	if err := uc.Repo.CreatePollRequest(ctx, request); err != nil {
		return err
	}
	logger.Info("poll request registered",
		"event", "reputation_poll_request_registered",
		"module", "governance/reputation-system",
		"layer", "application",
		"poll_id", request.PollID,
		"min_start_time", request.MinStartTime,
		"max_start_time", request.MaxStartTime,
		"context_types", len(request.ContextTypes),
	)
	return nil
}

// ModifyPollRequest overwrites every field of an existing poll request.
// Callers must not modify a request whose poll already started; the registry
// leaves that to process discipline, matching registration semantics.
func (uc RegistryUseCase) ModifyPollRequest(ctx context.Context, cmd RegisterPollRequestCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.requireRegistrar(ctx, cmd.Caller); err != nil {
		return err
	}
	request, err := uc.pollRequestFromCommand(cmd)
	if err != nil {
		return err
	}
	if err := uc.Repo.UpdatePollRequest(ctx, request); err != nil {
		return err
	}
	logger.Info("poll request modified",
		"event", "reputation_poll_request_modified",
		"module", "governance/reputation-system",
		"layer", "application",
		"poll_id", request.PollID,
	)
	return nil
}

// StartPoll activates a registered request under a project. It requires the
// registrar capability locally and the "register" capability on the external
// authorization ledger; either missing blocks activation with no state
// change.
func (uc RegistryUseCase) StartPoll(ctx context.Context, cmd StartPollCommand) (StartPollResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.requireRegistrar(ctx, cmd.Caller); err != nil {
		return StartPollResult{}, err
	}
	projectID := strings.TrimSpace(cmd.ProjectID)
	pollID := strings.TrimSpace(cmd.PollID)
	if projectID == "" || pollID == "" || cmd.Delay < 0 || cmd.Length < 0 {
		return StartPollResult{}, domainerrors.ErrInvalidRequest
	}

	request, found, err := uc.Repo.GetPollRequest(ctx, pollID)
	if err != nil {
		return StartPollResult{}, err
	}
	if !found {
		return StartPollResult{}, domainerrors.ErrPollNotRegistered
	}

	if err := uc.Gateway.RequireRegisterCapability(ctx); err != nil {
		logger.Warn("poll activation blocked by authorization ledger",
			"event", "reputation_start_poll_blocked",
			"module", "governance/reputation-system",
			"layer", "application",
			"poll_id", pollID,
			"project_id", projectID,
			"error", err.Error(),
		)
		return StartPollResult{}, err
	}

	now := uc.now()
	delay := int64(cmd.Delay / time.Second)
	length := int64(cmd.Length / time.Second)
	poll := entities.Poll{
		PollID:    pollID,
		ProjectID: projectID,
		StartTime: request.MinStartTime + delay,
		EndTime:   request.MaxStartTime + delay + length,
		Active:    true,
		CreatedAt: now,
	}
	if now.Unix() > poll.EndTime {
		return StartPollResult{}, domainerrors.ErrPollWindowClosed
	}

	project, err := uc.Repo.StartPoll(ctx, poll)
	if err != nil {
		return StartPollResult{}, err
	}
	logger.Info("poll started",
		"event", "reputation_poll_started",
		"module", "governance/reputation-system",
		"layer", "application",
		"poll_id", pollID,
		"project_id", projectID,
		"start_time", poll.StartTime,
		"end_time", poll.EndTime,
		"project_poll_count", project.PollCount,
	)
	return StartPollResult{Poll: poll, Project: project}, nil
}

func (uc RegistryUseCase) pollRequestFromCommand(cmd RegisterPollRequestCommand) (entities.PollRequest, error) {
	pollID := strings.TrimSpace(cmd.PollID)
	token := strings.TrimSpace(cmd.TokenAddress)
	if pollID == "" || token == "" || len(cmd.ContextTypes) == 0 {
		return entities.PollRequest{}, domainerrors.ErrInvalidRequest
	}
	if cmd.MinStartTime > cmd.MaxStartTime {
		return entities.PollRequest{}, domainerrors.ErrInvalidRequest
	}
	contexts := make([]string, 0, len(cmd.ContextTypes))
	for _, contextType := range cmd.ContextTypes {
		contextType = strings.TrimSpace(contextType)
		if contextType == "" {
			return entities.PollRequest{}, domainerrors.ErrInvalidRequest
		}
		contexts = append(contexts, contextType)
	}
	now := uc.now()
	return entities.PollRequest{
		PollID:       pollID,
		MinStartTime: cmd.MinStartTime,
		MaxStartTime: cmd.MaxStartTime,
		PseudoPrice:  cmd.PseudoPrice,
		PriceGTEOne:  cmd.PriceGTEOne,
		TokenAddress: token,
		ContextTypes: contexts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// requireRegistrar rejects root explicitly before the allow-list comparison
// so misuse of the root identity is reported as such.
func (uc RegistryUseCase) requireRegistrar(ctx context.Context, caller string) error {
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

func (uc RegistryUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
