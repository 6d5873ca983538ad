package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	reputationsystem "repledger/contexts/governance/reputation-system"
	"repledger/contexts/governance/reputation-system/domain/entities"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	httptransport "repledger/contexts/governance/reputation-system/transport/http"
)

const (
	testRoot      = "0x00000000000000000000000000000000000000aa"
	testRegistrar = "0x00000000000000000000000000000000000000bb"
	testSystem    = "0x00000000000000000000000000000000000000cc"
)

func newReputationModule(t *testing.T) reputationsystem.Module {
	t.Helper()
	module, err := reputationsystem.NewInMemoryModule(reputationsystem.SystemConfig{
		SystemName:        "reputation-system",
		SystemAddress:     testSystem,
		Root:              testRoot,
		SourceService:     "repledger-test",
		PrevVotesDiscount: 100,
		NewVotesDiscount:  100,
	}, nil)
	if err != nil {
		t.Fatalf("build module failed: %v", err)
	}
	return module
}

func installRegistrar(t *testing.T, module reputationsystem.Module) {
	t.Helper()
	err := module.Handler.SetRegistrarHandler(context.Background(), testRoot, httptransport.SetRegistrarRequest{
		Registrar: testRegistrar,
	})
	if err != nil {
		t.Fatalf("set registrar failed: %v", err)
	}
}

func grantRegisterCapability(t *testing.T, module reputationsystem.Module) {
	t.Helper()
	err := module.Ledger.GrantCapability(context.Background(), entities.HashID(entities.CapabilityRegister), testSystem)
	if err != nil {
		t.Fatalf("grant capability failed: %v", err)
	}
}

func pollRequestPayload(pollID string, contextTypes ...string) httptransport.PollRequestPayload {
	now := time.Now().UTC().Unix()
	return httptransport.PollRequestPayload{
		PollID:       pollID,
		MinStartTime: now - 60,
		MaxStartTime: now + 3600,
		PseudoPrice:  1,
		PriceGTEOne:  true,
		TokenAddress: "0x00000000000000000000000000000000000000dd",
		ContextTypes: contextTypes,
	}
}

func TestSetRegistrarOnceAndRootExcluded(t *testing.T) {
	module := newReputationModule(t)

	err := module.Handler.SetRegistrarHandler(context.Background(), testRegistrar, httptransport.SetRegistrarRequest{
		Registrar: testRegistrar,
	})
	if !errors.Is(err, domainerrors.ErrNotRoot) {
		t.Fatalf("expected ErrNotRoot, got %v", err)
	}

	err = module.Handler.SetRegistrarHandler(context.Background(), testRoot, httptransport.SetRegistrarRequest{
		Registrar: testRoot,
	})
	if !errors.Is(err, domainerrors.ErrRootMayNotRegister) {
		t.Fatalf("expected ErrRootMayNotRegister, got %v", err)
	}

	installRegistrar(t, module)

	err = module.Handler.SetRegistrarHandler(context.Background(), testRoot, httptransport.SetRegistrarRequest{
		Registrar: "0x00000000000000000000000000000000000000ee",
	})
	if !errors.Is(err, domainerrors.ErrRegistrarAlreadySet) {
		t.Fatalf("expected ErrRegistrarAlreadySet, got %v", err)
	}
}

func TestPollRequestRegistrationRules(t *testing.T) {
	module := newReputationModule(t)

	err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload("poll-1", "design"))
	if !errors.Is(err, domainerrors.ErrRegistrarNotSet) {
		t.Fatalf("expected ErrRegistrarNotSet before installation, got %v", err)
	}

	installRegistrar(t, module)

	err = module.Handler.RegisterPollRequestHandler(context.Background(), testRoot, pollRequestPayload("poll-1", "design"))
	if !errors.Is(err, domainerrors.ErrRootMayNotRegister) {
		t.Fatalf("expected ErrRootMayNotRegister for root caller, got %v", err)
	}

	if err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload("poll-1", "design")); err != nil {
		t.Fatalf("register poll request failed: %v", err)
	}
	err = module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload("poll-1", "design"))
	if !errors.Is(err, domainerrors.ErrPollAlreadyRegistered) {
		t.Fatalf("expected ErrPollAlreadyRegistered, got %v", err)
	}

	err = module.Handler.RegisterPollRequestHandler(context.Background(), "0x9999", pollRequestPayload("poll-2", "design"))
	if !errors.Is(err, domainerrors.ErrNotRegistrar) {
		t.Fatalf("expected ErrNotRegistrar, got %v", err)
	}
}

func TestModifyPollRequest(t *testing.T) {
	module := newReputationModule(t)
	installRegistrar(t, module)

	err := module.Handler.ModifyPollRequestHandler(context.Background(), testRegistrar, "poll-1", pollRequestPayload("poll-1", "design"))
	if !errors.Is(err, domainerrors.ErrPollNotRegistered) {
		t.Fatalf("expected ErrPollNotRegistered, got %v", err)
	}

	if err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload("poll-1", "design")); err != nil {
		t.Fatalf("register poll request failed: %v", err)
	}

	updated := pollRequestPayload("poll-1", "design", "development")
	updated.PseudoPrice = 5
	if err := module.Handler.ModifyPollRequestHandler(context.Background(), testRegistrar, "poll-1", updated); err != nil {
		t.Fatalf("modify poll request failed: %v", err)
	}

	request, found, err := module.Store.GetPollRequest(context.Background(), "poll-1")
	if err != nil || !found {
		t.Fatalf("read back poll request failed: found=%v err=%v", found, err)
	}
	if request.PseudoPrice != 5 || len(request.ContextTypes) != 2 {
		t.Fatalf("modification not applied: %+v", request)
	}
}

func TestStartPollGatedByAuthorizationLedger(t *testing.T) {
	module := newReputationModule(t)
	installRegistrar(t, module)

	if err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload("poll-1", "design")); err != nil {
		t.Fatalf("register poll request failed: %v", err)
	}

	_, err := module.Handler.StartPollHandler(context.Background(), testRegistrar, "project-1", "poll-1", httptransport.StartPollRequest{
		LengthSeconds: 3600,
	})
	if !errors.Is(err, domainerrors.ErrCapabilityRevoked) {
		t.Fatalf("expected ErrCapabilityRevoked before grant, got %v", err)
	}

	grantRegisterCapability(t, module)

	resp, err := module.Handler.StartPollHandler(context.Background(), testRegistrar, "project-1", "poll-1", httptransport.StartPollRequest{
		LengthSeconds: 3600,
	})
	if err != nil {
		t.Fatalf("start poll failed: %v", err)
	}
	if !resp.Active || resp.ProjectPollCount != 1 {
		t.Fatalf("unexpected start poll response: %+v", resp)
	}
	if resp.EndTime <= resp.StartTime {
		t.Fatalf("poll window is inverted: start=%d end=%d", resp.StartTime, resp.EndTime)
	}

	_, err = module.Handler.StartPollHandler(context.Background(), testRegistrar, "project-1", "poll-1", httptransport.StartPollRequest{
		LengthSeconds: 3600,
	})
	if !errors.Is(err, domainerrors.ErrPollAlreadyStarted) {
		t.Fatalf("expected ErrPollAlreadyStarted, got %v", err)
	}

	if err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, pollRequestPayload("poll-2", "design")); err != nil {
		t.Fatalf("register second poll request failed: %v", err)
	}
	if err := module.Ledger.RevokeCapability(context.Background(), entities.HashID(entities.CapabilityRegister), testSystem); err != nil {
		t.Fatalf("revoke capability failed: %v", err)
	}
	_, err = module.Handler.StartPollHandler(context.Background(), testRegistrar, "project-1", "poll-2", httptransport.StartPollRequest{
		LengthSeconds: 3600,
	})
	if !errors.Is(err, domainerrors.ErrCapabilityRevoked) {
		t.Fatalf("expected ErrCapabilityRevoked after revocation, got %v", err)
	}
	if _, found, _ := module.Store.GetPoll(context.Background(), "poll-2"); found {
		t.Fatalf("blocked activation must leave no poll behind")
	}
}

func TestStartPollRejectsClosedWindow(t *testing.T) {
	module := newReputationModule(t)
	installRegistrar(t, module)
	grantRegisterCapability(t, module)

	expired := pollRequestPayload("poll-late", "design")
	expired.MinStartTime = time.Now().UTC().Add(-2 * time.Hour).Unix()
	expired.MaxStartTime = time.Now().UTC().Add(-1 * time.Hour).Unix()
	if err := module.Handler.RegisterPollRequestHandler(context.Background(), testRegistrar, expired); err != nil {
		t.Fatalf("register expired poll request failed: %v", err)
	}

	_, err := module.Handler.StartPollHandler(context.Background(), testRegistrar, "project-1", "poll-late", httptransport.StartPollRequest{})
	if !errors.Is(err, domainerrors.ErrPollWindowClosed) {
		t.Fatalf("expected ErrPollWindowClosed, got %v", err)
	}
}

func TestStartPollUnknownRequest(t *testing.T) {
	module := newReputationModule(t)
	installRegistrar(t, module)
	grantRegisterCapability(t, module)

	_, err := module.Handler.StartPollHandler(context.Background(), testRegistrar, "project-1", "poll-ghost", httptransport.StartPollRequest{})
	if !errors.Is(err, domainerrors.ErrPollNotRegistered) {
		t.Fatalf("expected ErrPollNotRegistered, got %v", err)
	}
}
