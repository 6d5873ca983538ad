package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"repledger/contexts/governance/reputation-system/application/commands"
	"repledger/contexts/governance/reputation-system/application/workers"
	"repledger/contexts/governance/reputation-system/domain/entities"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
	httptransport "repledger/contexts/governance/reputation-system/transport/http"
)

type capturedEvent struct {
	Topic string
	Event ports.AuditEvent
}

type capturePublisher struct {
	events []capturedEvent
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.AuditEvent) error {
	p.events = append(p.events, capturedEvent{Topic: topic, Event: event})
	return nil
}

func TestSetRepVecOverrideRoundTrip(t *testing.T) {
	module := newReputationModule(t)
	lastUpdated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := module.Handler.SetRepVecHandler(context.Background(), testRoot, "scope-1", testMember, "design", httptransport.SetRepVecRequest{
		LastUpdated:        lastUpdated.Unix(),
		UpdatedBlockNumber: 42,
		ConfirmedVotes:     900,
		PendingPollIDs:     []string{"poll-1", "poll-2"},
		PendingVotes:       []uint64{30, 70},
		TotalPendingVotes:  100,
	})
	if err != nil {
		t.Fatalf("set repvec failed: %v", err)
	}

	vec, found, err := module.Store.GetRepVec(context.Background(), "scope-1", testMember, "design")
	if err != nil || !found {
		t.Fatalf("read back override failed: found=%v err=%v", found, err)
	}
	if vec.ConfirmedVotes != 900 || vec.TotalPendingVotes != 100 || vec.UpdateSeq != 42 {
		t.Fatalf("override fields not applied: %+v", vec)
	}
	if vec.PendingVotes["poll-1"] != 30 || vec.PendingVotes["poll-2"] != 70 {
		t.Fatalf("pending map not applied: %v", vec.PendingVotes)
	}
	if !vec.LastUpdated.Equal(lastUpdated) {
		t.Fatalf("expected last updated %v, got %v", lastUpdated, vec.LastUpdated)
	}
}

func TestSetRepVecAuditTrail(t *testing.T) {
	module := newReputationModule(t)

	err := module.Handler.SetRepVecHandler(context.Background(), testRoot, "scope-1", testMember, "design", httptransport.SetRepVecRequest{
		LastUpdated:        time.Now().UTC().Unix(),
		UpdatedBlockNumber: 7,
		ConfirmedVotes:     500,
		PendingPollIDs:     []string{"poll-1"},
		PendingVotes:       []uint64{25},
		TotalPendingVotes:  25,
	})
	if err != nil {
		t.Fatalf("set repvec failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(pending))
	}

	byType := map[string]ports.OutboxMessage{}
	for _, row := range pending {
		byType[row.EventType] = row
	}

	scalarRow, ok := byType[commands.EventTypeSetRepVec]
	if !ok {
		t.Fatalf("missing %s audit row", commands.EventTypeSetRepVec)
	}
	var envelope ports.AuditEvent
	if err := json.Unmarshal(scalarRow.Payload, &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v", err)
	}
	if envelope.SourceService != "repledger-test" || envelope.SchemaVersion != 1 {
		t.Fatalf("unexpected envelope header: %+v", envelope)
	}
	var scalar struct {
		Requester      string `json:"requester"`
		MemberAddress  string `json:"member_address"`
		Votes          uint64 `json:"votes"`
		TotalPending   uint64 `json:"total_pending_votes"`
		UpdatedBlockNo uint64 `json:"updated_block_number"`
	}
	if err := json.Unmarshal(envelope.Data, &scalar); err != nil {
		t.Fatalf("decode audit payload failed: %v", err)
	}
	if scalar.Requester != entities.NormalizeID(testRoot) {
		t.Fatalf("requester not normalized: %s", scalar.Requester)
	}
	if scalar.MemberAddress != entities.NormalizeID(testMember) {
		t.Fatalf("member not normalized: %s", scalar.MemberAddress)
	}
	if scalar.Votes != 500 || scalar.TotalPending != 25 || scalar.UpdatedBlockNo != 7 {
		t.Fatalf("audit scalar values wrong: %+v", scalar)
	}

	arrayRow, ok := byType[commands.EventTypeSetPendingVotes]
	if !ok {
		t.Fatalf("missing %s audit row", commands.EventTypeSetPendingVotes)
	}
	if err := json.Unmarshal(arrayRow.Payload, &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v", err)
	}
	var arrays struct {
		PollIDs []string `json:"poll_ids_for_pending_votes"`
		Votes   []uint64 `json:"votes_for_pending_votes"`
	}
	if err := json.Unmarshal(envelope.Data, &arrays); err != nil {
		t.Fatalf("decode audit arrays failed: %v", err)
	}
	if len(arrays.PollIDs) != 1 || arrays.PollIDs[0] != "poll-1" || arrays.Votes[0] != 25 {
		t.Fatalf("audit arrays wrong: %+v", arrays)
	}
}

func TestSetRepVecGuards(t *testing.T) {
	module := newReputationModule(t)

	err := module.Handler.SetRepVecHandler(context.Background(), testRegistrar, "scope-1", testMember, "design", httptransport.SetRepVecRequest{})
	if !errors.Is(err, domainerrors.ErrNotRoot) {
		t.Fatalf("expected ErrNotRoot, got %v", err)
	}

	err = module.Handler.SetRepVecHandler(context.Background(), testRoot, "scope-1", testMember, "design", httptransport.SetRepVecRequest{
		PendingPollIDs: []string{"poll-1", "poll-2"},
		PendingVotes:   []uint64{10},
	})
	if !errors.Is(err, domainerrors.ErrPendingArrayMismatch) {
		t.Fatalf("expected ErrPendingArrayMismatch, got %v", err)
	}
	if _, found, _ := module.Store.GetRepVec(context.Background(), "scope-1", testMember, "design"); found {
		t.Fatalf("rejected override must leave no vector behind")
	}
}

func TestOutboxRelayPublishesAuditEvents(t *testing.T) {
	module := newReputationModule(t)

	err := module.Handler.SetRepVecHandler(context.Background(), testRoot, "scope-1", testMember, "design", httptransport.SetRepVecRequest{
		LastUpdated:       time.Now().UTC().Unix(),
		ConfirmedVotes:    1,
		TotalPendingVotes: 0,
	})
	if err != nil {
		t.Fatalf("set repvec failed: %v", err)
	}

	publisher := &capturePublisher{}
	relay := workers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}
	for _, item := range publisher.events {
		if item.Topic != item.Event.EventType {
			t.Fatalf("topic must follow event type, got %s for %s", item.Topic, item.Event.EventType)
		}
	}

	remaining, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("published rows must leave the pending set, %d left", len(remaining))
	}
}
