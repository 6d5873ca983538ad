package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"repledger/contexts/governance/reputation-system/domain/entities"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
	"repledger/internal/shared/outbox"

	"github.com/google/uuid"
)

type voteKey struct {
	pollID      string
	voter       string
	contextType string
}

type vecKey struct {
	scopeID     string
	member      string
	contextType string
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory repository used by unit tests and dev wiring. Every
// public method takes the store lock for its whole body, which gives each
// operation the run-to-completion atomicity the postgres adapter gets from
// transactions.
type Store struct {
	mu sync.RWMutex

	pollRequests map[string]entities.PollRequest
	polls        map[string]entities.Poll
	projects     map[string]entities.Project
	voteRecords  map[voteKey]uint64
	repVecs      map[vecKey]entities.RepVec
	outbox       map[string]outboxRecord

	registrar    string
	registrarSet bool
	updateSeq    uint64
}

func NewStore() *Store {
	return &Store{
		pollRequests: make(map[string]entities.PollRequest),
		polls:        make(map[string]entities.Poll),
		projects:     make(map[string]entities.Project),
		voteRecords:  make(map[voteKey]uint64),
		repVecs:      make(map[vecKey]entities.RepVec),
		outbox:       make(map[string]outboxRecord),
	}
}

func (s *Store) CreatePollRequest(_ context.Context, request entities.PollRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pollRequests[request.PollID]; exists {
		return domainerrors.ErrPollAlreadyRegistered
	}
	s.pollRequests[request.PollID] = clonePollRequest(request)
	return nil
}

func (s *Store) UpdatePollRequest(_ context.Context, request entities.PollRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.pollRequests[request.PollID]
	if !exists {
		return domainerrors.ErrPollNotRegistered
	}
	request.CreatedAt = existing.CreatedAt
	s.pollRequests[request.PollID] = clonePollRequest(request)
	return nil
}

func (s *Store) GetPollRequest(_ context.Context, pollID string) (entities.PollRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, exists := s.pollRequests[pollID]
	if !exists {
		return entities.PollRequest{}, false, nil
	}
	return clonePollRequest(request), true, nil
}

func (s *Store) StartPoll(_ context.Context, poll entities.Poll) (entities.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.polls[poll.PollID]; exists {
		return entities.Project{}, domainerrors.ErrPollAlreadyStarted
	}
	s.polls[poll.PollID] = poll
	project, exists := s.projects[poll.ProjectID]
	if !exists {
		project = entities.Project{ProjectID: poll.ProjectID}
	}
	project.PollCount++
	s.projects[poll.ProjectID] = project
	return project, nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, exists := s.polls[pollID]
	return poll, exists, nil
}

func (s *Store) GetProject(_ context.Context, projectID string) (entities.Project, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, exists := s.projects[projectID]
	return project, exists, nil
}

func (s *Store) GetRegistrar(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registrar, s.registrarSet, nil
}

func (s *Store) SetRegistrar(_ context.Context, registrar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registrarSet {
		return domainerrors.ErrRegistrarAlreadySet
	}
	s.registrar = registrar
	s.registrarSet = true
	return nil
}

func (s *Store) ApplyVote(_ context.Context, input ports.ApplyVoteInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spend := s.voterSpendLocked(input.PollID, input.Voter)
	if input.AmountWei > input.Allowance || spend > input.Allowance-input.AmountWei {
		return domainerrors.NewInvariant("vote",
			"cumulative spend %d plus %d wei exceeds allowance %d for voter %s in poll %s",
			spend, input.AmountWei, input.Allowance, input.Voter, input.PollID)
	}

	s.voteRecords[voteKey{input.PollID, input.Voter, input.ContextType}] += input.AmountWei
	for _, scopeID := range []string{input.ProjectScopeID, input.GlobalScopeID} {
		s.addPendingLocked(scopeID, input.Member, input.ContextType, input.PollID, input.AmountWei, input.Now)
	}
	return nil
}

func (s *Store) GetVoteRecord(_ context.Context, pollID string, voter string, contextType string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteRecords[voteKey{pollID, voter, contextType}], nil
}

func (s *Store) VoterSpend(_ context.Context, pollID string, voter string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voterSpendLocked(pollID, voter), nil
}

func (s *Store) GetRepVec(_ context.Context, scopeID string, member string, contextType string) (entities.RepVec, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, exists := s.repVecs[vecKey{scopeID, member, contextType}]
	if !exists {
		return entities.RepVec{}, false, nil
	}
	vec.PendingVotes = vec.ClonePendingVotes()
	return vec, true, nil
}

func (s *Store) PromoteContexts(_ context.Context, input ports.PromoteInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, scopeID := range input.ScopeIDs {
		for _, contextType := range input.ContextTypes {
			vec := s.vecLocked(scopeID, input.Member, contextType)
			if input.MoveToConfirmed {
				vec.ConfirmedVotes += vec.TotalPendingVotes
			}
			if input.ResetPending {
				vec.PendingVotes = map[string]uint64{}
				vec.TotalPendingVotes = 0
			}
			vec.LastUpdated = input.Now
			s.updateSeq++
			vec.UpdateSeq = s.updateSeq
			s.repVecs[vecKey{scopeID, input.Member, contextType}] = vec
		}
	}
	return nil
}

func (s *Store) OverwriteRepVec(_ context.Context, vec entities.RepVec, audit []outbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vec.PendingVotes = vec.ClonePendingVotes()
	s.repVecs[vecKey{vec.ScopeID, vec.Member, vec.ContextType}] = vec
	now := time.Now().UTC()
	for _, message := range audit {
		s.outbox[message.ID] = outboxRecord{
			message: ports.OutboxMessage{
				OutboxID:  message.ID,
				EventType: message.EventType,
				Payload:   append([]byte(nil), message.Payload...),
				CreatedAt: now,
			},
		}
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, record := range s.outbox {
		if !record.published {
			pending = append(pending, record.message)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].OutboxID < pending[j].OutboxID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.outbox[outboxID]
	if !exists {
		return domainerrors.ErrInvalidRequest
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) voterSpendLocked(pollID string, voter string) uint64 {
	var spend uint64
	for key, amount := range s.voteRecords {
		if key.pollID == pollID && key.voter == voter {
			spend += amount
		}
	}
	return spend
}

func (s *Store) addPendingLocked(scopeID, member, contextType, pollID string, amountWei uint64, now time.Time) {
	vec := s.vecLocked(scopeID, member, contextType)
	vec.PendingVotes[pollID] += amountWei
	vec.TotalPendingVotes += amountWei
	vec.LastUpdated = now
	s.updateSeq++
	vec.UpdateSeq = s.updateSeq
	s.repVecs[vecKey{scopeID, member, contextType}] = vec
}

func (s *Store) vecLocked(scopeID, member, contextType string) entities.RepVec {
	key := vecKey{scopeID, member, contextType}
	vec, exists := s.repVecs[key]
	if !exists {
		vec = entities.RepVec{
			ScopeID:     scopeID,
			Member:      member,
			ContextType: contextType,
		}
	}
	vec.PendingVotes = vec.ClonePendingVotes()
	return vec
}

func clonePollRequest(request entities.PollRequest) entities.PollRequest {
	request.ContextTypes = append([]string(nil), request.ContextTypes...)
	return request
}
