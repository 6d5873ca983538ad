package postgresadapter

import (
	"encoding/json"
	"time"

	"repledger/contexts/governance/reputation-system/domain/entities"
)

type pollRequestModel struct {
	PollID       string    `gorm:"column:poll_id;primaryKey"`
	MinStartTime int64     `gorm:"column:min_start_time"`
	MaxStartTime int64     `gorm:"column:max_start_time"`
	PseudoPrice  uint64    `gorm:"column:pseudo_price"`
	PriceGTEOne  bool      `gorm:"column:price_gte_one"`
	TokenAddress string    `gorm:"column:token_address"`
	ContextTypes string    `gorm:"column:context_types"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (pollRequestModel) TableName() string {
	return "poll_requests"
}

func pollRequestModelFromEntity(request entities.PollRequest) pollRequestModel {
	contexts, _ := json.Marshal(request.ContextTypes)
	return pollRequestModel{
		PollID:       request.PollID,
		MinStartTime: request.MinStartTime,
		MaxStartTime: request.MaxStartTime,
		PseudoPrice:  request.PseudoPrice,
		PriceGTEOne:  request.PriceGTEOne,
		TokenAddress: request.TokenAddress,
		ContextTypes: string(contexts),
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
	}
}

func (m pollRequestModel) toEntity() entities.PollRequest {
	var contexts []string
	_ = json.Unmarshal([]byte(m.ContextTypes), &contexts)
	return entities.PollRequest{
		PollID:       m.PollID,
		MinStartTime: m.MinStartTime,
		MaxStartTime: m.MaxStartTime,
		PseudoPrice:  m.PseudoPrice,
		PriceGTEOne:  m.PriceGTEOne,
		TokenAddress: m.TokenAddress,
		ContextTypes: contexts,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type pollModel struct {
	PollID    string    `gorm:"column:poll_id;primaryKey"`
	ProjectID string    `gorm:"column:project_id"`
	StartTime int64     `gorm:"column:start_time"`
	EndTime   int64     `gorm:"column:end_time"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func (m pollModel) toEntity() entities.Poll {
	return entities.Poll{
		PollID:    m.PollID,
		ProjectID: m.ProjectID,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

type projectModel struct {
	ProjectID string `gorm:"column:project_id;primaryKey"`
	PollCount uint64 `gorm:"column:poll_count"`
}

func (projectModel) TableName() string {
	return "projects"
}

type voteRecordModel struct {
	PollID      string `gorm:"column:poll_id;primaryKey"`
	Voter       string `gorm:"column:voter;primaryKey"`
	ContextType string `gorm:"column:context_type;primaryKey"`
	VotesWei    uint64 `gorm:"column:votes_wei"`
}

func (voteRecordModel) TableName() string {
	return "vote_records"
}

type repVecModel struct {
	ScopeID           string    `gorm:"column:scope_id;primaryKey"`
	Member            string    `gorm:"column:member;primaryKey"`
	ContextType       string    `gorm:"column:context_type;primaryKey"`
	ConfirmedVotes    uint64    `gorm:"column:confirmed_votes"`
	TotalPendingVotes uint64    `gorm:"column:total_pending_votes"`
	LastUpdated       time.Time `gorm:"column:last_updated"`
	UpdateSeq         uint64    `gorm:"column:update_seq"`
}

func (repVecModel) TableName() string {
	return "reputation_vectors"
}

type pendingVoteModel struct {
	ScopeID     string `gorm:"column:scope_id;primaryKey"`
	Member      string `gorm:"column:member;primaryKey"`
	ContextType string `gorm:"column:context_type;primaryKey"`
	PollID      string `gorm:"column:poll_id;primaryKey"`
	VotesWei    uint64 `gorm:"column:votes_wei"`
}

func (pendingVoteModel) TableName() string {
	return "reputation_pending_votes"
}

type settingModel struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value string `gorm:"column:value"`
}

func (settingModel) TableName() string {
	return "system_settings"
}

type sequenceModel struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value uint64 `gorm:"column:value"`
}

func (sequenceModel) TableName() string {
	return "system_sequences"
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	RetryCount  int        `gorm:"column:retry_count"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "reputation_outbox"
}
