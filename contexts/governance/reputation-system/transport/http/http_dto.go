package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SetRegistrarRequest struct {
	Registrar string `json:"registrar"`
}

// PollRequestPayload serves both registration and modification.
type PollRequestPayload struct {
	PollID       string   `json:"poll_id"`
	MinStartTime int64    `json:"min_start_time"`
	MaxStartTime int64    `json:"max_start_time"`
	PseudoPrice  uint64   `json:"pseudo_price"`
	PriceGTEOne  bool     `json:"price_gte_one"`
	TokenAddress string   `json:"token_address"`
	ContextTypes []string `json:"context_types"`
}

type StartPollRequest struct {
	DelaySeconds  int64 `json:"delay_seconds"`
	LengthSeconds int64 `json:"length_seconds"`
}

type StartPollResponse struct {
	PollID           string `json:"poll_id"`
	ProjectID        string `json:"project_id"`
	StartTime        int64  `json:"start_time"`
	EndTime          int64  `json:"end_time"`
	Active           bool   `json:"active"`
	ProjectPollCount uint64 `json:"project_poll_count"`
}

type VoteRequest struct {
	ProjectID   string `json:"project_id"`
	Member      string `json:"member"`
	ContextType string `json:"context_type"`
	AmountWei   uint64 `json:"amount_wei"`
}

type AllowanceResponse struct {
	PollID         string `json:"poll_id"`
	Voter          string `json:"voter"`
	ContextType    string `json:"context_type"`
	AvailableVotes uint64 `json:"available_votes"`
}

type VoterResultResponse struct {
	PollID      string `json:"poll_id"`
	Voter       string `json:"voter"`
	ContextType string `json:"context_type"`
	VotesWei    uint64 `json:"votes_wei"`
}

type MemberVotesResponse struct {
	ScopeID        string `json:"scope_id"`
	Member         string `json:"member"`
	ContextType    string `json:"context_type"`
	ConfirmedVotes uint64 `json:"confirmed_votes"`
	PendingVotes   uint64 `json:"pending_votes"`
}

type MemberPollPendingResponse struct {
	PollID       string `json:"poll_id"`
	Member       string `json:"member"`
	ContextType  string `json:"context_type"`
	PendingVotes uint64 `json:"pending_votes"`
}

type BatchUpdateRequest struct {
	ContextTypes    []string `json:"context_types"`
	MoveToConfirmed bool     `json:"move_to_confirmed"`
	ResetPending    bool     `json:"reset_pending"`
}

type SetRepVecRequest struct {
	LastUpdated        int64    `json:"last_updated"`
	UpdatedBlockNumber uint64   `json:"updated_block_number"`
	ConfirmedVotes     uint64   `json:"confirmed_votes"`
	PendingPollIDs     []string `json:"pending_poll_ids"`
	PendingVotes       []uint64 `json:"pending_votes"`
	TotalPendingVotes  uint64   `json:"total_pending_votes"`
}
