package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"repledger/contexts/governance/reputation-system/application/commands"
	"repledger/contexts/governance/reputation-system/application/queries"
	httptransport "repledger/contexts/governance/reputation-system/transport/http"
)

type Handler struct {
	Registry commands.RegistryUseCase
	Votes    commands.VoteUseCase
	Batches  commands.BatchUseCase
	Admin    commands.AdminUseCase
	Queries  queries.ReputationQueries
	Logger   *slog.Logger
}

func (h Handler) SetRegistrarHandler(ctx context.Context, caller string, req httptransport.SetRegistrarRequest) error {
	return h.Registry.SetRegistrar(ctx, caller, req.Registrar)
}

func (h Handler) RegisterPollRequestHandler(ctx context.Context, caller string, req httptransport.PollRequestPayload) error {
	return h.Registry.RegisterPollRequest(ctx, pollRequestCommand(caller, req.PollID, req))
}

func (h Handler) ModifyPollRequestHandler(
	ctx context.Context,
	caller string,
	pollID string,
	req httptransport.PollRequestPayload,
) error {
	return h.Registry.ModifyPollRequest(ctx, pollRequestCommand(caller, pollID, req))
}

func (h Handler) StartPollHandler(
	ctx context.Context,
	caller string,
	projectID string,
	pollID string,
	req httptransport.StartPollRequest,
) (httptransport.StartPollResponse, error) {
	result, err := h.Registry.StartPoll(ctx, commands.StartPollCommand{
		Caller:    caller,
		ProjectID: projectID,
		PollID:    pollID,
		Delay:     time.Duration(req.DelaySeconds) * time.Second,
		Length:    time.Duration(req.LengthSeconds) * time.Second,
	})
	if err != nil {
		return httptransport.StartPollResponse{}, err
	}
	return httptransport.StartPollResponse{
		PollID:           result.Poll.PollID,
		ProjectID:        result.Poll.ProjectID,
		StartTime:        result.Poll.StartTime,
		EndTime:          result.Poll.EndTime,
		Active:           result.Poll.Active,
		ProjectPollCount: result.Project.PollCount,
	}, nil
}

func (h Handler) VoteHandler(ctx context.Context, voter string, pollID string, req httptransport.VoteRequest) error {
	return h.Votes.Vote(ctx, commands.VoteCommand{
		Voter:       voter,
		ProjectID:   req.ProjectID,
		Member:      req.Member,
		ContextType: req.ContextType,
		PollID:      pollID,
		AmountWei:   req.AmountWei,
	})
}

func (h Handler) AvailableVotesHandler(
	ctx context.Context,
	pollID string,
	voter string,
	contextType string,
) (httptransport.AllowanceResponse, error) {
	allowance, err := h.Queries.ReadAvailableVotesForContextType(ctx, pollID, voter, contextType)
	if err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		PollID:         pollID,
		Voter:          voter,
		ContextType:    contextType,
		AvailableVotes: allowance,
	}, nil
}

func (h Handler) VoterResultHandler(
	ctx context.Context,
	pollID string,
	voter string,
	contextType string,
) (httptransport.VoterResultResponse, error) {
	votes, err := h.Queries.GetVotingResultForContextTypeByVoter(ctx, pollID, voter, contextType)
	if err != nil {
		return httptransport.VoterResultResponse{}, err
	}
	return httptransport.VoterResultResponse{
		PollID:      pollID,
		Voter:       voter,
		ContextType: contextType,
		VotesWei:    votes,
	}, nil
}

func (h Handler) MemberVotesHandler(
	ctx context.Context,
	scopeID string,
	member string,
	contextType string,
) (httptransport.MemberVotesResponse, error) {
	votes, err := h.Queries.GetVotesForMember(ctx, scopeID, member, contextType)
	if err != nil {
		return httptransport.MemberVotesResponse{}, err
	}
	return httptransport.MemberVotesResponse{
		ScopeID:        scopeID,
		Member:         member,
		ContextType:    contextType,
		ConfirmedVotes: votes.ConfirmedVotes,
		PendingVotes:   votes.PendingVotes,
	}, nil
}

func (h Handler) MemberPollPendingHandler(
	ctx context.Context,
	pollID string,
	member string,
	contextType string,
) (httptransport.MemberPollPendingResponse, error) {
	pending, err := h.Queries.GetVotingResultForMember(ctx, pollID, member, contextType)
	if err != nil {
		return httptransport.MemberPollPendingResponse{}, err
	}
	return httptransport.MemberPollPendingResponse{
		PollID:       pollID,
		Member:       member,
		ContextType:  contextType,
		PendingVotes: pending,
	}, nil
}

func (h Handler) BatchUpdateHandler(
	ctx context.Context,
	caller string,
	projectID string,
	member string,
	req httptransport.BatchUpdateRequest,
) error {
	return h.Batches.BatchUpdateRepVecContext(ctx, commands.BatchUpdateCommand{
		Caller:          caller,
		ProjectID:       projectID,
		Member:          member,
		ContextTypes:    req.ContextTypes,
		MoveToConfirmed: req.MoveToConfirmed,
		ResetPending:    req.ResetPending,
	})
}

func (h Handler) SetRepVecHandler(
	ctx context.Context,
	caller string,
	scopeID string,
	member string,
	contextType string,
	req httptransport.SetRepVecRequest,
) error {
	return h.Admin.SetRepVec(ctx, commands.SetRepVecCommand{
		Caller:             caller,
		ScopeID:            scopeID,
		Member:             member,
		ContextType:        contextType,
		LastUpdated:        time.Unix(req.LastUpdated, 0).UTC(),
		UpdatedBlockNumber: req.UpdatedBlockNumber,
		ConfirmedVotes:     req.ConfirmedVotes,
		PendingPollIDs:     req.PendingPollIDs,
		PendingVotes:       req.PendingVotes,
		TotalPendingVotes:  req.TotalPendingVotes,
	})
}

func pollRequestCommand(caller string, pollID string, req httptransport.PollRequestPayload) commands.RegisterPollRequestCommand {
	return commands.RegisterPollRequestCommand{
		Caller:       caller,
		PollID:       pollID,
		MinStartTime: req.MinStartTime,
		MaxStartTime: req.MaxStartTime,
		PseudoPrice:  req.PseudoPrice,
		PriceGTEOne:  req.PriceGTEOne,
		TokenAddress: req.TokenAddress,
		ContextTypes: req.ContextTypes,
	}
}
