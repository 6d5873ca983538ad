package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	reputationsystem "repledger/contexts/governance/reputation-system"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	httptransport "repledger/contexts/governance/reputation-system/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "repledger/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	reputation reputationsystem.Module
}

func New(reputation reputationsystem.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		reputation: reputation,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/admin/registrar", s.handleSetRegistrar)
	s.mux.HandleFunc("POST /v1/polls/requests", s.handleRegisterPollRequest)
	s.mux.HandleFunc("PUT /v1/polls/requests/{poll_id}", s.handleModifyPollRequest)
	s.mux.HandleFunc("POST /v1/projects/{project_id}/polls/{poll_id}/start", s.handleStartPoll)
	s.mux.HandleFunc("POST /v1/polls/{poll_id}/votes", s.handleVote)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/voters/{voter}/contexts/{context}/available", s.handleAvailableVotes)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/voters/{voter}/contexts/{context}/result", s.handleVoterResult)
	s.mux.HandleFunc("GET /v1/scopes/{scope_id}/members/{member}/contexts/{context}/votes", s.handleMemberVotes)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/members/{member}/contexts/{context}/pending", s.handleMemberPollPending)
	s.mux.HandleFunc("POST /v1/projects/{project_id}/members/{member}/reputation/batch", s.handleBatchUpdate)
	s.mux.HandleFunc("PUT /v1/admin/scopes/{scope_id}/members/{member}/contexts/{context}", s.handleSetRepVec)
}

func (s *Server) handleSetRegistrar(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.SetRegistrarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.reputation.Handler.SetRegistrarHandler(r.Context(), caller, req); err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRegisterPollRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.PollRequestPayload
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.reputation.Handler.RegisterPollRequestHandler(r.Context(), caller, req); err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleModifyPollRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.PollRequestPayload
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.reputation.Handler.ModifyPollRequestHandler(r.Context(), caller, r.PathValue("poll_id"), req)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleStartPoll(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.StartPollRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.reputation.Handler.StartPollHandler(
		r.Context(),
		caller,
		r.PathValue("project_id"),
		r.PathValue("poll_id"),
		req,
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.reputation.Handler.VoteHandler(r.Context(), caller, r.PathValue("poll_id"), req); err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAvailableVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reputation.Handler.AvailableVotesHandler(
		r.Context(),
		r.PathValue("poll_id"),
		r.PathValue("voter"),
		r.PathValue("context"),
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterResult(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reputation.Handler.VoterResultHandler(
		r.Context(),
		r.PathValue("poll_id"),
		r.PathValue("voter"),
		r.PathValue("context"),
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reputation.Handler.MemberVotesHandler(
		r.Context(),
		r.PathValue("scope_id"),
		r.PathValue("member"),
		r.PathValue("context"),
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberPollPending(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reputation.Handler.MemberPollPendingHandler(
		r.Context(),
		r.PathValue("poll_id"),
		r.PathValue("member"),
		r.PathValue("context"),
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.BatchUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.reputation.Handler.BatchUpdateHandler(
		r.Context(),
		caller,
		r.PathValue("project_id"),
		r.PathValue("member"),
		req,
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSetRepVec(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.SetRepVecRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.reputation.Handler.SetRepVecHandler(
		r.Context(),
		caller,
		r.PathValue("scope_id"),
		r.PathValue("member"),
		r.PathValue("context"),
		req,
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func writeReputationDomainError(w http.ResponseWriter, err error) {
	if domainerrors.IsInvariant(err) {
		writeReputationError(w, http.StatusInternalServerError, "invariant_breach", err.Error())
		return
	}
	switch {
	case errors.Is(err, domainerrors.ErrInvalidRequest):
		writeReputationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrPendingArrayMismatch):
		writeReputationError(w, http.StatusBadRequest, "pending_array_mismatch", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotFound):
		writeReputationError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotRegistered):
		writeReputationError(w, http.StatusNotFound, "poll_not_registered", err.Error())
	case errors.Is(err, domainerrors.ErrPollAlreadyRegistered):
		writeReputationError(w, http.StatusConflict, "poll_already_registered", err.Error())
	case errors.Is(err, domainerrors.ErrPollAlreadyStarted):
		writeReputationError(w, http.StatusConflict, "poll_already_started", err.Error())
	case errors.Is(err, domainerrors.ErrRegistrarAlreadySet):
		writeReputationError(w, http.StatusConflict, "registrar_already_set", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotActive):
		writeReputationError(w, http.StatusConflict, "poll_not_active", err.Error())
	case errors.Is(err, domainerrors.ErrPollWindowClosed):
		writeReputationError(w, http.StatusConflict, "poll_window_closed", err.Error())
	case errors.Is(err, domainerrors.ErrUnknownContextType):
		writeReputationError(w, http.StatusUnprocessableEntity, "unknown_context_type", err.Error())
	case errors.Is(err, domainerrors.ErrNotRegistrar):
		writeReputationError(w, http.StatusForbidden, "not_registrar", err.Error())
	case errors.Is(err, domainerrors.ErrNotRoot):
		writeReputationError(w, http.StatusForbidden, "not_root", err.Error())
	case errors.Is(err, domainerrors.ErrRootMayNotRegister):
		writeReputationError(w, http.StatusForbidden, "root_may_not_register", err.Error())
	case errors.Is(err, domainerrors.ErrRegistrarNotSet):
		writeReputationError(w, http.StatusPreconditionFailed, "registrar_not_set", err.Error())
	case errors.Is(err, domainerrors.ErrCapabilityRevoked):
		writeReputationError(w, http.StatusFailedDependency, "capability_revoked", err.Error())
	default:
		writeReputationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeReputationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeReputationError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return false
	}
	return true
}

func resolveCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Caller-Address"))
	if caller == "" {
		writeReputationError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return "", false
	}
	return caller, true
}
