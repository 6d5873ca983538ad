package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"repledger/contexts/governance/reputation-system/domain/entities"
	domainerrors "repledger/contexts/governance/reputation-system/domain/errors"
	"repledger/contexts/governance/reputation-system/ports"
	"repledger/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	settingRegistrar = "registrar"
	sequenceRepVec   = "repvec_update_seq"
)

// Repository persists all reputation system state in postgres. Multi-record
// operations run inside one transaction so the mirrored-write and
// all-or-nothing guarantees hold under failure.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreatePollRequest(ctx context.Context, request entities.PollRequest) error {
	row := pollRequestModelFromEntity(request)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrPollAlreadyRegistered
		}
		return r.logError("reputation_repo_create_poll_request_failed", err, "poll_id", request.PollID)
	}
	return nil
}

func (r *Repository) UpdatePollRequest(ctx context.Context, request entities.PollRequest) error {
	row := pollRequestModelFromEntity(request)
	update := r.db.WithContext(ctx).Model(&pollRequestModel{}).
		Where("poll_id = ?", request.PollID).
		Updates(map[string]any{
			"min_start_time": row.MinStartTime,
			"max_start_time": row.MaxStartTime,
			"pseudo_price":   row.PseudoPrice,
			"price_gte_one":  row.PriceGTEOne,
			"token_address":  row.TokenAddress,
			"context_types":  row.ContextTypes,
			"updated_at":     row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("reputation_repo_update_poll_request_failed", update.Error, "poll_id", request.PollID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrPollNotRegistered
	}
	return nil
}

func (r *Repository) GetPollRequest(ctx context.Context, pollID string) (entities.PollRequest, bool, error) {
	var row pollRequestModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PollRequest{}, false, nil
		}
		return entities.PollRequest{}, false, r.logError("reputation_repo_get_poll_request_failed", err, "poll_id", pollID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) StartPoll(ctx context.Context, poll entities.Poll) (entities.Project, error) {
	var project projectModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := pollModel{
			PollID:    poll.PollID,
			ProjectID: poll.ProjectID,
			StartTime: poll.StartTime,
			EndTime:   poll.EndTime,
			Active:    poll.Active,
			CreatedAt: poll.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrPollAlreadyStarted
			}
			return err
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ?", poll.ProjectID).
			First(&project).
			Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			project = projectModel{ProjectID: poll.ProjectID, PollCount: 1}
			return tx.Create(&project).Error
		case err != nil:
			return err
		default:
			project.PollCount++
			return tx.Save(&project).Error
		}
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollAlreadyStarted) {
			return entities.Project{}, err
		}
		return entities.Project{}, r.logError("reputation_repo_start_poll_failed", err,
			"poll_id", poll.PollID,
			"project_id", poll.ProjectID,
		)
	}
	return entities.Project{ProjectID: project.ProjectID, PollCount: project.PollCount}, nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, bool, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, false, nil
		}
		return entities.Poll{}, false, r.logError("reputation_repo_get_poll_failed", err, "poll_id", pollID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetProject(ctx context.Context, projectID string) (entities.Project, bool, error) {
	var row projectModel
	err := r.db.WithContext(ctx).
		Where("project_id = ?", strings.TrimSpace(projectID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Project{}, false, nil
		}
		return entities.Project{}, false, r.logError("reputation_repo_get_project_failed", err, "project_id", projectID)
	}
	return entities.Project{ProjectID: row.ProjectID, PollCount: row.PollCount}, true, nil
}

func (r *Repository) GetRegistrar(ctx context.Context) (string, bool, error) {
	var row settingModel
	err := r.db.WithContext(ctx).
		Where("name = ?", settingRegistrar).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, r.logError("reputation_repo_get_registrar_failed", err)
	}
	return row.Value, true, nil
}

func (r *Repository) SetRegistrar(ctx context.Context, registrar string) error {
	row := settingModel{Name: settingRegistrar, Value: registrar}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRegistrarAlreadySet
		}
		return r.logError("reputation_repo_set_registrar_failed", err)
	}
	return nil
}

func (r *Repository) ApplyVote(ctx context.Context, input ports.ApplyVoteInput) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []voteRecordModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("poll_id = ?", input.PollID).
			Where("voter = ?", input.Voter).
			Find(&rows).Error; err != nil {
			return err
		}
		var spend uint64
		for _, row := range rows {
			spend += row.VotesWei
		}
		if input.AmountWei > input.Allowance || spend > input.Allowance-input.AmountWei {
			return domainerrors.NewInvariant("vote",
				"cumulative spend %d plus %d wei exceeds allowance %d for voter %s in poll %s",
				spend, input.AmountWei, input.Allowance, input.Voter, input.PollID)
		}

		record := voteRecordModel{
			PollID:      input.PollID,
			Voter:       input.Voter,
			ContextType: input.ContextType,
			VotesWei:    input.AmountWei,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "poll_id"}, {Name: "voter"}, {Name: "context_type"}},
			DoUpdates: clause.Assignments(map[string]any{
				"votes_wei": gorm.Expr("vote_records.votes_wei + ?", input.AmountWei),
			}),
		}).Create(&record).Error; err != nil {
			return err
		}

		for _, scopeID := range []string{input.ProjectScopeID, input.GlobalScopeID} {
			if err := r.addPendingTx(tx, scopeID, input); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if domainerrors.IsInvariant(err) {
			return err
		}
		return r.logError("reputation_repo_apply_vote_failed", err,
			"poll_id", input.PollID,
			"voter", input.Voter,
			"member", input.Member,
		)
	}
	return nil
}

func (r *Repository) GetVoteRecord(ctx context.Context, pollID string, voter string, contextType string) (uint64, error) {
	var row voteRecordModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("voter = ?", strings.TrimSpace(voter)).
		Where("context_type = ?", strings.TrimSpace(contextType)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("reputation_repo_get_vote_record_failed", err,
			"poll_id", pollID,
			"voter", voter,
		)
	}
	return row.VotesWei, nil
}

func (r *Repository) VoterSpend(ctx context.Context, pollID string, voter string) (uint64, error) {
	var spend uint64
	err := r.db.WithContext(ctx).Model(&voteRecordModel{}).
		Select("COALESCE(SUM(votes_wei), 0)").
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("voter = ?", strings.TrimSpace(voter)).
		Scan(&spend).
		Error
	if err != nil {
		return 0, r.logError("reputation_repo_voter_spend_failed", err,
			"poll_id", pollID,
			"voter", voter,
		)
	}
	return spend, nil
}

func (r *Repository) GetRepVec(ctx context.Context, scopeID string, member string, contextType string) (entities.RepVec, bool, error) {
	var row repVecModel
	err := r.db.WithContext(ctx).
		Where("scope_id = ?", strings.TrimSpace(scopeID)).
		Where("member = ?", strings.TrimSpace(member)).
		Where("context_type = ?", strings.TrimSpace(contextType)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RepVec{}, false, nil
		}
		return entities.RepVec{}, false, r.logError("reputation_repo_get_repvec_failed", err,
			"scope_id", scopeID,
			"member", member,
		)
	}

	var pendingRows []pendingVoteModel
	if err := r.db.WithContext(ctx).
		Where("scope_id = ?", row.ScopeID).
		Where("member = ?", row.Member).
		Where("context_type = ?", row.ContextType).
		Find(&pendingRows).Error; err != nil {
		return entities.RepVec{}, false, r.logError("reputation_repo_get_pending_votes_failed", err,
			"scope_id", scopeID,
			"member", member,
		)
	}
	pending := make(map[string]uint64, len(pendingRows))
	for _, pendingRow := range pendingRows {
		pending[pendingRow.PollID] = pendingRow.VotesWei
	}
	return entities.RepVec{
		ScopeID:           row.ScopeID,
		Member:            row.Member,
		ContextType:       row.ContextType,
		PendingVotes:      pending,
		TotalPendingVotes: row.TotalPendingVotes,
		ConfirmedVotes:    row.ConfirmedVotes,
		LastUpdated:       row.LastUpdated,
		UpdateSeq:         row.UpdateSeq,
	}, true, nil
}

func (r *Repository) PromoteContexts(ctx context.Context, input ports.PromoteInput) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, scopeID := range input.ScopeIDs {
			for _, contextType := range input.ContextTypes {
				var row repVecModel
				err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("scope_id = ?", scopeID).
					Where("member = ?", input.Member).
					Where("context_type = ?", contextType).
					First(&row).
					Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					row = repVecModel{ScopeID: scopeID, Member: input.Member, ContextType: contextType}
				} else if err != nil {
					return err
				}

				if input.MoveToConfirmed {
					row.ConfirmedVotes += row.TotalPendingVotes
				}
				if input.ResetPending {
					row.TotalPendingVotes = 0
					if err := tx.
						Where("scope_id = ?", scopeID).
						Where("member = ?", input.Member).
						Where("context_type = ?", contextType).
						Delete(&pendingVoteModel{}).Error; err != nil {
						return err
					}
				}
				seq, err := r.nextSeqTx(tx)
				if err != nil {
					return err
				}
				row.LastUpdated = input.Now
				row.UpdateSeq = seq
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "scope_id"}, {Name: "member"}, {Name: "context_type"}},
					DoUpdates: clause.Assignments(map[string]any{
						"confirmed_votes":     row.ConfirmedVotes,
						"total_pending_votes": row.TotalPendingVotes,
						"last_updated":        row.LastUpdated,
						"update_seq":          row.UpdateSeq,
					}),
				}).Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("reputation_repo_promote_contexts_failed", err,
			"member", input.Member,
			"scope_count", len(input.ScopeIDs),
		)
	}
	return nil
}

func (r *Repository) OverwriteRepVec(ctx context.Context, vec entities.RepVec, audit []outbox.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := repVecModel{
			ScopeID:           vec.ScopeID,
			Member:            vec.Member,
			ContextType:       vec.ContextType,
			ConfirmedVotes:    vec.ConfirmedVotes,
			TotalPendingVotes: vec.TotalPendingVotes,
			LastUpdated:       vec.LastUpdated,
			UpdateSeq:         vec.UpdateSeq,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "scope_id"}, {Name: "member"}, {Name: "context_type"}},
			DoUpdates: clause.Assignments(map[string]any{
				"confirmed_votes":     row.ConfirmedVotes,
				"total_pending_votes": row.TotalPendingVotes,
				"last_updated":        row.LastUpdated,
				"update_seq":          row.UpdateSeq,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		if err := tx.
			Where("scope_id = ?", vec.ScopeID).
			Where("member = ?", vec.Member).
			Where("context_type = ?", vec.ContextType).
			Delete(&pendingVoteModel{}).Error; err != nil {
			return err
		}
		for pollID, amount := range vec.PendingVotes {
			pendingRow := pendingVoteModel{
				ScopeID:     vec.ScopeID,
				Member:      vec.Member,
				ContextType: vec.ContextType,
				PollID:      pollID,
				VotesWei:    amount,
			}
			if err := tx.Create(&pendingRow).Error; err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for _, message := range audit {
			outboxRow := outboxModel{
				ID:         message.ID,
				EventType:  message.EventType,
				Payload:    message.Payload,
				Status:     outboxStatusPending,
				RetryCount: message.RetryCount,
				CreatedAt:  now,
			}
			if err := tx.Create(&outboxRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("reputation_repo_overwrite_repvec_failed", err,
			"scope_id", vec.ScopeID,
			"member", vec.Member,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("reputation_repo_list_pending_outbox_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:  row.ID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("reputation_repo_mark_outbox_published_failed", update.Error, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) addPendingTx(tx *gorm.DB, scopeID string, input ports.ApplyVoteInput) error {
	seq, err := r.nextSeqTx(tx)
	if err != nil {
		return err
	}

	vecRow := repVecModel{
		ScopeID:           scopeID,
		Member:            input.Member,
		ContextType:       input.ContextType,
		TotalPendingVotes: input.AmountWei,
		LastUpdated:       input.Now,
		UpdateSeq:         seq,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope_id"}, {Name: "member"}, {Name: "context_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_pending_votes": gorm.Expr("reputation_vectors.total_pending_votes + ?", input.AmountWei),
			"last_updated":        input.Now,
			"update_seq":          seq,
		}),
	}).Create(&vecRow).Error; err != nil {
		return err
	}

	pendingRow := pendingVoteModel{
		ScopeID:     scopeID,
		Member:      input.Member,
		ContextType: input.ContextType,
		PollID:      input.PollID,
		VotesWei:    input.AmountWei,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "scope_id"}, {Name: "member"}, {Name: "context_type"}, {Name: "poll_id"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"votes_wei": gorm.Expr("reputation_pending_votes.votes_wei + ?", input.AmountWei),
		}),
	}).Create(&pendingRow).Error
}

func (r *Repository) nextSeqTx(tx *gorm.DB) (uint64, error) {
	var row sequenceModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", sequenceRepVec).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = sequenceModel{Name: sequenceRepVec, Value: 1}
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
		return row.Value, nil
	}
	if err != nil {
		return 0, err
	}
	row.Value++
	if err := tx.Save(&row).Error; err != nil {
		return 0, err
	}
	return row.Value, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/reputation-system",
		"layer", "adapter",
	}, args...)
	fields = append(fields, "error", err.Error())
	r.logger.Error("reputation repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock is the production clock adapter.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues ids for audit/outbox rows.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
