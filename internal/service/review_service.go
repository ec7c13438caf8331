package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GDSC-UTSC/gdg-website/internal/dto"
	"github.com/GDSC-UTSC/gdg-website/internal/models"
	"github.com/GDSC-UTSC/gdg-website/internal/repository"
)

// SkipReasonNoContent is reported for applications without any answered question.
const SkipReasonNoContent = "no reviewable information"

// ReviewService coordinates batch reviews of a position's applications.
type ReviewService interface {
	ReviewApplications(ctx context.Context, req dto.ReviewApplicationsRequest) (dto.ReviewApplicationsResponse, error)
	ListReviews(ctx context.Context, positionID string) (dto.PositionReviewsResponse, error)
}

type reviewService struct {
	positions    repository.PositionRepository
	applications repository.ApplicationRepository
	reviews      repository.ReviewRepository
	orchestrator *ReviewOrchestrator
	reconciler   *ReviewReconciler
	events       ReviewEventPublisher
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewReviewService constructs the review coordinator. events may be nil.
func NewReviewService(
	positions repository.PositionRepository,
	applications repository.ApplicationRepository,
	reviews repository.ReviewRepository,
	orchestrator *ReviewOrchestrator,
	events ReviewEventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		positions:    positions,
		applications: applications,
		reviews:      reviews,
		orchestrator: orchestrator,
		reconciler:   NewReviewReconciler(positions, reviews, logger),
		events:       events,
		validator:    validate,
		logger:       logger.With().Str("component", "review_service").Logger(),
		tracer:       otel.Tracer("github.com/GDSC-UTSC/gdg-website/internal/service/review"),
	}
}

func (s *reviewService) ReviewApplications(ctx context.Context, req dto.ReviewApplicationsRequest) (dto.ReviewApplicationsResponse, error) {
	if len(req.ApplicationIDs) > MaxReviewBatchSize {
		return dto.ReviewApplicationsResponse{}, ErrTooManyApplications
	}
	req.PositionID = strings.TrimSpace(req.PositionID)
	if len(req.ApplicationIDs) > 0 {
		ids := make([]string, 0, len(req.ApplicationIDs))
		for _, id := range req.ApplicationIDs {
			ids = append(ids, strings.TrimSpace(id))
		}
		req.ApplicationIDs = ids
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewApplicationsResponse{}, err
	}
	if s.orchestrator == nil {
		return dto.ReviewApplicationsResponse{}, ErrReviewerUnavailable
	}

	spanCtx, span := s.tracer.Start(ctx, "review.applications", trace.WithAttributes(
		attribute.String("review.position_id", req.PositionID),
		attribute.Int("review.requested", len(req.ApplicationIDs)),
	))
	defer span.End()

	position, err := s.positions.GetByID(spanCtx, req.PositionID)
	if err != nil {
		span.RecordError(err)
		return dto.ReviewApplicationsResponse{}, classifyStoreError(err)
	}
	if !position.IsActive() {
		return dto.ReviewApplicationsResponse{}, ErrPositionInactive
	}

	stored, err := s.applications.ListByPosition(spanCtx, position.ID)
	if err != nil {
		span.RecordError(err)
		return dto.ReviewApplicationsResponse{}, classifyStoreError(err)
	}

	selected, missing := selectApplications(stored, req.ApplicationIDs)
	if len(missing) > 0 {
		s.logger.Warn().
			Str("position_id", position.ID).
			Strs("application_ids", missing).
			Msg("requested applications not found")
	}
	if len(selected) == 0 {
		return dto.ReviewApplicationsResponse{}, ErrNoApplications
	}

	batch := ReviewBatch{Job: JobDescriptor{Name: position.Name, Description: position.Description, Tags: position.Tags}}
	skipped := make([]dto.SkippedApplicationResponse, 0)
	for _, application := range selected {
		info := ApplicationInfo(NormalizeApplication(position.Questions, application.Questions))
		if info == "" {
			s.logger.Warn().
				Str("position_id", position.ID).
				Str("application_id", application.ID).
				Msg("skipping application without reviewable information")
			skipped = append(skipped, dto.SkippedApplicationResponse{ApplicationID: application.ID, Reason: SkipReasonNoContent})
			continue
		}
		batch.Entries = append(batch.Entries, PromptEntry{ApplicationID: application.ID, Info: info})
	}
	if len(batch.Entries) == 0 {
		return dto.ReviewApplicationsResponse{}, ErrNoReviewableContent
	}

	result, err := s.orchestrator.Review(spanCtx, batch)
	if err != nil {
		span.RecordError(err)
		return dto.ReviewApplicationsResponse{}, err
	}

	outcomes, err := s.reconciler.Reconcile(spanCtx, position.ID, result.Results)
	if err != nil {
		s.logger.Error().Err(err).Str("position_id", position.ID).Msg("reviews not saved")
		outcomes = nil
	}

	byApplication := make(map[string]ModelReviewResult, len(result.Results))
	for _, item := range result.Results {
		byApplication[item.ApplicationID] = item
	}
	saved := make(map[string]SaveOutcome, len(outcomes))
	for _, outcome := range outcomes {
		saved[outcome.ApplicationID] = outcome
	}
	statuses := make(map[string]string, len(selected))
	for _, application := range selected {
		statuses[application.ID] = application.Status
	}

	response := dto.ReviewApplicationsResponse{
		PositionID:            position.ID,
		Results:               make([]dto.ReviewResultResponse, 0, len(batch.Entries)),
		MissingApplicationIDs: missing,
		Skipped:               skipped,
		Attempts:              result.Attempts,
	}
	for _, id := range batch.IDs() {
		item := byApplication[id]
		outcome, ok := saved[id]
		isSaved := ok && outcome.Saved()

		response.Results = append(response.Results, dto.ReviewResultResponse{
			ApplicationID: id,
			Rating:        item.Rating,
			Comment:       item.Comment,
			Saved:         isSaved,
			ReviewID:      outcome.ReviewID,
		})

		if isSaved {
			s.afterSave(spanCtx, position.ID, statuses[id], item, outcome)
		}
	}

	s.logger.Info().
		Str("position_id", position.ID).
		Int("reviewed", len(response.Results)).
		Int("skipped", len(skipped)).
		Int("missing", len(missing)).
		Int("attempts", result.Attempts).
		Msg("applications reviewed")

	return response, nil
}

func (s *reviewService) afterSave(ctx context.Context, positionID, status string, result ModelReviewResult, outcome SaveOutcome) {
	if status == models.ApplicationStatusPending {
		if err := s.applications.UpdateStatus(ctx, positionID, result.ApplicationID, models.ApplicationStatusReviewed); err != nil {
			s.logger.Warn().Err(err).
				Str("position_id", positionID).
				Str("application_id", result.ApplicationID).
				Msg("failed to mark application reviewed")
		}
	}

	if s.events == nil {
		return
	}
	event := ReviewCompletedEvent{
		PositionID:    positionID,
		ApplicationID: result.ApplicationID,
		ReviewID:      outcome.ReviewID,
		Rating:        result.Rating,
		Created:       outcome.Created,
	}
	if err := s.events.PublishReviewCompleted(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Str("position_id", positionID).
			Str("application_id", result.ApplicationID).
			Msg("failed to publish review event")
	}
}

func (s *reviewService) ListReviews(ctx context.Context, positionID string) (dto.PositionReviewsResponse, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return dto.PositionReviewsResponse{}, ErrPositionNotFound
	}

	position, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return dto.PositionReviewsResponse{}, classifyStoreError(err)
	}

	reviews, err := s.reviews.ListByPosition(ctx, position.ID)
	if err != nil {
		return dto.PositionReviewsResponse{}, classifyStoreError(err)
	}

	return dto.PositionReviewsResponse{
		PositionID: position.ID,
		Reviews:    dto.NewReviewResponseSlice(reviews),
	}, nil
}

// selectApplications keeps stored order. With no requested ids every application
// is selected; otherwise requested ids that are not stored are returned as missing.
func selectApplications(stored []models.Application, requested []string) ([]models.Application, []string) {
	missing := make([]string, 0)
	if len(requested) == 0 {
		return stored, missing
	}

	wanted := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		wanted[id] = struct{}{}
	}

	found := make(map[string]struct{}, len(requested))
	selected := make([]models.Application, 0, len(requested))
	for _, application := range stored {
		if _, ok := wanted[application.ID]; !ok {
			continue
		}
		if _, dup := found[application.ID]; dup {
			continue
		}
		found[application.ID] = struct{}{}
		selected = append(selected, application)
	}

	for _, id := range requested {
		if _, ok := found[id]; ok {
			continue
		}
		found[id] = struct{}{}
		missing = append(missing, id)
	}

	return selected, missing
}
