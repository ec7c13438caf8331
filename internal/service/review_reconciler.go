package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/models"
	"github.com/GDSC-UTSC/gdg-website/internal/observability"
	"github.com/GDSC-UTSC/gdg-website/internal/repository"
)

// SaveOutcome reports what happened to one result during reconciliation.
type SaveOutcome struct {
	ApplicationID string
	ReviewID      string
	Created       bool
	Err           error
}

// Saved reports whether the review was persisted.
func (o SaveOutcome) Saved() bool {
	return o.Err == nil
}

// ReviewReconciler upserts validated results so each application keeps a single review.
type ReviewReconciler struct {
	positions repository.PositionRepository
	reviews   repository.ReviewRepository
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewReviewReconciler constructs a reconciler.
func NewReviewReconciler(positions repository.PositionRepository, reviews repository.ReviewRepository, logger zerolog.Logger) *ReviewReconciler {
	return &ReviewReconciler{
		positions: positions,
		reviews:   reviews,
		logger:    logger.With().Str("component", "review_reconciler").Logger(),
		tracer:    otel.Tracer("github.com/GDSC-UTSC/gdg-website/internal/service/review"),
	}
}

// Reconcile persists results under positionID. The position must exist and be
// active, otherwise nothing is written and an error is returned. Failures of
// individual results are reported in their outcome and do not stop the rest.
// Outcomes follow the order of results.
func (r *ReviewReconciler) Reconcile(ctx context.Context, positionID string, results []ModelReviewResult) ([]SaveOutcome, error) {
	spanCtx, span := r.tracer.Start(ctx, "review.reconcile", trace.WithAttributes(
		attribute.String("review.position_id", positionID),
		attribute.Int("review.results", len(results)),
	))
	defer span.End()

	position, err := r.positions.GetByID(spanCtx, positionID)
	if err != nil {
		span.RecordError(err)
		return nil, classifyStoreError(err)
	}
	if !position.IsActive() {
		return nil, ErrPositionInactive
	}

	outcomes := make([]SaveOutcome, 0, len(results))
	for _, result := range results {
		outcome := r.save(spanCtx, positionID, result)
		if outcome.Err != nil {
			observability.ReviewSaveFailures().Inc()
			r.logger.Error().Err(outcome.Err).
				Str("position_id", positionID).
				Str("application_id", result.ApplicationID).
				Msg("failed to save review")
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (r *ReviewReconciler) save(ctx context.Context, positionID string, result ModelReviewResult) SaveOutcome {
	outcome := SaveOutcome{ApplicationID: result.ApplicationID}

	existing, err := r.reviews.FindByApplication(ctx, positionID, result.ApplicationID)
	if err != nil {
		outcome.Err = fmt.Errorf("find review for %s: %w", result.ApplicationID, err)
		return outcome
	}

	review := models.Review{
		ApplicationID: result.ApplicationID,
		Rating:        result.Rating,
		Comment:       result.Comment,
	}
	if len(existing) > 0 {
		review.ID = existing[0].ID
	} else {
		outcome.Created = true
	}

	saved, err := r.reviews.Save(ctx, positionID, review)
	if err != nil {
		outcome.Created = false
		outcome.Err = fmt.Errorf("save review for %s: %w", result.ApplicationID, err)
		return outcome
	}
	outcome.ReviewID = saved.ID
	return outcome
}

// classifyStoreError maps document store failures onto review errors. Permission
// failures pass through unchanged.
func classifyStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrPositionNotFound, err)
	case errors.Is(err, docstore.ErrPermissionDenied):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}
