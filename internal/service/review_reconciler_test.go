package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GDSC-UTSC/gdg-website/internal/models"
	"github.com/GDSC-UTSC/gdg-website/internal/repository"
)

func TestReconcilerIsIdempotent(t *testing.T) {
	fixture := newReviewFixture(t)
	fixture.seedPosition(t, "P1", models.PositionStatusActive)
	reconciler := NewReviewReconciler(fixture.positions, fixture.reviews, testLogger())
	ctx := context.Background()
	results := []ModelReviewResult{{ApplicationID: "A1", Rating: 8, Comment: "Strong fit"}}

	first, err := reconciler.Reconcile(ctx, "P1", results)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, first[0].Saved())
	require.True(t, first[0].Created)

	second, err := reconciler.Reconcile(ctx, "P1", results)
	require.NoError(t, err)
	require.True(t, second[0].Saved())
	require.False(t, second[0].Created)
	require.Equal(t, first[0].ReviewID, second[0].ReviewID)

	stored, err := fixture.reviews.FindByApplication(ctx, "P1", "A1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 8, stored[0].Rating)
	require.Equal(t, "Strong fit", stored[0].Comment)
}

func TestReconcilerUpdatesExistingReviewInPlace(t *testing.T) {
	fixture := newReviewFixture(t)
	fixture.seedPosition(t, "P1", models.PositionStatusActive)
	fixture.seed(t, "positions/P1/reviews/old-review", map[string]interface{}{
		"applicationId": "A1",
		"rating":        2,
		"comment":       "Earlier verdict",
	})
	reconciler := NewReviewReconciler(fixture.positions, fixture.reviews, testLogger())

	outcomes, err := reconciler.Reconcile(context.Background(), "P1", []ModelReviewResult{{ApplicationID: "A1", Rating: 9, Comment: "Much better"}})
	require.NoError(t, err)
	require.Equal(t, "old-review", outcomes[0].ReviewID)

	stored, err := fixture.reviews.ListByPosition(context.Background(), "P1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 9, stored[0].Rating)
}

func TestReconcilerRequiresActivePosition(t *testing.T) {
	fixture := newReviewFixture(t)
	fixture.seedPosition(t, "P1", models.PositionStatusClosed)
	reconciler := NewReviewReconciler(fixture.positions, fixture.reviews, testLogger())
	results := []ModelReviewResult{{ApplicationID: "A1", Rating: 8, Comment: "Strong fit"}}

	_, err := reconciler.Reconcile(context.Background(), "P1", results)
	require.ErrorIs(t, err, ErrPositionInactive)

	_, err = reconciler.Reconcile(context.Background(), "missing", results)
	require.ErrorIs(t, err, ErrPositionNotFound)

	stored, err := fixture.reviews.ListByPosition(context.Background(), "P1")
	require.NoError(t, err)
	require.Empty(t, stored)
}

type flakyReviewRepo struct {
	repository.ReviewRepository
	failFor string
}

func (r *flakyReviewRepo) Save(ctx context.Context, positionID string, review models.Review) (models.Review, error) {
	if review.ApplicationID == r.failFor {
		return models.Review{}, errors.New("write rejected")
	}
	return r.ReviewRepository.Save(ctx, positionID, review)
}

func TestReconcilerIsolatesSaveFailures(t *testing.T) {
	fixture := newReviewFixture(t)
	fixture.seedPosition(t, "P1", models.PositionStatusActive)
	reviews := &flakyReviewRepo{ReviewRepository: fixture.reviews, failFor: "A2"}
	reconciler := NewReviewReconciler(fixture.positions, reviews, testLogger())

	outcomes, err := reconciler.Reconcile(context.Background(), "P1", []ModelReviewResult{
		{ApplicationID: "A1", Rating: 8, Comment: "Strong fit"},
		{ApplicationID: "A2", Rating: 5, Comment: "Average"},
		{ApplicationID: "A3", Rating: 3, Comment: "Weak"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	require.True(t, outcomes[0].Saved())
	require.False(t, outcomes[1].Saved())
	require.False(t, outcomes[1].Created)
	require.Empty(t, outcomes[1].ReviewID)
	require.True(t, outcomes[2].Saved())

	stored, err := fixture.reviews.ListByPosition(context.Background(), "P1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
}
