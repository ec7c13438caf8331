package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/models"
)

// ReviewRepository persists reviews in a position's reviews subcollection.
type ReviewRepository interface {
	FindByApplication(ctx context.Context, positionID, applicationID string) ([]models.Review, error)
	ListByPosition(ctx context.Context, positionID string) ([]models.Review, error)
	Save(ctx context.Context, positionID string, review models.Review) (models.Review, error)
}

type reviewRepository struct {
	store docstore.Store
	newID func() string
}

// NewReviewRepository constructs a review repository.
func NewReviewRepository(store docstore.Store) ReviewRepository {
	return &reviewRepository{store: store, newID: uuid.NewString}
}

func (r *reviewRepository) collection(positionID string) string {
	return docstore.Join(positionPath(positionID), ReviewsCollection)
}

func (r *reviewRepository) FindByApplication(ctx context.Context, positionID, applicationID string) ([]models.Review, error) {
	docs, err := r.store.Query(ctx, r.collection(positionID), "applicationId", applicationID)
	if err != nil {
		return nil, err
	}
	return decodeReviews(docs)
}

func (r *reviewRepository) ListByPosition(ctx context.Context, positionID string) ([]models.Review, error) {
	docs, err := r.store.StreamChildren(ctx, positionPath(positionID), ReviewsCollection)
	if err != nil {
		return nil, err
	}
	return decodeReviews(docs)
}

// Save writes review in place when it carries an ID, otherwise under a new ID.
// The creation timestamp is always assigned by the store.
func (r *reviewRepository) Save(ctx context.Context, positionID string, review models.Review) (models.Review, error) {
	if review.ID == "" {
		review.ID = r.newID()
	}

	doc, err := r.store.Upsert(ctx, docstore.Join(r.collection(positionID), review.ID), map[string]interface{}{
		"rating":        review.Rating,
		"comment":       review.Comment,
		"applicationId": review.ApplicationID,
		"createdAt":     docstore.ServerTimestamp,
	})
	if err != nil {
		return models.Review{}, err
	}
	return decodeReview(doc)
}

func decodeReviews(docs []docstore.Document) ([]models.Review, error) {
	reviews := make([]models.Review, 0, len(docs))
	for _, doc := range docs {
		review, err := decodeReview(doc)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func decodeReview(doc docstore.Document) (models.Review, error) {
	var review models.Review
	if err := models.DecodeFields(doc.Fields, &review); err != nil {
		return models.Review{}, fmt.Errorf("%w: review %s: %v", ErrInvalidRecord, doc.ID, err)
	}
	review.ID = doc.ID
	return review, nil
}
