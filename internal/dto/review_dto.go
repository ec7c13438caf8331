package dto

import (
	"time"

	"github.com/GDSC-UTSC/gdg-website/internal/models"
)

// ReviewApplicationsRequest asks for a batch review of a position's applications.
// An empty ApplicationIDs reviews every stored application.
type ReviewApplicationsRequest struct {
	PositionID     string   `json:"position_id" validate:"required,max=128,excludes=/"`
	ApplicationIDs []string `json:"application_ids" validate:"omitempty,max=10,dive,required,max=128,excludes=/"`
}

// ReviewResultResponse is the model's verdict for one application.
type ReviewResultResponse struct {
	ApplicationID string `json:"application_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Saved         bool   `json:"saved"`
	ReviewID      string `json:"review_id,omitempty"`
}

// SkippedApplicationResponse names an application left out of the batch.
type SkippedApplicationResponse struct {
	ApplicationID string `json:"application_id"`
	Reason        string `json:"reason"`
}

// ReviewApplicationsResponse is the payload returned by a batch review.
type ReviewApplicationsResponse struct {
	PositionID            string                       `json:"position_id"`
	Results               []ReviewResultResponse       `json:"results"`
	MissingApplicationIDs []string                     `json:"missing_application_ids"`
	Skipped               []SkippedApplicationResponse `json:"skipped"`
	Attempts              int                          `json:"attempts"`
}

// ReviewResponse is a stored review.
type ReviewResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// PositionReviewsResponse lists the stored reviews of a position.
type PositionReviewsResponse struct {
	PositionID string           `json:"position_id"`
	Reviews    []ReviewResponse `json:"reviews"`
}

// NewReviewResponse converts a model into a DTO.
func NewReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:            review.ID,
		ApplicationID: review.ApplicationID,
		Rating:        review.Rating,
		Comment:       review.Comment,
		CreatedAt:     review.CreatedAt,
	}
}

// NewReviewResponseSlice converts a slice of models into DTOs.
func NewReviewResponseSlice(reviews []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, NewReviewResponse(review))
	}
	return out
}
