package service

import "errors"

// MaxReviewBatchSize bounds the number of applications reviewed in one request.
const MaxReviewBatchSize = 10

// Request-level failures of the review pipeline.
var (
	// ErrTooManyApplications indicates more than MaxReviewBatchSize application ids were requested.
	ErrTooManyApplications = errors.New("cannot review more than 10 applications at once")
	// ErrPositionNotFound indicates the position does not exist.
	ErrPositionNotFound = errors.New("position not found")
	// ErrPositionInactive indicates the position exists but is not open for review.
	ErrPositionInactive = errors.New("position is not active")
	// ErrNoApplications indicates nothing is left to review after loading and filtering.
	ErrNoApplications = errors.New("no valid applications found for review")
	// ErrNoReviewableContent indicates every remaining application lacks reviewable text.
	ErrNoReviewableContent = errors.New("no application has reviewable information")
	// ErrReviewerUnavailable indicates no language model is configured.
	ErrReviewerUnavailable = errors.New("reviewer unavailable")
	// ErrStorageUnavailable wraps document store failures other than not-found and permission-denied.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Failures of a single model attempt.
var (
	// ErrModelUnavailable indicates the language model call itself failed.
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrAttemptTimeout indicates the language model did not answer within the attempt timeout.
	ErrAttemptTimeout = errors.New("language model attempt timed out")
	// ErrReviewExhausted indicates every attempt produced an unusable response.
	ErrReviewExhausted = errors.New("review attempts exhausted")
)

// Reasons a model response is rejected.
var (
	ErrMalformedResponse    = errors.New("response is not valid json")
	ErrResponseShape        = errors.New("response does not match the expected structure")
	ErrResultCountMismatch  = errors.New("response entry count does not match the batch")
	ErrUnknownApplication   = errors.New("response references an application outside the batch")
	ErrDuplicateApplication = errors.New("response repeats an application")
	ErrRatingOutOfRange     = errors.New("rating must be an integer between 1 and 10")
	ErrBlankComment         = errors.New("comment must not be blank")
	ErrCommentMarkup        = errors.New("comment must be plain text without markup")
)
