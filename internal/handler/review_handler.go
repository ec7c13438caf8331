package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/dto"
	"github.com/GDSC-UTSC/gdg-website/internal/service"
	"github.com/GDSC-UTSC/gdg-website/internal/utils"
)

const defaultRetryAfter = 30 * time.Second

// ReviewHandler exposes the application review pipeline over HTTP.
type ReviewHandler struct {
	service    service.ReviewService
	logger     zerolog.Logger
	retryAfter time.Duration
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:    service,
		logger:     logger.With().Str("component", "review_handler").Logger(),
		retryAfter: defaultRetryAfter,
	}
}

// ReviewApplications reviews a batch of applications named in the request body.
func (h *ReviewHandler) ReviewApplications(c *fiber.Ctx) error {
	var payload dto.ReviewApplicationsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_request", "invalid payload")
	}

	response, err := h.service.ReviewApplications(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "applications reviewed", response)
}

// ReviewApplication reviews a single application through the batch pipeline.
func (h *ReviewHandler) ReviewApplication(c *fiber.Ctx) error {
	payload := dto.ReviewApplicationsRequest{
		PositionID:     c.Params("positionId"),
		ApplicationIDs: []string{c.Params("applicationId")},
	}

	response, err := h.service.ReviewApplications(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	if len(response.Results) == 0 {
		return utils.SendErrorCode(c, fiber.StatusNotFound, "application_not_found", "application not found")
	}

	return utils.SendSuccess(c, "application reviewed", response.Results[0])
}

// ListReviews returns the stored reviews of a position.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	response, err := h.service.ListReviews(c.UserContext(), c.Params("positionId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reviews retrieved", response)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	logger := requestLogger(h.logger, c)

	switch {
	case errors.Is(err, service.ErrTooManyApplications):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "too_many_applications", err.Error())
	case isValidationError(err):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_request", validationMessage(err))
	case errors.Is(err, service.ErrPositionNotFound), errors.Is(err, docstore.ErrNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "position_not_found", service.ErrPositionNotFound.Error())
	case errors.Is(err, service.ErrNoApplications):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "no_applications", err.Error())
	case errors.Is(err, service.ErrPositionInactive):
		return utils.SendErrorCode(c, fiber.StatusPreconditionFailed, "position_inactive", err.Error())
	case errors.Is(err, service.ErrNoReviewableContent):
		return utils.SendErrorCode(c, fiber.StatusUnprocessableEntity, "no_reviewable_content", err.Error())
	case errors.Is(err, service.ErrModelUnavailable):
		logger.Error().Err(err).Msg("language model unavailable")
		h.setRetryAfter(c)
		return utils.SendErrorCode(c, fiber.StatusServiceUnavailable, "model_unavailable", "review model is temporarily unavailable")
	case errors.Is(err, service.ErrReviewExhausted):
		logger.Error().Err(err).Msg("review attempts exhausted")
		return utils.SendErrorCode(c, fiber.StatusBadGateway, "review_exhausted", "review model returned no usable response")
	case errors.Is(err, docstore.ErrPermissionDenied):
		logger.Error().Err(err).Msg("document store denied access")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, "storage_misconfigured", "storage access denied")
	case errors.Is(err, service.ErrReviewerUnavailable):
		logger.Error().Err(err).Msg("review model not configured")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, "reviewer_unavailable", "review model is not configured")
	case errors.Is(err, service.ErrStorageUnavailable):
		logger.Error().Err(err).Msg("document store unavailable")
		h.setRetryAfter(c)
		return utils.SendErrorCode(c, fiber.StatusServiceUnavailable, "storage_unavailable", "storage temporarily unavailable")
	default:
		logger.Error().Err(err).Msg("review request failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, "internal_error", "failed to review applications")
	}
}

func (h *ReviewHandler) setRetryAfter(c *fiber.Ctx) {
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(h.retryAfter.Seconds())))
}
