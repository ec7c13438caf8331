package repository

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/models"
)

// ApplicationRepository exposes the applications stored under a position.
type ApplicationRepository interface {
	ListByPosition(ctx context.Context, positionID string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, positionID, applicationID, status string) error
}

type applicationRepository struct {
	store     docstore.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewApplicationRepository constructs an application repository. Documents that
// fail validation are skipped and reported through logger.
func NewApplicationRepository(store docstore.Store, validate *validator.Validate, logger zerolog.Logger) ApplicationRepository {
	return &applicationRepository{
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "application_repository").Logger(),
	}
}

func (r *applicationRepository) ListByPosition(ctx context.Context, positionID string) ([]models.Application, error) {
	docs, err := r.store.StreamChildren(ctx, positionPath(positionID), ApplicationsCollection)
	if err != nil {
		return nil, err
	}

	applications := make([]models.Application, 0, len(docs))
	for _, doc := range docs {
		application, err := r.decode(doc)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("position_id", positionID).
				Str("application_id", doc.ID).
				Msg("skipping invalid application")
			continue
		}
		applications = append(applications, application)
	}

	return applications, nil
}

// UpdateStatus returns docstore.ErrNotFound when the application no longer exists.
func (r *applicationRepository) UpdateStatus(ctx context.Context, positionID, applicationID, status string) error {
	if !validID(trimmed(applicationID)) {
		return docstore.ErrNotFound
	}
	path := docstore.Join(positionPath(positionID), ApplicationsCollection, applicationID)
	_, err := r.store.Update(ctx, path, map[string]interface{}{
		"status":    status,
		"updatedAt": docstore.ServerTimestamp,
	})
	return err
}

func (r *applicationRepository) decode(doc docstore.Document) (models.Application, error) {
	var application models.Application
	if err := models.DecodeFields(doc.Fields, &application); err != nil {
		return models.Application{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	application.ID = doc.ID
	application.Name = trimmed(application.Name)
	application.Email = trimmed(application.Email)
	if application.Status == "" {
		application.Status = models.ApplicationStatusPending
	}

	if err := r.validator.Struct(application); err != nil {
		return models.Application{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return application, nil
}
