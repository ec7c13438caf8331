package repository

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/models"
)

// PositionRepository reads positions from the document store.
type PositionRepository interface {
	GetByID(ctx context.Context, id string) (models.Position, error)
}

type positionRepository struct {
	store     docstore.Store
	validator *validator.Validate
}

// NewPositionRepository constructs a position repository.
func NewPositionRepository(store docstore.Store, validate *validator.Validate) PositionRepository {
	return &positionRepository{store: store, validator: validate}
}

// GetByID returns docstore.ErrNotFound when the position is absent or its stored
// document is unusable.
func (r *positionRepository) GetByID(ctx context.Context, id string) (models.Position, error) {
	if !validID(trimmed(id)) {
		return models.Position{}, docstore.ErrNotFound
	}

	doc, found, err := r.store.GetDocument(ctx, PositionsCollection, id)
	if err != nil {
		return models.Position{}, err
	}
	if !found {
		return models.Position{}, docstore.ErrNotFound
	}

	var position models.Position
	if err := models.DecodeFields(doc.Fields, &position); err != nil {
		return models.Position{}, fmt.Errorf("%w: %w: position %s: %v", docstore.ErrNotFound, ErrInvalidRecord, id, err)
	}
	position.ID = doc.ID
	position.Name = trimmed(position.Name)
	position.Description = trimmed(position.Description)
	if position.Tags == nil {
		position.Tags = []string{}
	}

	if err := r.validator.Struct(position); err != nil {
		return models.Position{}, fmt.Errorf("%w: %w: position %s: %v", docstore.ErrNotFound, ErrInvalidRecord, id, err)
	}

	return position, nil
}
