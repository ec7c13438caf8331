package repository

import (
	"errors"
	"strings"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
)

// Collection names used by the hiring data set.
const (
	PositionsCollection    = "positions"
	ApplicationsCollection = "applications"
	ReviewsCollection      = "reviews"
)

// ErrInvalidRecord indicates a stored document that does not satisfy its model's constraints.
var ErrInvalidRecord = errors.New("stored record failed validation")

func positionPath(positionID string) string {
	return docstore.Join(PositionsCollection, positionID)
}

// validID reports whether id can address a single document.
func validID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}
