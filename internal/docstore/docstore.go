package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound indicates the addressed document or collection does not exist.
var ErrNotFound = errors.New("document not found")

// ErrPermissionDenied indicates the store rejected the operation for the configured credentials.
var ErrPermissionDenied = errors.New("document store permission denied")

// ErrInvalidPath indicates a malformed collection or document path.
var ErrInvalidPath = errors.New("invalid document path")

type serverTimestamp struct{}

// ServerTimestamp is a field value replaced by the store's clock at write time.
var ServerTimestamp = serverTimestamp{}

// TimestampLayout is the layout used to persist resolved timestamps.
const TimestampLayout = time.RFC3339Nano

// Document is a record addressed by a slash separated path such as
// "positions/P1/applications/A1".
type Document struct {
	ID         string
	Path       string
	Collection string
	Fields     map[string]interface{}
	CreateTime time.Time
	UpdateTime time.Time
}

// Store is the document store collaborator. Implementations make no promise of
// atomicity across documents.
type Store interface {
	GetDocument(ctx context.Context, collectionPath, id string) (Document, bool, error)
	StreamChildren(ctx context.Context, parentPath, subcollection string) ([]Document, error)
	Query(ctx context.Context, collectionPath, field string, value interface{}) ([]Document, error)
	Upsert(ctx context.Context, path string, fields map[string]interface{}) (Document, error)
	Update(ctx context.Context, path string, fields map[string]interface{}) (Document, error)
}

// Join builds a path from its segments, ignoring empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.Trim(strings.TrimSpace(segment), "/")
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "/")
}

// SplitPath separates a document path into its collection path and document id.
// Document paths have an even number of segments.
func SplitPath(path string) (string, string, error) {
	cleaned := Join(path)
	segments := strings.Split(cleaned, "/")
	if cleaned == "" || len(segments)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, segment := range segments {
		if segment == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	last := len(segments) - 1
	return strings.Join(segments[:last], "/"), segments[last], nil
}

func validCollectionPath(path string) bool {
	cleaned := Join(path)
	return cleaned != "" && len(strings.Split(cleaned, "/"))%2 == 1
}
