package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// postgres SQLSTATE insufficient_privilege
const pgInsufficientPrivilege = "42501"

type documentRecord struct {
	Path       string            `gorm:"primaryKey;size:512"`
	Collection string            `gorm:"size:512;not null;index"`
	DocID      string            `gorm:"column:doc_id;size:191;not null"`
	Fields     datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRecord) TableName() string {
	return "documents"
}

// AutoMigrate creates or updates the documents table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&documentRecord{})
}

// GormStore implements Store on a relational database through gorm, keeping
// each document's fields in a JSON column.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore constructs a gorm backed document store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) GetDocument(ctx context.Context, collectionPath, id string) (Document, bool, error) {
	if strings.Contains(strings.Trim(id, "/"), "/") {
		return Document{}, false, fmt.Errorf("%w: id %q", ErrInvalidPath, id)
	}
	path := Join(collectionPath, id)
	if _, _, err := SplitPath(path); err != nil {
		return Document{}, false, err
	}

	var record documentRecord
	err := s.db.WithContext(ctx).Where("path = ?", path).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, translateError(err)
	}
	return record.toDocument(), true, nil
}

func (s *GormStore) StreamChildren(ctx context.Context, parentPath, subcollection string) ([]Document, error) {
	collection := Join(parentPath, subcollection)
	if !validCollectionPath(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}

	var records []documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC").
		Order("path ASC").
		Find(&records).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDocuments(records), nil
}

func (s *GormStore) Query(ctx context.Context, collectionPath, field string, value interface{}) ([]Document, error) {
	collection := Join(collectionPath)
	if !validCollectionPath(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	if field == "" {
		return nil, errors.New("query field is required")
	}

	var records []documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Where(datatypes.JSONQuery("fields").Equals(value, field)).
		Order("path ASC").
		Find(&records).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDocuments(records), nil
}

// Upsert merges fields into the document at path, creating it when absent.
// Fields not named keep their stored values.
func (s *GormStore) Upsert(ctx context.Context, path string, fields map[string]interface{}) (Document, error) {
	return s.write(ctx, path, fields, true)
}

// Update merges fields into the existing document at path and returns
// ErrNotFound when there is none.
func (s *GormStore) Update(ctx context.Context, path string, fields map[string]interface{}) (Document, error) {
	return s.write(ctx, path, fields, false)
}

// write returns the document as read back after the write, so field values
// have the same types as on any other read.
func (s *GormStore) write(ctx context.Context, path string, fields map[string]interface{}, create bool) (Document, error) {
	collection, id, err := SplitPath(path)
	if err != nil {
		return Document{}, err
	}
	path = Join(collection, id)
	now := s.now().UTC()

	var stored documentRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record documentRecord
		lookupErr := tx.Where("path = ?", path).Take(&record).Error
		exists := true
		switch {
		case errors.Is(lookupErr, gorm.ErrRecordNotFound) && !create:
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			exists = false
			record = documentRecord{
				Path:       path,
				Collection: collection,
				DocID:      id,
				CreatedAt:  now,
			}
		case lookupErr != nil:
			return lookupErr
		}

		if record.Fields == nil {
			record.Fields = datatypes.JSONMap{}
		}
		for key, value := range fields {
			record.Fields[key] = resolveValue(value, now)
		}
		record.UpdatedAt = now

		var saveErr error
		if exists {
			saveErr = tx.Save(&record).Error
		} else {
			saveErr = tx.Create(&record).Error
		}
		if saveErr != nil {
			return saveErr
		}
		return tx.Where("path = ?", path).Take(&stored).Error
	})
	if err != nil {
		return Document{}, translateError(err)
	}
	return stored.toDocument(), nil
}

func resolveValue(value interface{}, now time.Time) interface{} {
	switch v := value.(type) {
	case serverTimestamp:
		return now.Format(TimestampLayout)
	case time.Time:
		return v.UTC().Format(TimestampLayout)
	default:
		return value
	}
}

func (r documentRecord) toDocument() Document {
	fields := make(map[string]interface{}, len(r.Fields))
	for key, value := range r.Fields {
		fields[key] = value
	}
	return Document{
		ID:         r.DocID,
		Path:       r.Path,
		Collection: r.Collection,
		Fields:     fields,
		CreateTime: r.CreatedAt,
		UpdateTime: r.UpdatedAt,
	}
}

func toDocuments(records []documentRecord) []Document {
	documents := make([]Document, 0, len(records))
	for _, record := range records {
		documents = append(documents, record.toDocument())
	}
	return documents
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInsufficientPrivilege {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, pgErr.Message)
	}
	return err
}
