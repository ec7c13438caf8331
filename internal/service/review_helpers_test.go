package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type scriptedReply struct {
	text string
	err  error
}

// scriptedGenerator replays replies in order and repeats the last one.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
}

func newScriptedGenerator(texts ...string) *scriptedGenerator {
	generator := &scriptedGenerator{}
	for _, text := range texts {
		generator.replies = append(generator.replies, scriptedReply{text: text})
	}
	return generator
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if len(g.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply.text, reply.err
}

type namedGenerator struct {
	*scriptedGenerator
	model string
}

func (g *namedGenerator) Model() string {
	return g.model
}

func (g *scriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// countingStore records how often the wrapped store is touched.
type countingStore struct {
	docstore.Store
	calls atomic.Int32
}

func (s *countingStore) GetDocument(ctx context.Context, collectionPath, id string) (docstore.Document, bool, error) {
	s.calls.Add(1)
	return s.Store.GetDocument(ctx, collectionPath, id)
}

func (s *countingStore) StreamChildren(ctx context.Context, parentPath, subcollection string) ([]docstore.Document, error) {
	s.calls.Add(1)
	return s.Store.StreamChildren(ctx, parentPath, subcollection)
}

func (s *countingStore) Query(ctx context.Context, collectionPath, field string, value interface{}) ([]docstore.Document, error) {
	s.calls.Add(1)
	return s.Store.Query(ctx, collectionPath, field, value)
}

func (s *countingStore) Update(ctx context.Context, path string, fields map[string]interface{}) (docstore.Document, error) {
	s.calls.Add(1)
	return s.Store.Update(ctx, path, fields)
}

func (s *countingStore) Upsert(ctx context.Context, path string, fields map[string]interface{}) (docstore.Document, error) {
	s.calls.Add(1)
	return s.Store.Upsert(ctx, path, fields)
}

type reviewFixture struct {
	store        *countingStore
	positions    repository.PositionRepository
	applications repository.ApplicationRepository
	reviews      repository.ReviewRepository
	validate     *validator.Validate
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, docstore.AutoMigrate(db))

	store := &countingStore{Store: docstore.NewGormStore(db)}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return &reviewFixture{
		store:        store,
		positions:    repository.NewPositionRepository(store, validate),
		applications: repository.NewApplicationRepository(store, validate, testLogger()),
		reviews:      repository.NewReviewRepository(store),
		validate:     validate,
	}
}

func (f *reviewFixture) seed(t *testing.T, path string, fields map[string]interface{}) {
	t.Helper()
	_, err := f.store.Store.Upsert(context.Background(), path, fields)
	require.NoError(t, err)
}

func (f *reviewFixture) seedPosition(t *testing.T, id, status string) {
	t.Helper()
	f.seed(t, "positions/"+id, map[string]interface{}{
		"name":        "Backend Developer",
		"description": "Build and operate the club's APIs.",
		"status":      status,
		"tags":        []interface{}{"go", "sql"},
		"questions": []interface{}{
			map[string]interface{}{"label": "Why you?", "type": "text"},
			map[string]interface{}{"label": "Resume", "type": "file"},
		},
	})
}

func (f *reviewFixture) seedApplication(t *testing.T, positionID, id, answer string) {
	t.Helper()
	f.seed(t, "positions/"+positionID+"/applications/"+id, map[string]interface{}{
		"name":      "Candidate " + id,
		"email":     strings.ToLower(id) + "@example.com",
		"status":    "pending",
		"questions": map[string]interface{}{"Why you?": answer, "Resume": "https://files.example.com/" + id},
	})
}

func reviewJSON(entries ...string) string {
	return `{"applications":[` + strings.Join(entries, ",") + `]}`
}

func reviewEntry(id string, rating int, comment string) string {
	return fmt.Sprintf(`{"application_id":%q,"rating":%d,"comment":%q}`, id, rating, comment)
}
