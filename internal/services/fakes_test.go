package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"surveyor/internal/draft"
	"surveyor/internal/graph"
	"surveyor/internal/infra"
	"surveyor/internal/models/db_models"
	"surveyor/internal/repositories"
	"surveyor/pkg/memcache"
	"surveyor/pkg/utils"
)

var errStoreDown = errors.New("store down")

// fakeStore is a non-transactional SyncStore that records every call.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	ops    []string

	// failOn makes the failAt-th call (1-based) of the named op fail.
	failOn string
	failAt int
	calls  map[string]int

	questionnaires map[int64]db_models.Questionnaire
	questions      map[int64]db_models.Question
	options        map[int64][]db_models.Option
	responses      []db_models.Response
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:         100,
		calls:          map[string]int{},
		questionnaires: map[int64]db_models.Questionnaire{},
		questions:      map[int64]db_models.Question{},
		options:        map[int64][]db_models.Option{},
	}
}

// seed stores a questionnaire with one question per entry of options.
func (f *fakeStore) seed(qid int64, name string, questions map[int64][]string) {
	f.questionnaires[qid] = db_models.Questionnaire{BaseModel: db_models.BaseModel{ID: qid}, Name: name, Description: name}
	for id, opts := range questions {
		kind := "single"
		if opts == nil {
			kind = "text"
		}
		f.questions[id] = db_models.Question{BaseModel: db_models.BaseModel{ID: id}, QuestionnaireID: qid, Text: fmt.Sprintf("question %d", id), Type: kind}
		for _, o := range opts {
			f.options[id] = append(f.options[id], db_models.Option{BaseModel: db_models.BaseModel{ID: f.id()}, QuestionID: id, Text: o})
		}
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) record(op, format string, args ...any) error {
	f.calls[op]++
	if f.failOn == op && f.calls[op] == f.failAt {
		return errStoreDown
	}
	f.ops = append(f.ops, op+" "+fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeStore) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeStore) CreateQuestionnaire(_ context.Context, q *db_models.Questionnaire) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateQuestionnaire", "%s", q.Name); err != nil {
		return err
	}
	q.ID = f.id()
	f.questionnaires[q.ID] = *q
	return nil
}

func (f *fakeStore) UpdateQuestionnaire(_ context.Context, id int64, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateQuestionnaire", "%d", id); err != nil {
		return err
	}
	row := f.questionnaires[id]
	row.Name, row.Description = name, description
	f.questionnaires[id] = row
	return nil
}

func (f *fakeStore) CreateQuestion(_ context.Context, q *db_models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateQuestion", "%s %s", q.Text, q.Type); err != nil {
		return err
	}
	q.ID = f.id()
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeStore) UpdateQuestion(_ context.Context, id int64, text, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateQuestion", "%d", id); err != nil {
		return err
	}
	row := f.questions[id]
	row.Text, row.Type = text, kind
	f.questions[id] = row
	return nil
}

func (f *fakeStore) DeleteQuestionsNotIn(_ context.Context, questionnaireID int64, keep []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteQuestionsNotIn", "%d %v", questionnaireID, keep); err != nil {
		return 0, err
	}
	kept := map[int64]bool{}
	for _, id := range keep {
		kept[id] = true
	}
	var n int64
	for id, q := range f.questions {
		if q.QuestionnaireID == questionnaireID && !kept[id] {
			delete(f.questions, id)
			delete(f.options, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeleteOptionsByQuestion(_ context.Context, questionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteOptionsByQuestion", "%d", questionID); err != nil {
		return err
	}
	delete(f.options, questionID)
	return nil
}

func (f *fakeStore) CreateOptions(_ context.Context, opts []db_models.Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := make([]string, 0, len(opts))
	for _, o := range opts {
		texts = append(texts, o.Text)
	}
	if err := f.record("CreateOptions", "%d [%s]", opts[0].QuestionID, strings.Join(texts, " ")); err != nil {
		return err
	}
	for _, o := range opts {
		o.ID = f.id()
		f.options[o.QuestionID] = append(f.options[o.QuestionID], o)
	}
	return nil
}

func (f *fakeStore) CreateResponses(_ context.Context, rows []db_models.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateResponses", "%d", len(rows)); err != nil {
		return err
	}
	f.responses = append(f.responses, rows...)
	return nil
}

func (f *fakeStore) questionsOf(qid int64) []db_models.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.Question
	for _, q := range f.questions {
		if q.QuestionnaireID == qid {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeStore) optionTexts(questionID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, o := range f.options[questionID] {
		out = append(out, o.Text)
	}
	return out
}

// txFakeStore adds all-or-nothing semantics on top of fakeStore.
type txFakeStore struct {
	*fakeStore
}

func (t txFakeStore) Transaction(ctx context.Context, fn func(store repositories.SyncStore) error) error {
	t.mu.Lock()
	qs := cloneMap(t.questionnaires)
	qu := cloneMap(t.questions)
	opts := make(map[int64][]db_models.Option, len(t.options))
	for k, v := range t.options {
		opts[k] = append([]db_models.Option(nil), v...)
	}
	t.mu.Unlock()

	if err := fn(t.fakeStore); err != nil {
		t.mu.Lock()
		t.questionnaires, t.questions, t.options = qs, qu, opts
		t.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// fixedClock is advanced by hand.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubQuestionnaires serves graphs from memory.
type stubQuestionnaires struct {
	QuestionnaireServiceInterface
	graphs map[int64]*graph.Questionnaire
}

func (s *stubQuestionnaires) LoadGraph(_ context.Context, id int64) (*graph.Questionnaire, error) {
	g, ok := s.graphs[id]
	if !ok {
		return nil, utils.ErrQuestionnaireNotFound
	}
	return g.Clone(), nil
}

func (s *stubQuestionnaires) LoadRunQuestions(ctx context.Context, id int64) ([]graph.Question, error) {
	g, err := s.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Questions, nil
}

func newDraftCache() (*draft.Cache, *memcache.Store) {
	store := memcache.NewStore()
	return draft.NewCache(store, "draft", nil), store
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}
