package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"surveyor/internal/draft"
	"surveyor/internal/graph"
	"surveyor/pkg/utils"
)

type EditorServiceInterface interface {
	Open(ctx context.Context, session string, ref graph.Identity) (*graph.Questionnaire, error)
	Mutate(ctx context.Context, session string, ref graph.Identity, fn func(q *graph.Questionnaire) error) (*graph.Questionnaire, error)
	AddQuestion(ctx context.Context, session string, ref graph.Identity, kind graph.Kind, text string) (*graph.Questionnaire, error)
	Save(ctx context.Context, session string, ref graph.Identity) (*graph.Questionnaire, error)
	Discard(ctx context.Context, session string, ref graph.Identity) error
	Sweep() int
}

// editSession owns the authoritative graph while an author is editing.
type editSession struct {
	mu         sync.Mutex
	draftKey   string
	graph      *graph.Questionnaire
	committing bool
}

type EditorService struct {
	reconciler     ReconciliationServiceInterface
	questionnaires QuestionnaireServiceInterface
	cache          *draft.Cache
	sessions       *SessionRegistry[*editSession]
	log            *zap.Logger
}

func NewEditorService(
	reconciler ReconciliationServiceInterface,
	questionnaires QuestionnaireServiceInterface,
	cache *draft.Cache,
	sessions *SessionRegistry[*editSession],
	log *zap.Logger,
) *EditorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EditorService{
		reconciler:     reconciler,
		questionnaires: questionnaires,
		cache:          cache,
		sessions:       sessions,
		log:            log.Named("editor"),
	}
}

// NewEditSessionRegistry exists so wiring code outside the package can build
// the registry without naming editSession.
func NewEditSessionRegistry(ttl time.Duration, now utils.Clock) *SessionRegistry[*editSession] {
	return NewSessionRegistry[*editSession](ttl, now)
}

// acquire returns the live session, resuming from the draft or the store when
// none is open. The draft is only consulted when no live session exists.
func (s *EditorService) acquire(ctx context.Context, session string, ref graph.Identity) (*editSession, error) {
	if session == "" {
		return nil, utils.ErrMissingSession
	}
	if ref == nil {
		ref = graph.Unsaved{}
	}

	key := s.cache.QuestionnaireKey(session, ref)
	if es, ok := s.sessions.Get(key); ok {
		return es, nil
	}

	g, resumed := s.cache.LoadQuestionnaire(ctx, key)
	switch {
	case resumed:
		// a "new" draft may carry an id assigned by an earlier partial save
		if _, saved := graph.IDOf(ref); saved || g.Identity == nil {
			g.Identity = ref
		}
		s.log.Debug("resumed draft", zap.String("key", key))
	default:
		if id, saved := graph.IDOf(ref); saved {
			loaded, err := s.questionnaires.LoadGraph(ctx, id)
			if err != nil {
				return nil, err
			}
			g = loaded
		} else {
			g = graph.New()
		}
	}

	return s.sessions.PutIfAbsent(key, &editSession{draftKey: key, graph: g}), nil
}

func (s *EditorService) Open(ctx context.Context, session string, ref graph.Identity) (*graph.Questionnaire, error) {
	es, err := s.acquire(ctx, session, ref)
	if err != nil {
		return nil, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.graph.Clone(), nil
}

// Mutate applies fn to a copy of the graph, adopts it, and mirrors it to the draft.
func (s *EditorService) Mutate(ctx context.Context, session string, ref graph.Identity, fn func(q *graph.Questionnaire) error) (*graph.Questionnaire, error) {
	es, err := s.acquire(ctx, session, ref)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if es.committing {
		return nil, utils.ErrCommitInFlight
	}

	next := es.graph.Clone()
	if err := fn(next); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidInput, err)
	}
	es.graph = next
	s.cache.SaveQuestionnaire(ctx, es.draftKey, next)
	return next.Clone(), nil
}

// AddQuestion appends a question. In the builder flow choice questions start
// with one blank option.
func (s *EditorService) AddQuestion(ctx context.Context, session string, ref graph.Identity, kind graph.Kind, text string) (*graph.Questionnaire, error) {
	_, editing := graph.IDOf(ref)
	return s.Mutate(ctx, session, ref, func(q *graph.Questionnaire) error {
		i, err := q.AddQuestion(kind)
		if err != nil {
			return err
		}
		if err := q.SetQuestionText(i, text); err != nil {
			return err
		}
		if !editing && kind.HasOptions() {
			_, err = q.AddOption(i, "")
		}
		return err
	})
}

// Save commits the session graph. Mutations are refused while it runs. On
// success the draft, the run draft of the same questionnaire and the live
// session are dropped; on failure all of them are kept for a retry.
func (s *EditorService) Save(ctx context.Context, session string, ref graph.Identity) (*graph.Questionnaire, error) {
	if ref == nil {
		ref = graph.Unsaved{}
	}
	es, err := s.acquire(ctx, session, ref)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	if es.committing {
		es.mu.Unlock()
		return nil, utils.ErrCommitInFlight
	}
	snapshot := es.graph.Clone()
	// a "new" draft keeps the builder rules after a partial save gave it an id
	if err := s.reconciler.Check(ref, snapshot); err != nil {
		es.mu.Unlock()
		return nil, err
	}
	es.committing = true
	es.mu.Unlock()

	saved, err := s.reconciler.Commit(ctx, snapshot.Identity, snapshot)

	es.mu.Lock()
	defer es.mu.Unlock()
	es.committing = false

	if err != nil {
		if saved != nil {
			es.graph = saved
			s.cache.SaveQuestionnaire(ctx, es.draftKey, saved)
		}
		return nil, err
	}

	s.cache.Clear(ctx, es.draftKey)
	if id, ok := saved.ID(); ok {
		s.cache.Clear(ctx, s.cache.AnswersKey(session, id))
	}
	s.sessions.Delete(es.draftKey)
	return saved.Clone(), nil
}

// Discard abandons the session and its draft.
func (s *EditorService) Discard(ctx context.Context, session string, ref graph.Identity) error {
	if session == "" {
		return utils.ErrMissingSession
	}
	if ref == nil {
		ref = graph.Unsaved{}
	}
	key := s.cache.QuestionnaireKey(session, ref)

	if es, ok := s.sessions.Get(key); ok {
		es.mu.Lock()
		defer es.mu.Unlock()
		if es.committing {
			return utils.ErrCommitInFlight
		}
	}
	s.sessions.Delete(key)
	s.cache.Clear(ctx, key)
	return nil
}

func (s *EditorService) Sweep() int {
	return s.sessions.Sweep()
}
