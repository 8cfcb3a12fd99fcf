package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"surveyor/internal/draft"
	"surveyor/internal/graph"
	"surveyor/internal/models/db_models"
	"surveyor/internal/models/response_models"
	"surveyor/internal/repositories"
	"surveyor/pkg/utils"
)

const StepInsertResponses = "insert responses"

type RunServiceInterface interface {
	Start(ctx context.Context, session string, questionnaireID int64) (*response_models.RunView, error)
	RecordAnswer(ctx context.Context, session string, questionnaireID, questionID int64, answer graph.Answer) (graph.Answers, error)
	Submit(ctx context.Context, session string, questionnaireID int64) (*response_models.SubmitResult, error)
	// SubmitAnswers writes one response row per answer in a single batch and
	// returns how many rows were written.
	SubmitAnswers(ctx context.Context, questionnaireID int64, answers graph.Answers, elapsed int) (int, error)
	Sweep() int
}

type runSession struct {
	mu         sync.Mutex
	draftKey   string
	questions  []graph.Question
	kinds      map[int64]graph.Kind
	answers    graph.Answers
	startedAt  time.Time
	submitting bool
}

type RunService struct {
	questionnaires QuestionnaireServiceInterface
	responses      repositories.ResponseRepository
	cache          *draft.Cache
	sessions       *SessionRegistry[*runSession]
	now            utils.Clock
	log            *zap.Logger
}

func NewRunService(
	questionnaires QuestionnaireServiceInterface,
	responses repositories.ResponseRepository,
	cache *draft.Cache,
	sessions *SessionRegistry[*runSession],
	now utils.Clock,
	log *zap.Logger,
) *RunService {
	if now == nil {
		now = utils.SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RunService{
		questionnaires: questionnaires,
		responses:      responses,
		cache:          cache,
		sessions:       sessions,
		now:            now,
		log:            log.Named("run"),
	}
}

func NewRunSessionRegistry(ttl time.Duration, now utils.Clock) *SessionRegistry[*runSession] {
	return NewSessionRegistry[*runSession](ttl, now)
}

// Start loads the questions and (re)starts the timer. Answers already given in
// a live run are kept; otherwise the answers draft is resumed when present.
func (s *RunService) Start(ctx context.Context, session string, questionnaireID int64) (*response_models.RunView, error) {
	if session == "" {
		return nil, utils.ErrMissingSession
	}

	questions, err := s.questionnaires.LoadRunQuestions(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	kinds := make(map[int64]graph.Kind, len(questions))
	for _, qu := range questions {
		if id, ok := graph.IDOf(qu.Identity); ok {
			kinds[id] = qu.Kind
		}
	}

	key := s.cache.AnswersKey(session, questionnaireID)
	rs, live := s.sessions.Get(key)
	if !live {
		answers, resumed := s.cache.LoadAnswers(ctx, key)
		if !resumed {
			answers = graph.Answers{}
		}
		rs = s.sessions.PutIfAbsent(key, &runSession{draftKey: key, answers: answers})
		if resumed {
			s.log.Debug("resumed answers", zap.String("key", key), zap.Int("answers", len(answers)))
		}
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.submitting {
		return nil, utils.ErrCommitInFlight
	}

	// drop answers to questions removed since the draft was written
	stale := 0
	for id := range rs.answers {
		if _, ok := kinds[id]; !ok {
			delete(rs.answers, id)
			stale++
		}
	}
	if stale > 0 {
		s.cache.SaveAnswers(ctx, rs.draftKey, rs.answers)
	}
	rs.questions = questions
	rs.kinds = kinds
	rs.startedAt = s.now()

	return &response_models.RunView{
		QuestionnaireID: questionnaireID,
		Questions:       questions,
		Answers:         rs.answers.Clone(),
		StartedAt:       utils.FormatRFC3339(rs.startedAt),
	}, nil
}

func (s *RunService) live(session string, questionnaireID int64) (*runSession, error) {
	if session == "" {
		return nil, utils.ErrMissingSession
	}
	rs, ok := s.sessions.Get(s.cache.AnswersKey(session, questionnaireID))
	if !ok {
		return nil, utils.ErrRunNotStarted
	}
	return rs, nil
}

// RecordAnswer overwrites the answer to one question and mirrors the answer set
// to the draft. Multiple-choice questions take a list, the others a string.
func (s *RunService) RecordAnswer(ctx context.Context, session string, questionnaireID, questionID int64, answer graph.Answer) (graph.Answers, error) {
	rs, err := s.live(session, questionnaireID)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.submitting {
		return nil, utils.ErrCommitInFlight
	}

	kind, ok := rs.kinds[questionID]
	if !ok {
		return nil, utils.ErrQuestionNotFound
	}
	if answer.IsMulti() != (kind == graph.KindMultiple) {
		return nil, fmt.Errorf("%w: question %d of type %s cannot take this answer", utils.ErrInvalidInput, questionID, kind)
	}

	rs.answers[questionID] = answer
	s.cache.SaveAnswers(ctx, rs.draftKey, rs.answers)
	return rs.answers.Clone(), nil
}

// Submit records the run. On success the answers draft is cleared and the run
// ends; on failure both are kept so the respondent can submit again.
func (s *RunService) Submit(ctx context.Context, session string, questionnaireID int64) (*response_models.SubmitResult, error) {
	rs, err := s.live(session, questionnaireID)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	if rs.submitting {
		rs.mu.Unlock()
		return nil, utils.ErrCommitInFlight
	}
	rs.submitting = true
	elapsed := utils.ElapsedSeconds(rs.startedAt, s.now())
	answers := rs.answers.Clone()
	rs.mu.Unlock()

	n, err := s.SubmitAnswers(ctx, questionnaireID, answers, elapsed)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.submitting = false
	if err != nil {
		return nil, err
	}

	s.cache.Clear(ctx, rs.draftKey)
	s.sessions.Delete(rs.draftKey)
	return &response_models.SubmitResult{
		QuestionnaireID: questionnaireID,
		ResponsesCount:  n,
		CompletionTime:  elapsed,
	}, nil
}

func (s *RunService) SubmitAnswers(ctx context.Context, questionnaireID int64, answers graph.Answers, elapsed int) (int, error) {
	ids := answers.QuestionIDs()
	rows := make([]db_models.Response, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, db_models.Response{
			QuestionnaireID: questionnaireID,
			QuestionID:      id,
			Answer:          answers[id].Flatten(),
			CompletionTime:  elapsed,
		})
	}

	if err := s.responses.CreateResponses(ctx, rows); err != nil {
		syncErr := utils.NewSyncError(StepInsertResponses, -1, err)
		s.log.Warn("submit failed", zap.Int64("questionnaire_id", questionnaireID), zap.Error(syncErr))
		return 0, syncErr
	}

	s.log.Info("responses recorded",
		zap.Int64("questionnaire_id", questionnaireID),
		zap.Int("responses", len(rows)),
		zap.Int("completion_time", elapsed))
	return len(rows), nil
}

func (s *RunService) Sweep() int {
	return s.sessions.Sweep()
}
