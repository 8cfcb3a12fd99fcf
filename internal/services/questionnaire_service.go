package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"surveyor/internal/graph"
	"surveyor/internal/models/db_models"
	"surveyor/internal/models/response_models"
	"surveyor/internal/repositories"
	"surveyor/pkg/utils"
)

type QuestionnaireServiceInterface interface {
	LoadGraph(ctx context.Context, id int64) (*graph.Questionnaire, error)
	LoadRunQuestions(ctx context.Context, id int64) ([]graph.Question, error)
	List(ctx context.Context, sort repositories.CatalogSort) ([]response_models.QuestionnaireSummary, error)
	Delete(ctx context.Context, id int64) error
}

type QuestionnaireService struct {
	repo             repositories.QuestionnaireRepository
	fetchConcurrency int
}

func NewQuestionnaireService(repo repositories.QuestionnaireRepository, fetchConcurrency int) *QuestionnaireService {
	if fetchConcurrency < 1 {
		fetchConcurrency = 1
	}
	return &QuestionnaireService{repo: repo, fetchConcurrency: fetchConcurrency}
}

func dbError(err error) error {
	return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
}

func (s *QuestionnaireService) getQuestionnaire(ctx context.Context, id int64) (*db_models.Questionnaire, error) {
	row, err := s.repo.GetQuestionnaireByID(ctx, id)
	if err != nil {
		return nil, dbError(err)
	}
	if row == nil {
		return nil, utils.ErrQuestionnaireNotFound
	}
	return row, nil
}

// LoadGraph reads questionnaire, then questions, then fans out one options read
// per question.
func (s *QuestionnaireService) LoadGraph(ctx context.Context, id int64) (*graph.Questionnaire, error) {
	row, err := s.getQuestionnaire(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestionsByQuestionnaire(ctx, id)
	if err != nil {
		return nil, dbError(err)
	}

	options := make([][]db_models.Option, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchConcurrency)
	for i, qu := range questions {
		i, qu := i, qu
		g.Go(func() error {
			opts, err := s.repo.ListOptionsByQuestion(gctx, qu.ID)
			if err != nil {
				return err
			}
			options[i] = opts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dbError(err)
	}

	out := &graph.Questionnaire{
		Identity:    graph.SavedAs(row.ID),
		Name:        row.Name,
		Description: row.Description,
		Questions:   make([]graph.Question, 0, len(questions)),
	}
	for i, qu := range questions {
		out.Questions = append(out.Questions, toGraphQuestion(qu, options[i]))
	}
	return out, nil
}

// LoadRunQuestions reads all options for the questionnaire with one membership query.
func (s *QuestionnaireService) LoadRunQuestions(ctx context.Context, id int64) ([]graph.Question, error) {
	if _, err := s.getQuestionnaire(ctx, id); err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestionsByQuestionnaire(ctx, id)
	if err != nil {
		return nil, dbError(err)
	}

	ids := make([]int64, 0, len(questions))
	for _, qu := range questions {
		ids = append(ids, qu.ID)
	}
	opts, err := s.repo.ListOptionsByQuestions(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}

	byQuestion := make(map[int64][]db_models.Option, len(questions))
	for _, o := range opts {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	out := make([]graph.Question, 0, len(questions))
	for _, qu := range questions {
		out = append(out, toGraphQuestion(qu, byQuestion[qu.ID]))
	}
	return out, nil
}

func (s *QuestionnaireService) List(ctx context.Context, sort repositories.CatalogSort) ([]response_models.QuestionnaireSummary, error) {
	rows, err := s.repo.ListQuestionnaires(ctx, sort)
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]response_models.QuestionnaireSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, response_models.QuestionnaireSummary{
			ID:            r.ID,
			Name:          r.Name,
			Description:   r.Description,
			CreatedAt:     utils.FormatRFC3339(r.CreatedAt),
			QuestionCount: r.QuestionCount,
		})
	}
	return out, nil
}

func (s *QuestionnaireService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteQuestionnaire(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.ErrQuestionnaireNotFound
		}
		return dbError(err)
	}
	return nil
}

func toGraphQuestion(row db_models.Question, opts []db_models.Option) graph.Question {
	kind, err := graph.ParseKind(row.Type)
	if err != nil {
		kind = graph.KindText
	}
	qu := graph.Question{
		Identity:        graph.SavedAs(row.ID),
		QuestionnaireID: row.QuestionnaireID,
		Text:            row.Text,
		Kind:            kind,
		Options:         make([]graph.Option, 0, len(opts)),
	}
	for _, o := range opts {
		qu.Options = append(qu.Options, graph.Option{
			Identity:   graph.SavedAs(o.ID),
			QuestionID: o.QuestionID,
			Text:       o.Text,
		})
	}
	return qu
}
