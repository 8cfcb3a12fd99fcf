package services

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"surveyor/internal/graph"
	"surveyor/internal/models/db_models"
	"surveyor/internal/repositories"
	"surveyor/pkg/utils"
)

const (
	StepCreateQuestionnaire = "create questionnaire"
	StepUpdateQuestionnaire = "update questionnaire"
	StepUpdateQuestion      = "update question"
	StepDeleteOptions       = "delete options"
	StepInsertQuestion      = "insert question"
	StepInsertOptions       = "insert options"
	StepPruneQuestions      = "prune questions"
)

type ReconciliationServiceInterface interface {
	// Commit makes the store match q. id decides between the builder flow
	// (Unsaved) and the edit flow (Saved). On success the returned graph has
	// every questionnaire and question identity filled in. On a SyncError the
	// returned graph holds the identities assigned before the failure, or is nil
	// when the store rolled everything back.
	Commit(ctx context.Context, id graph.Identity, q *graph.Questionnaire) (*graph.Questionnaire, error)
	Check(id graph.Identity, q *graph.Questionnaire) error
}

type ReconciliationService struct {
	store                  repositories.SyncStore
	validate               *validator.Validate
	requireQuestionsOnEdit bool
	log                    *zap.Logger
}

func NewReconciliationService(store repositories.SyncStore, requireQuestionsOnEdit bool, log *zap.Logger) *ReconciliationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconciliationService{
		store:                  store,
		validate:               newCommitValidator(),
		requireQuestionsOnEdit: requireQuestionsOnEdit,
		log:                    log.Named("reconcile"),
	}
}

type questionCheck struct {
	Text string `json:"text" validate:"required"`
}

type commitCheck struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Questions   []questionCheck `json:"questions" validate:"dive"`
}

func newCommitValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Check runs the pre-save rules. The builder flow also needs at least one question.
func (s *ReconciliationService) Check(id graph.Identity, q *graph.Questionnaire) error {
	check := commitCheck{Name: q.Name, Description: q.Description}
	for _, qu := range q.Questions {
		check.Questions = append(check.Questions, questionCheck{Text: qu.Text})
	}

	var violations []utils.FieldViolation
	if err := s.validate.Struct(check); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		for _, fe := range ves {
			field := fe.Namespace()
			if i := strings.IndexByte(field, '.'); i >= 0 {
				field = field[i+1:]
			}
			violations = append(violations, utils.FieldViolation{Field: field, Rule: fe.Tag()})
		}
	}

	_, saved := graph.IDOf(id)
	if (!saved || s.requireQuestionsOnEdit) && len(q.Questions) == 0 {
		violations = append(violations, utils.FieldViolation{Field: "questions", Rule: "min=1"})
	}

	if len(violations) > 0 {
		return &utils.ValidationError{Violations: violations}
	}
	return nil
}

func (s *ReconciliationService) Commit(ctx context.Context, id graph.Identity, q *graph.Questionnaire) (*graph.Questionnaire, error) {
	if id == nil {
		id = graph.Unsaved{}
	}
	if err := s.Check(id, q); err != nil {
		return nil, err
	}

	out := q.Clone()
	out.Identity = id

	var err error
	tx, transactional := s.store.(repositories.Transactor)
	if transactional {
		err = tx.Transaction(ctx, func(store repositories.SyncStore) error {
			return s.reconcile(ctx, store, out)
		})
	} else {
		err = s.reconcile(ctx, s.store, out)
	}

	if err != nil {
		var syncErr *utils.SyncError
		if !errors.As(err, &syncErr) {
			err = utils.NewSyncError("commit", -1, err)
		}
		s.log.Warn("commit failed", zap.Bool("transactional", transactional), zap.Error(err))
		if transactional {
			return nil, err
		}
		return out, err
	}

	qid, _ := out.ID()
	s.log.Info("questionnaire committed", zap.Int64("questionnaire_id", qid), zap.Int("questions", len(out.Questions)))
	return out, nil
}

// reconcile writes out in graph order and adopts new identities into it.
func (s *ReconciliationService) reconcile(ctx context.Context, store repositories.SyncStore, out *graph.Questionnaire) error {
	var qid int64
	editing := false

	switch id := out.Identity.(type) {
	case graph.Saved:
		if err := store.UpdateQuestionnaire(ctx, id.ID, out.Name, out.Description); err != nil {
			return utils.NewSyncError(StepUpdateQuestionnaire, -1, err)
		}
		qid = id.ID
		editing = true
	default:
		row := &db_models.Questionnaire{Name: out.Name, Description: out.Description}
		if err := store.CreateQuestionnaire(ctx, row); err != nil {
			return utils.NewSyncError(StepCreateQuestionnaire, -1, err)
		}
		qid = row.ID
		out.Identity = graph.Saved{ID: qid}
	}

	kept := make([]int64, 0, len(out.Questions))
	for i := range out.Questions {
		qu := &out.Questions[i]
		qu.QuestionnaireID = qid

		var questionID int64
		switch id := qu.Identity.(type) {
		case graph.Saved:
			if err := store.UpdateQuestion(ctx, id.ID, qu.Text, string(qu.Kind)); err != nil {
				return utils.NewSyncError(StepUpdateQuestion, i, err)
			}
			if err := store.DeleteOptionsByQuestion(ctx, id.ID); err != nil {
				return utils.NewSyncError(StepDeleteOptions, i, err)
			}
			questionID = id.ID
		default:
			row := &db_models.Question{QuestionnaireID: qid, Text: qu.Text, Type: string(qu.Kind)}
			if err := store.CreateQuestion(ctx, row); err != nil {
				return utils.NewSyncError(StepInsertQuestion, i, err)
			}
			questionID = row.ID
			qu.Identity = graph.Saved{ID: questionID}
		}
		kept = append(kept, questionID)

		for j := range qu.Options {
			qu.Options[j].QuestionID = questionID
		}
		active := qu.ActiveOptions()
		if len(active) == 0 {
			continue
		}
		rows := make([]db_models.Option, 0, len(active))
		for _, o := range active {
			rows = append(rows, db_models.Option{QuestionID: questionID, Text: o.Text})
		}
		if err := store.CreateOptions(ctx, rows); err != nil {
			return utils.NewSyncError(StepInsertOptions, i, err)
		}
	}

	if editing {
		pruned, err := store.DeleteQuestionsNotIn(ctx, qid, kept)
		if err != nil {
			return utils.NewSyncError(StepPruneQuestions, -1, err)
		}
		if pruned > 0 {
			s.log.Info("pruned removed questions", zap.Int64("questionnaire_id", qid), zap.Int64("count", pruned))
		}
	}
	return nil
}
