package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"surveyor/internal/models/db_models"
)

var ErrNotFound = errors.New("record not found")

// SyncStore is the write surface the reconciler needs.
type SyncStore interface {
	CreateQuestionnaire(ctx context.Context, q *db_models.Questionnaire) error
	UpdateQuestionnaire(ctx context.Context, id int64, name, description string) error

	CreateQuestion(ctx context.Context, q *db_models.Question) error
	UpdateQuestion(ctx context.Context, id int64, text, kind string) error
	DeleteQuestionsNotIn(ctx context.Context, questionnaireID int64, keep []int64) (int64, error)

	DeleteOptionsByQuestion(ctx context.Context, questionID int64) error
	CreateOptions(ctx context.Context, opts []db_models.Option) error
}

// Transactor is implemented by stores that can run a SyncStore unit atomically.
type Transactor interface {
	Transaction(ctx context.Context, fn func(store SyncStore) error) error
}

type QuestionnaireRepository interface {
	SyncStore
	Transactor

	GetQuestionnaireByID(ctx context.Context, id int64) (*db_models.Questionnaire, error)
	ListQuestionnaires(ctx context.Context, sort CatalogSort) ([]db_models.QuestionnaireWithCount, error)
	DeleteQuestionnaire(ctx context.Context, id int64) error

	ListQuestionsByQuestionnaire(ctx context.Context, questionnaireID int64) ([]db_models.Question, error)
	ListOptionsByQuestion(ctx context.Context, questionID int64) ([]db_models.Option, error)
	ListOptionsByQuestions(ctx context.Context, questionIDs []int64) ([]db_models.Option, error)
}

type CatalogSortField string

const (
	SortByCreatedAt     CatalogSortField = "created_at"
	SortByName          CatalogSortField = "name"
	SortByQuestionCount CatalogSortField = "question_count"
)

type CatalogSort struct {
	Field CatalogSortField
	Desc  bool
}

var catalogColumns = map[CatalogSortField]clause.Column{
	SortByCreatedAt:     {Table: "questionnaires", Name: "created_at"},
	SortByName:          {Table: "questionnaires", Name: "name"},
	SortByQuestionCount: {Name: "question_count"},
}

type questionnaireRepository struct {
	db *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) QuestionnaireRepository {
	return &questionnaireRepository{db: db}
}

func (r *questionnaireRepository) Transaction(ctx context.Context, fn func(store SyncStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&questionnaireRepository{db: tx})
	})
}

func (r *questionnaireRepository) CreateQuestionnaire(ctx context.Context, q *db_models.Questionnaire) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error
}

func (r *questionnaireRepository) UpdateQuestionnaire(ctx context.Context, id int64, name, description string) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Questionnaire{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionnaireRepository) GetQuestionnaireByID(ctx context.Context, id int64) (*db_models.Questionnaire, error) {
	var q db_models.Questionnaire
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepository) ListQuestionnaires(ctx context.Context, sort CatalogSort) ([]db_models.QuestionnaireWithCount, error) {
	col, ok := catalogColumns[sort.Field]
	if !ok {
		col = catalogColumns[SortByCreatedAt]
	}

	var rows []db_models.QuestionnaireWithCount
	err := r.db.WithContext(ctx).
		Model(&db_models.Questionnaire{}).
		Select("questionnaires.id, questionnaires.name, questionnaires.description, questionnaires.created_at, COUNT(questions.id) AS question_count").
		Joins("LEFT JOIN questions ON questions.questionnaire_id = questionnaires.id").
		Group("questionnaires.id").
		Order(clause.OrderByColumn{Column: col, Desc: sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "questionnaires", Name: "id"}, Desc: sort.Desc}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteQuestionnaire relies on ON DELETE CASCADE for questions, options and responses.
func (r *questionnaireRepository) DeleteQuestionnaire(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db_models.Questionnaire{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionnaireRepository) CreateQuestion(ctx context.Context, q *db_models.Question) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error
}

func (r *questionnaireRepository) UpdateQuestion(ctx context.Context, id int64, text, kind string) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{"text": text, "type": kind})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionnaireRepository) ListQuestionsByQuestionnaire(ctx context.Context, questionnaireID int64) ([]db_models.Question, error) {
	var qs []db_models.Question
	err := r.db.WithContext(ctx).
		Where("questionnaire_id = ?", questionnaireID).
		Order("id ASC").
		Find(&qs).Error
	return qs, err
}

// DeleteQuestionsNotIn removes questions of a questionnaire whose ids are not in keep.
func (r *questionnaireRepository) DeleteQuestionsNotIn(ctx context.Context, questionnaireID int64, keep []int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("questionnaire_id = ?", questionnaireID)
	if len(keep) > 0 {
		tx = tx.Where("id NOT IN ?", keep)
	}
	res := tx.Delete(&db_models.Question{})
	return res.RowsAffected, res.Error
}

func (r *questionnaireRepository) DeleteOptionsByQuestion(ctx context.Context, questionID int64) error {
	return r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&db_models.Option{}).Error
}

func (r *questionnaireRepository) CreateOptions(ctx context.Context, opts []db_models.Option) error {
	if len(opts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&opts).Error
}

func (r *questionnaireRepository) ListOptionsByQuestion(ctx context.Context, questionID int64) ([]db_models.Option, error) {
	var opts []db_models.Option
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&opts).Error
	return opts, err
}

func (r *questionnaireRepository) ListOptionsByQuestions(ctx context.Context, questionIDs []int64) ([]db_models.Option, error) {
	if len(questionIDs) == 0 {
		return []db_models.Option{}, nil
	}
	var opts []db_models.Option
	err := r.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Order("question_id ASC, id ASC").
		Find(&opts).Error
	return opts, err
}
