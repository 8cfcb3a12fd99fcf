package repositories

import (
	"context"

	"gorm.io/gorm"

	"surveyor/internal/models/db_models"
)

type ResponseRepository interface {
	CreateResponses(ctx context.Context, rows []db_models.Response) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// CreateResponses writes all rows in a single batch insert.
func (r *responseRepository) CreateResponses(ctx context.Context, rows []db_models.Response) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
