package db_models

import "time"

type Questionnaire struct {
	BaseModel
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Questionnaire) TableName() string { return "questionnaires" }

// QuestionnaireWithCount is a catalog row.
type QuestionnaireWithCount struct {
	ID            int64     `gorm:"column:id"`
	Name          string    `gorm:"column:name"`
	Description   string    `gorm:"column:description"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	QuestionCount int64     `gorm:"column:question_count"`
}
