package db_models

type Option struct {
	BaseModel
	QuestionID int64  `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`

	Question *Question `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Option) TableName() string { return "options" }
