package db_models

// Question.Type holds one of "text", "single", "multiple".
type Question struct {
	BaseModel
	QuestionnaireID int64  `gorm:"not null;index" json:"questionnaire_id"`
	Text            string `gorm:"type:text;not null" json:"text"`
	Type            string `gorm:"column:type;type:varchar(16);not null" json:"type"`

	Questionnaire *Questionnaire `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Question) TableName() string { return "questions" }
