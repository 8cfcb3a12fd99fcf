package db_models

// Response is one anonymous, append-only answer row. It follows its
// questionnaire on delete but outlives questions pruned by an edit, so
// question_id carries no foreign key.
type Response struct {
	BaseModel
	QuestionnaireID int64  `gorm:"not null;index" json:"questionnaire_id"`
	QuestionID      int64  `gorm:"not null;index" json:"question_id"`
	Answer          string `gorm:"type:text;not null" json:"answer"`
	CompletionTime  int    `gorm:"column:completion_time;not null" json:"completion_time"`

	Questionnaire *Questionnaire `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Response) TableName() string { return "responses" }
