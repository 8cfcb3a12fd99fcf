package response_models

import "surveyor/internal/graph"

type QuestionnaireSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at"`
	QuestionCount int64  `json:"question_count"`
}

type RunView struct {
	QuestionnaireID int64            `json:"questionnaire_id"`
	Questions       []graph.Question `json:"questions"`
	Answers         graph.Answers    `json:"answers"`
	StartedAt       string           `json:"started_at"`
}

type SubmitResult struct {
	QuestionnaireID int64 `json:"questionnaire_id"`
	ResponsesCount  int   `json:"responses_count"`
	CompletionTime  int   `json:"completion_time"`
}
