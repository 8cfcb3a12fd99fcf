package request_models

// UpdateDraftRequest changes questionnaire metadata. Omitted fields stay as they are.
type UpdateDraftRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddQuestionRequest struct {
	Type string `json:"type" binding:"required,oneof=text single multiple"`
	Text string `json:"text"`
}

type UpdateQuestionRequest struct {
	Text *string `json:"text"`
	Type *string `json:"type" binding:"omitempty,oneof=text single multiple"`
}

type OptionRequest struct {
	Text string `json:"text"`
}
