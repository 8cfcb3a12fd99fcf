package request_models

import "surveyor/internal/graph"

// AnswerRequest carries a string for text/single questions or a list for multiple.
type AnswerRequest struct {
	Value *graph.Answer `json:"value"`
}
