package graph

import "encoding/json"

// Wire shapes. A missing or null "id" decodes as Unsaved.

type optionJSON struct {
	ID         *int64 `json:"id"`
	QuestionID int64  `json:"question_id,omitempty"`
	Text       string `json:"text"`
}

type questionJSON struct {
	ID              *int64   `json:"id"`
	QuestionnaireID int64    `json:"questionnaire_id,omitempty"`
	Text            string   `json:"text"`
	Type            Kind     `json:"type"`
	Options         []Option `json:"options"`
}

type questionnaireJSON struct {
	ID          *int64     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

func idPtr(i Identity) *int64 {
	if id, ok := IDOf(i); ok {
		return &id
	}
	return nil
}

func fromPtr(p *int64) Identity {
	if p == nil {
		return Unsaved{}
	}
	return SavedAs(*p)
}

func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(optionJSON{ID: idPtr(o.Identity), QuestionID: o.QuestionID, Text: o.Text})
}

func (o *Option) UnmarshalJSON(b []byte) error {
	var w optionJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*o = Option{Identity: fromPtr(w.ID), QuestionID: w.QuestionID, Text: w.Text}
	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	opts := q.Options
	if opts == nil {
		opts = []Option{}
	}
	return json.Marshal(questionJSON{
		ID:              idPtr(q.Identity),
		QuestionnaireID: q.QuestionnaireID,
		Text:            q.Text,
		Type:            q.Kind,
		Options:         opts,
	})
}

func (q *Question) UnmarshalJSON(b []byte) error {
	var w questionJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kind, err := ParseKind(string(w.Type))
	if err != nil {
		return err
	}
	*q = Question{
		Identity:        fromPtr(w.ID),
		QuestionnaireID: w.QuestionnaireID,
		Text:            w.Text,
		Kind:            kind,
		Options:         w.Options,
	}
	return nil
}

func (q Questionnaire) MarshalJSON() ([]byte, error) {
	qs := q.Questions
	if qs == nil {
		qs = []Question{}
	}
	return json.Marshal(questionnaireJSON{
		ID:          idPtr(q.Identity),
		Name:        q.Name,
		Description: q.Description,
		Questions:   qs,
	})
}

func (q *Questionnaire) UnmarshalJSON(b []byte) error {
	var w questionnaireJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*q = Questionnaire{
		Identity:    fromPtr(w.ID),
		Name:        w.Name,
		Description: w.Description,
		Questions:   w.Questions,
	}
	return nil
}
