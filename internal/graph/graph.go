// Package graph holds the in-memory Questionnaire → Question → Option tree that an
// editing session owns. Every level carries an Identity telling the reconciler
// whether the entity already exists in the store.
package graph

import (
	"errors"
	"fmt"
)

var (
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrUnknownKind        = errors.New("unknown question kind")
)

// Identity is either Unsaved or Saved. Callers switch on the concrete type.
type Identity interface {
	isIdentity()
}

// Unsaved marks an entity the store has never seen.
type Unsaved struct{}

// Saved carries the store-generated identifier.
type Saved struct {
	ID int64
}

func (Unsaved) isIdentity() {}
func (Saved) isIdentity()   {}

// SavedAs returns Saved for a positive id and Unsaved otherwise, so a zero
// value never masquerades as a stored row.
func SavedAs(id int64) Identity {
	if id <= 0 {
		return Unsaved{}
	}
	return Saved{ID: id}
}

// IDOf reports the stored id, if any. A nil identity counts as unsaved.
func IDOf(i Identity) (int64, bool) {
	if s, ok := i.(Saved); ok {
		return s.ID, true
	}
	return 0, false
}

type Kind string

const (
	KindText     Kind = "text"
	KindSingle   Kind = "single"
	KindMultiple Kind = "multiple"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindText, KindSingle, KindMultiple:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// HasOptions is false for free-text questions, whose option list is ignored.
func (k Kind) HasOptions() bool {
	return k == KindSingle || k == KindMultiple
}

type Option struct {
	Identity   Identity
	QuestionID int64
	Text       string
}

type Question struct {
	Identity        Identity
	QuestionnaireID int64
	Text            string
	Kind            Kind
	Options         []Option
}

// ActiveOptions returns the options that are meaningful for the question's kind.
func (q Question) ActiveOptions() []Option {
	if !q.Kind.HasOptions() {
		return nil
	}
	return q.Options
}

func (q Question) OptionTexts() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		out = append(out, o.Text)
	}
	return out
}

type Questionnaire struct {
	Identity    Identity
	Name        string
	Description string
	Questions   []Question
}

func New() *Questionnaire {
	return &Questionnaire{Identity: Unsaved{}}
}

// Clone returns a deep copy so a commit can work on a snapshot.
func (q *Questionnaire) Clone() *Questionnaire {
	out := *q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.Options = append([]Option(nil), qu.Options...)
		out.Questions[i] = qu
	}
	return &out
}

func (q *Questionnaire) ID() (int64, bool) {
	return IDOf(q.Identity)
}
