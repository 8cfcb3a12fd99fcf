package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// ChoiceSeparator joins multi-select answers into one stored string.
const ChoiceSeparator = ", "

var ErrInvalidAnswer = errors.New("answer must be a string or a list of strings")

// Answer is a single free-text/single-choice value or an ordered set of choices.
type Answer struct {
	values []string
	multi  bool
}

func TextAnswer(s string) Answer {
	return Answer{values: []string{s}}
}

func ChoicesAnswer(choices ...string) Answer {
	return Answer{values: append([]string{}, choices...), multi: true}
}

func (a Answer) IsMulti() bool {
	return a.multi
}

func (a Answer) Values() []string {
	return append([]string(nil), a.values...)
}

// Flatten renders the answer the way it is stored in the responses table.
func (a Answer) Flatten() string {
	if !a.multi {
		if len(a.values) == 0 {
			return ""
		}
		return a.values[0]
	}
	return strings.Join(a.values, ChoiceSeparator)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		return json.Marshal(a.values)
	}
	return json.Marshal(a.Flatten())
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidAnswer
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case '[':
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return ErrInvalidAnswer
		}
		*a = ChoicesAnswer(ss...)
	default:
		return ErrInvalidAnswer
	}
	return nil
}

// Answers maps question id to answer for one run.
type Answers map[int64]Answer

// QuestionIDs returns the answered question ids in ascending order.
func (a Answers) QuestionIDs() []int64 {
	ids := make([]int64, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = Answer{values: v.Values(), multi: v.multi}
	}
	return out
}
