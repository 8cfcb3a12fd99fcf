package graph

import "fmt"

func (q *Questionnaire) Rename(name string) {
	q.Name = name
}

func (q *Questionnaire) Describe(description string) {
	q.Description = description
}

// AddQuestion appends an empty question and returns its position.
func (q *Questionnaire) AddQuestion(kind Kind) (int, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return -1, err
	}
	qid, _ := q.ID()
	q.Questions = append(q.Questions, Question{
		Identity:        Unsaved{},
		QuestionnaireID: qid,
		Kind:            kind,
	})
	return len(q.Questions) - 1, nil
}

func (q *Questionnaire) RemoveQuestion(index int) error {
	if err := q.checkQuestion(index); err != nil {
		return err
	}
	q.Questions = append(q.Questions[:index], q.Questions[index+1:]...)
	return nil
}

func (q *Questionnaire) SetQuestionText(index int, text string) error {
	if err := q.checkQuestion(index); err != nil {
		return err
	}
	q.Questions[index].Text = text
	return nil
}

// SetQuestionKind keeps existing options; they are ignored while the kind is text.
func (q *Questionnaire) SetQuestionKind(index int, kind Kind) error {
	if err := q.checkQuestion(index); err != nil {
		return err
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	q.Questions[index].Kind = kind
	return nil
}

// AddOption appends an option to the question at index and returns its position.
func (q *Questionnaire) AddOption(index int, text string) (int, error) {
	if err := q.checkQuestion(index); err != nil {
		return -1, err
	}
	qu := &q.Questions[index]
	qid, _ := IDOf(qu.Identity)
	qu.Options = append(qu.Options, Option{Identity: Unsaved{}, QuestionID: qid, Text: text})
	return len(qu.Options) - 1, nil
}

func (q *Questionnaire) SetOptionText(index, optIndex int, text string) error {
	if err := q.checkOption(index, optIndex); err != nil {
		return err
	}
	q.Questions[index].Options[optIndex].Text = text
	return nil
}

func (q *Questionnaire) RemoveOption(index, optIndex int) error {
	if err := q.checkOption(index, optIndex); err != nil {
		return err
	}
	opts := q.Questions[index].Options
	q.Questions[index].Options = append(opts[:optIndex], opts[optIndex+1:]...)
	return nil
}

func (q *Questionnaire) checkQuestion(index int) error {
	if index < 0 || index >= len(q.Questions) {
		return fmt.Errorf("%w: question %d of %d", ErrPositionOutOfRange, index, len(q.Questions))
	}
	return nil
}

func (q *Questionnaire) checkOption(index, optIndex int) error {
	if err := q.checkQuestion(index); err != nil {
		return err
	}
	if n := len(q.Questions[index].Options); optIndex < 0 || optIndex >= n {
		return fmt.Errorf("%w: option %d of %d", ErrPositionOutOfRange, optIndex, n)
	}
	return nil
}
