package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyor/internal/draft"
	"surveyor/internal/graph"
	"surveyor/internal/models/db_models"
	"surveyor/pkg/utils"
)

type runFixture struct {
	runs      *RunService
	responses *fakeStore
	cache     *draft.Cache
	clock     *fixedClock
	stub      *stubQuestionnaires
}

func runQuestionnaire() *graph.Questionnaire {
	opts := func(qid int64, texts ...string) []graph.Option {
		out := make([]graph.Option, 0, len(texts))
		for _, t := range texts {
			out = append(out, graph.Option{Identity: graph.Unsaved{}, QuestionID: qid, Text: t})
		}
		return out
	}
	return &graph.Questionnaire{
		Identity: graph.Saved{ID: 42}, Name: "Colours", Description: "d",
		Questions: []graph.Question{
			{Identity: graph.Saved{ID: 7}, QuestionnaireID: 42, Text: "Pick one", Kind: graph.KindSingle, Options: opts(7, "A", "B", "C")},
			{Identity: graph.Saved{ID: 8}, QuestionnaireID: 42, Text: "Why?", Kind: graph.KindText},
			{Identity: graph.Saved{ID: 9}, QuestionnaireID: 42, Text: "Pick many", Kind: graph.KindMultiple, Options: opts(9, "Red", "Green", "Blue")},
		},
	}
}

func newRunFixture(t *testing.T) *runFixture {
	t.Helper()
	cache, _ := newDraftCache()
	clock := newFixedClock()
	stub := &stubQuestionnaires{graphs: map[int64]*graph.Questionnaire{42: runQuestionnaire()}}
	responses := newFakeStore()
	return &runFixture{
		runs:      NewRunService(stub, responses, cache, NewRunSessionRegistry(time.Hour, clock.Now), clock.Now, nil),
		responses: responses,
		cache:     cache,
		clock:     clock,
		stub:      stub,
	}
}

func TestRunSingleChoiceSubmission(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	view, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Len(t, view.Questions, 3)
	assert.Empty(t, view.Answers)
	assert.Equal(t, "2024-05-01T09:00:00Z", view.StartedAt)

	f.clock.Advance(42*time.Second + 900*time.Millisecond)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 7, graph.TextAnswer("C"))
	require.NoError(t, err)

	res, err := f.runs.Submit(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ResponsesCount)
	assert.Equal(t, 42, res.CompletionTime)

	assert.Equal(t, []db_models.Response{
		{QuestionnaireID: 42, QuestionID: 7, Answer: "C", CompletionTime: 42},
	}, f.responses.responses)

	_, ok := f.cache.LoadAnswers(ctx, f.cache.AnswersKey("s1", 42))
	assert.False(t, ok)

	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 7, graph.TextAnswer("A"))
	assert.ErrorIs(t, err, utils.ErrRunNotStarted)
}

func TestRunFlattensMultipleChoiceInQuestionOrder(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	_, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Second)

	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 9, graph.ChoicesAnswer("Red", "Blue"))
	require.NoError(t, err)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 8, graph.TextAnswer("because"))
	require.NoError(t, err)
	answers, err := f.runs.RecordAnswer(ctx, "s1", 42, 7, graph.TextAnswer("A"))
	require.NoError(t, err)
	assert.Len(t, answers, 3)

	_, err = f.runs.Submit(ctx, "s1", 42)
	require.NoError(t, err)

	rows := f.responses.responses
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{7, 8, 9}, []int64{rows[0].QuestionID, rows[1].QuestionID, rows[2].QuestionID})
	assert.Equal(t, "Red, Blue", rows[2].Answer)
	for _, r := range rows {
		assert.Equal(t, 10, r.CompletionTime)
	}
}

func TestRunRejectsBadAnswers(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	_, err := f.runs.RecordAnswer(ctx, "s1", 42, 7, graph.TextAnswer("A"))
	assert.ErrorIs(t, err, utils.ErrRunNotStarted)
	_, err = f.runs.RecordAnswer(ctx, "", 42, 7, graph.TextAnswer("A"))
	assert.ErrorIs(t, err, utils.ErrMissingSession)

	_, err = f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)

	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 99, graph.TextAnswer("A"))
	assert.ErrorIs(t, err, utils.ErrQuestionNotFound)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 9, graph.TextAnswer("Red"))
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 7, graph.ChoicesAnswer("A", "B"))
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = f.runs.Start(ctx, "s1", 5)
	assert.ErrorIs(t, err, utils.ErrQuestionnaireNotFound)
}

func TestRunResumesAnswersDraft(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	_, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 9, graph.ChoicesAnswer("Green"))
	require.NoError(t, err)

	restarted := NewRunService(f.stub, f.responses, f.cache, NewRunSessionRegistry(time.Hour, f.clock.Now), f.clock.Now, nil)
	view, err := restarted.Start(ctx, "s1", 42)
	require.NoError(t, err)
	require.Contains(t, view.Answers, int64(9))
	assert.True(t, view.Answers[9].IsMulti())
	assert.Equal(t, []string{"Green"}, view.Answers[9].Values())
}

func TestRunRestartKeepsAnswersAndResetsTimer(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	_, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 8, graph.TextAnswer("hi"))
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	view, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Len(t, view.Answers, 1)

	f.clock.Advance(5 * time.Second)
	res, err := f.runs.Submit(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, 5, res.CompletionTime)
}

func TestRunDropsAnswersToRemovedQuestions(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)
	key := f.cache.AnswersKey("s1", 42)
	f.cache.SaveAnswers(ctx, key, graph.Answers{8: graph.TextAnswer("kept"), 77: graph.TextAnswer("gone")})

	view, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, view.Answers.QuestionIDs())

	stored, ok := f.cache.LoadAnswers(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []int64{8}, stored.QuestionIDs())
}

func TestRunSubmitFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)
	f.responses.failOn, f.responses.failAt = "CreateResponses", 1

	_, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	_, err = f.runs.RecordAnswer(ctx, "s1", 42, 7, graph.TextAnswer("B"))
	require.NoError(t, err)

	_, err = f.runs.Submit(ctx, "s1", 42)
	var syncErr *utils.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, StepInsertResponses, syncErr.Step)

	answers, ok := f.cache.LoadAnswers(ctx, f.cache.AnswersKey("s1", 42))
	require.True(t, ok)
	assert.Equal(t, "B", answers[7].Flatten())

	res, err := f.runs.Submit(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ResponsesCount)
	assert.Len(t, f.responses.responses, 1)
}

func TestRunEmptySubmission(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	_, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	res, err := f.runs.Submit(ctx, "s1", 42)
	require.NoError(t, err)
	assert.Zero(t, res.ResponsesCount)
	assert.Empty(t, f.responses.responses)
}

func TestRunSessionsExpire(t *testing.T) {
	ctx := context.Background()
	f := newRunFixture(t)

	_, err := f.runs.Start(ctx, "s1", 42)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, f.runs.Sweep())

	_, err = f.runs.Submit(ctx, "s1", 42)
	assert.ErrorIs(t, err, utils.ErrRunNotStarted)
}
