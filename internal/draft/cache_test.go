package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyor/internal/graph"
	"surveyor/pkg/memcache"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("down") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("down") }

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func backends(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"memory": memcache.NewStore(),
		"redis":  rs,
	}
}

func TestKeys(t *testing.T) {
	c := NewCache(memcache.NewStore(), "draft", nil)

	assert.Equal(t, "draft:s1:questionnaire:new", c.QuestionnaireKey("s1", graph.Unsaved{}))
	assert.Equal(t, "draft:s1:questionnaire:42", c.QuestionnaireKey("s1", graph.Saved{ID: 42}))
	assert.Equal(t, "draft:s1:answers:42", c.AnswersKey("s1", 42))
}

func TestQuestionnaireDraftLifecycle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := NewCache(store, "draft", nil)
			key := c.QuestionnaireKey("s1", graph.Unsaved{})

			_, ok := c.LoadQuestionnaire(ctx, key)
			assert.False(t, ok)

			q := graph.New()
			q.Rename("Survey")
			i, _ := q.AddQuestion(graph.KindMultiple)
			_ = q.SetQuestionText(i, "Colours?")
			_, _ = q.AddOption(i, "Red")

			c.SaveQuestionnaire(ctx, key, q)
			q.Rename("Survey v2")
			c.SaveQuestionnaire(ctx, key, q)

			got, ok := c.LoadQuestionnaire(ctx, key)
			require.True(t, ok)
			assert.Equal(t, "Survey v2", got.Name)
			assert.Equal(t, graph.KindMultiple, got.Questions[0].Kind)
			assert.Equal(t, []string{"Red"}, got.Questions[0].OptionTexts())

			c.Clear(ctx, key)
			c.Clear(ctx, key)
			_, ok = c.LoadQuestionnaire(ctx, key)
			assert.False(t, ok)
		})
	}
}

func TestAnswersDraftResumesExactMap(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "draft:s1:answers:42"

			want := graph.Answers{
				7: graph.TextAnswer("C"),
				8: graph.ChoicesAnswer("Red", "Blue"),
			}
			NewCache(store, "draft", nil).SaveAnswers(ctx, key, want)

			// a fresh cache over the same backend stands in for a reloaded session
			got, ok := NewCache(store, "draft", nil).LoadAnswers(ctx, key)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestUnreadableDraftIsDiscarded(t *testing.T) {
	ctx := context.Background()
	store := memcache.NewStore()
	require.NoError(t, store.Set(ctx, "k", "{not json"))

	c := NewCache(store, "draft", nil)
	_, ok := c.LoadQuestionnaire(ctx, "k")
	assert.False(t, ok)

	_, exists, _ := store.Get(ctx, "k")
	assert.False(t, exists)
}

func TestBackendFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	c := NewCache(failingStore{}, "draft", nil)

	assert.NotPanics(t, func() {
		c.SaveAnswers(ctx, "k", graph.Answers{1: graph.TextAnswer("x")})
		c.Clear(ctx, "k")
	})
	_, ok := c.LoadAnswers(ctx, "k")
	assert.False(t, ok)
}

func TestRedisStoreHasNoExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, store.Set(context.Background(), "k", "v"))
	assert.Equal(t, 0, int(mr.TTL("k")))
}
