// Package draft mirrors in-progress edits and answers into a key/value store so
// an interrupted session can resume. The mirror is never authoritative: writes
// are fire-and-forget and unreadable entries count as absent.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"surveyor/internal/graph"
)

// NewSentinel is the key segment for a questionnaire that has no id yet.
const NewSentinel = "new"

var ErrCacheParse = errors.New("cached draft could not be parsed")

type Cache struct {
	store  Store
	prefix string
	log    *zap.Logger
}

func NewCache(store Store, prefix string, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, prefix: prefix, log: log.Named("draft")}
}

// QuestionnaireKey addresses the editing draft for a session.
func (c *Cache) QuestionnaireKey(session string, id graph.Identity) string {
	ref := NewSentinel
	if qid, ok := graph.IDOf(id); ok {
		ref = strconv.FormatInt(qid, 10)
	}
	return fmt.Sprintf("%s:%s:questionnaire:%s", c.prefix, session, ref)
}

// AnswersKey addresses the run draft for a session.
func (c *Cache) AnswersKey(session string, questionnaireID int64) string {
	return fmt.Sprintf("%s:%s:answers:%d", c.prefix, session, questionnaireID)
}

func (c *Cache) LoadQuestionnaire(ctx context.Context, key string) (*graph.Questionnaire, bool) {
	var q graph.Questionnaire
	if !c.load(ctx, key, &q) {
		return nil, false
	}
	return &q, true
}

func (c *Cache) SaveQuestionnaire(ctx context.Context, key string, q *graph.Questionnaire) {
	c.save(ctx, key, q)
}

func (c *Cache) LoadAnswers(ctx context.Context, key string) (graph.Answers, bool) {
	var a graph.Answers
	if !c.load(ctx, key, &a) {
		return nil, false
	}
	if a == nil {
		a = graph.Answers{}
	}
	return a, true
}

func (c *Cache) SaveAnswers(ctx context.Context, key string, a graph.Answers) {
	c.save(ctx, key, a)
}

// Clear removes a draft. Missing keys are fine.
func (c *Cache) Clear(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Warn("draft clear failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) load(ctx context.Context, key string, into any) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("draft read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		c.log.Debug("discarding unreadable draft", zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", ErrCacheParse, err)))
		c.Clear(ctx, key)
		return false
	}
	return true
}

func (c *Cache) save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("draft encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, string(b)); err != nil {
		c.log.Warn("draft write failed", zap.String("key", key), zap.Error(err))
	}
}
