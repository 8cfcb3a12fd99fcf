package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"surveyor/internal/draft"
	"surveyor/internal/graph"
)

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func pathIndex(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// draftRef reads :ref, which is either "new" or a questionnaire id.
func draftRef(c *gin.Context) (graph.Identity, bool) {
	if c.Param("ref") == draft.NewSentinel {
		return graph.Unsaved{}, true
	}
	id, ok := pathID(c, "ref")
	if !ok {
		return nil, false
	}
	return graph.Saved{ID: id}, true
}
