package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/eduquiz/grading-service/internal/models"
)

// questionSetTTL bounds staleness when an invalidation is missed.
const questionSetTTL = 15 * time.Minute

// QuestionCache caches each quiz's complete ordered question set. Grading
// reads the full set on every submission and every manual grade, so this is
// the hottest read path in the service.
type QuestionCache struct {
	cache CacheService
}

func NewQuestionCache(cache CacheService) *QuestionCache {
	return &QuestionCache{cache: cache}
}

func questionSetKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:questions", quizID)
}

// Get returns the cached question set for a quiz, or ErrCacheMiss.
func (c *QuestionCache) Get(ctx context.Context, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := c.cache.Get(ctx, questionSetKey(quizID), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Set stores a quiz's question set.
func (c *QuestionCache) Set(ctx context.Context, quizID uint, questions []*models.Question) error {
	return c.cache.Set(ctx, questionSetKey(quizID), questions, questionSetTTL)
}

// Invalidate drops the cached set after the quiz's questions change.
func (c *QuestionCache) Invalidate(ctx context.Context, quizID uint) error {
	return c.cache.Delete(ctx, questionSetKey(quizID))
}
