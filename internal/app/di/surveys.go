// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authusecase "survey_backend/internal/feature/auth/usecase"
	surveyadapters "survey_backend/internal/feature/surveys/adapters"
	surveyusecase "survey_backend/internal/feature/surveys/usecase"
	"survey_backend/internal/platform/cache"
)

// NewEntryRepository creates the EntryRepository used by the surveys usecase.
// If Redis is available, list queries are cached and the returned invalidator
// clears them; otherwise the GORM repository is used directly and the invalidator is nil.
func NewEntryRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) (surveyusecase.EntryRepository, authusecase.EntryCacheInvalidator) {
	repo := surveyadapters.NewEntryRepository(db)
	if rdb == nil {
		return repo, nil
	}
	cached := cache.NewCachingEntryRepository(rdb, ttl, repo, "surveys")
	return cached, cached
}
