package di

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"survey_backend/internal/app/router"
	authadapters "survey_backend/internal/feature/auth/adapters"
	authhandler "survey_backend/internal/feature/auth/transport/handler"
	authusecase "survey_backend/internal/feature/auth/usecase"
	surveyhandler "survey_backend/internal/feature/surveys/transport/handler"
	surveyusecase "survey_backend/internal/feature/surveys/usecase"
	"survey_backend/internal/platform/config"
	platformhandler "survey_backend/internal/platform/http/handler"
	jwtmw "survey_backend/internal/platform/jwt"
	"survey_backend/internal/shared/ratelimiter"
)

// AdminSeeder creates the bootstrap admin account.
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

// App is the assembled HTTP application.
type App struct {
	Router *gin.Engine
	Admins AdminSeeder
}

// NewApp wires repositories, usecases and handlers. rdb may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	entryRepo, entryCache := NewEntryRepository(rdb, db, cfg.Redis.CacheTTL())

	// Usecase
	jwtGen := jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration())
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen, entryCache)
	entryUC := surveyusecase.NewEntryUsecase(entryRepo, surveyusecase.NewEntryValidator(cfg.Survey.PhoneDefaultRegion))

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	entryH := surveyhandler.NewEntryHandler(entryUC)

	r := router.NewRouter(
		authH,
		entryH,
		platformhandler.Health(sqlDB),
		ratelimiter.Middleware(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst),
		cfg.Auth.JWTSecret,
	)
	return &App{Router: r, Admins: authUC}, nil
}
