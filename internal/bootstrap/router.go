package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ambi360/ambi360-backend/config"
	adminhttp "github.com/ambi360/ambi360-backend/internal/admin/http"
	adminrepo "github.com/ambi360/ambi360-backend/internal/admin/repository"
	adminservice "github.com/ambi360/ambi360-backend/internal/admin/service"
	httpapi "github.com/ambi360/ambi360-backend/internal/api/http"
	"github.com/ambi360/ambi360-backend/internal/api/http/middleware"
	"github.com/ambi360/ambi360-backend/internal/auth"
	authhttp "github.com/ambi360/ambi360-backend/internal/auth/http"
	authmw "github.com/ambi360/ambi360-backend/internal/auth/middleware"
	authrepo "github.com/ambi360/ambi360-backend/internal/auth/repository"
	authservice "github.com/ambi360/ambi360-backend/internal/auth/service"
	"github.com/ambi360/ambi360-backend/internal/drafts"
	draftshttp "github.com/ambi360/ambi360-backend/internal/drafts/http"
	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/metrics"
	"github.com/ambi360/ambi360-backend/internal/tours/cache"
	tourshttp "github.com/ambi360/ambi360-backend/internal/tours/http"
	"github.com/ambi360/ambi360-backend/internal/tours/progress"
	toursrepo "github.com/ambi360/ambi360-backend/internal/tours/repository"
	"github.com/ambi360/ambi360-backend/internal/tours/service"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	DB          *DB
	// Redis is optional; without it scenes are not cached, unlock events
	// are not streamed and drafts live in process memory.
	Redis *redis.Client
}

// BuildRouter wires every handler. ctx bounds background housekeeping.
func BuildRouter(ctx context.Context, dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewHasher(cfg.Security.BcryptCost)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, dep.DB.Pool)
	if dep.Redis != nil {
		healthHandler.AddCheck("redis", httpapi.PingFunc(func(ctx context.Context) error {
			return dep.Redis.Ping(ctx).Err()
		}))
	}
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())

	// Stores
	userRepo := authrepo.NewUserRepository(dep.DB.SQL)
	projectRepo := toursrepo.NewProjectRepository(dep.DB.SQL)
	hotspotRepo := toursrepo.NewHotspotRepository(dep.DB.SQL)
	progressRepo := toursrepo.NewProgressRepository(dep.DB.SQL)
	accessLogRepo := toursrepo.NewAccessLogRepository(dep.DB.SQL)

	var (
		sceneCache service.SceneCache
		publisher  progress.EventPublisher
		subscriber tourshttp.UnlockSubscriber
		draftStore drafts.Store
	)
	if dep.Redis != nil {
		events := cache.NewUnlockEvents(dep.Redis)
		sceneCache = cache.NewSceneCache(dep.Redis)
		publisher = events
		subscriber = events
		draftStore = drafts.NewRedisStore(dep.Redis, cfg.App.DraftTTL)
	} else {
		logging.Warn().Msg("redis not configured: scene cache and unlock stream disabled, drafts kept in memory")
		draftStore = drafts.NewMemoryStore(cfg.App.DraftTTL)
	}

	// Services
	authService := authservice.NewAuthService(userRepo, tokens, hasher)
	hotspotService := service.NewHotspotService(hotspotRepo, projectRepo, sceneCache)
	projectService := service.NewProjectService(projectRepo, accessLogRepo, hasher, sceneCache)
	tracker := progress.NewTracker(progressRepo, publisher)
	adminService := adminservice.NewAdminService(adminrepo.NewStatsRepository(dep.DB.SQL), accessLogRepo, projectRepo, authService)
	draftService := drafts.NewService(draftStore, hotspotService)

	loginLimiter := middleware.NewRateLimiter("login", cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow)
	loginLimiter.StartCleanup(ctx, time.Minute)

	requireAuth := authmw.RequireAuth(tokens)
	requireAdmin := authmw.RequireAdmin()

	api := r.Group("/api/v1")

	authHandler := authhttp.New(authService, loginLimiter.Middleware())
	authGroup := api.Group("/auth")
	authHandler.Register(authGroup)
	authHandler.RegisterAuthenticated(authGroup.Group("", requireAuth))
	authHandler.RegisterAdmin(authGroup.Group("", requireAuth, requireAdmin))

	api.Use(authmw.OptionalAuth(tokens))
	tourshttp.New(hotspotService, projectService, tracker, subscriber, requireAuth, requireAdmin).Register(api)

	adminhttp.New(adminService).Register(api.Group("/admin", requireAuth, requireAdmin))
	draftshttp.New(draftService).Register(api.Group("/drafts", requireAuth, requireAdmin))

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}
