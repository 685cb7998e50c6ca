package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/alumniconnect/platform/internal/app/controllers"
	appMigrations "github.com/alumniconnect/platform/internal/app/migrations"
	appRepos "github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/app/repositories/memory"
	"github.com/alumniconnect/platform/internal/app/repositories/postgres"
	appRoutes "github.com/alumniconnect/platform/internal/app/routes"
	appServices "github.com/alumniconnect/platform/internal/app/services"
	"github.com/alumniconnect/platform/internal/config"
	"github.com/alumniconnect/platform/internal/db"
	appMiddleware "github.com/alumniconnect/platform/internal/middleware"
	pkgAuth "github.com/alumniconnect/platform/internal/pkg/auth"
	"github.com/alumniconnect/platform/internal/pkg/helpers"
	"github.com/alumniconnect/platform/internal/pkg/logger"
	"github.com/alumniconnect/platform/internal/pkg/validation"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store            appRepos.Store
	JWTService       *pkgAuth.JWTService
	AuthService      *appServices.AuthService
	EventService     *appServices.EventService
	JobService       *appServices.JobService
	FundingService   *appServices.FundingService
	ForumService     *appServices.ForumService
	AdminService     *appServices.AdminService
	LifecycleService *appServices.LifecycleService
	Controllers      appRoutes.Controllers
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "pretty",
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured store. The returned close function is never nil.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, func(), error) {
	if strings.ToLower(cfg.Database.Driver) == "memory" {
		lgr.Warn().Msg("Using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	connString := cfg.GetPostgresConnectionString()
	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.Up(connString, lgr); err != nil {
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg.Database, connString, lgr)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(database), database.Close, nil
}

// ServiceConfig derives the service-layer settings from the loaded configuration.
func ServiceConfig(cfg *config.Config) appServices.Config {
	return appServices.Config{
		RequireApproval: cfg.Moderation.RequireApproval,
		Now:             time.Now,
	}
}

// BuildDependencies initializes services, middleware and controllers over store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger, version string) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}
	svcCfg := ServiceConfig(cfg)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(store, svcCfg, deps.JWTService, lgr)
	deps.EventService = appServices.NewEventService(store, svcCfg, lgr)
	deps.JobService = appServices.NewJobService(store, svcCfg, lgr)
	deps.FundingService = appServices.NewFundingService(store, svcCfg, lgr)
	deps.ForumService = appServices.NewForumService(store, svcCfg, lgr)
	deps.AdminService = appServices.NewAdminService(store, svcCfg, lgr)
	deps.LifecycleService = appServices.NewLifecycleService(store, svcCfg, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, lgr),
		Events:  appControllers.NewEventController(deps.EventService),
		Jobs:    appControllers.NewJobController(deps.JobService),
		Funding: appControllers.NewFundingController(deps.FundingService),
		Forum:   appControllers.NewForumController(deps.ForumService),
		Admin:   appControllers.NewAdminController(deps.AdminService),
		Health:  appControllers.NewHealthController(store, version),
	}
	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) (*gin.Engine, error) {
	lgr := deps.Logger
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr), appMiddleware.Metrics())
	if cfg.RateLimit.Enabled {
		limiter := appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(limiter.Middleware())
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}
