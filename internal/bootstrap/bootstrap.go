package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	appControllers "github.com/dreamline/mentorlink/internal/app/controllers"
	appMigrations "github.com/dreamline/mentorlink/internal/app/migrations"
	appRepos "github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/app/repositories/inmem"
	appRoutes "github.com/dreamline/mentorlink/internal/app/routes"
	appServices "github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/config"
	"github.com/dreamline/mentorlink/internal/db"
	appMiddleware "github.com/dreamline/mentorlink/internal/middleware"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	pkgAuth "github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
	"github.com/dreamline/mentorlink/internal/pkg/helpers"
	"github.com/dreamline/mentorlink/internal/pkg/logger"
	"github.com/dreamline/mentorlink/internal/pkg/messaging"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/dreamline/mentorlink/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Hub         *websocket.Hub
	// Bridge is nil unless NATS is configured
	Bridge   *messaging.Bridge
	Activity activity.Publisher

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Close releases the brokers held by the dependencies
func (d *Dependencies) Close() error {
	var errs error
	if d.Bridge != nil {
		errs = errors.Join(errs, d.Bridge.Close())
	}
	if d.Activity != nil {
		errs = errors.Join(errs, d.Activity.Close())
	}
	return errs
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// A .env file in the working directory is applied to the environment first.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the store selected by the configuration. For
// PostgreSQL it also applies the embedded migrations. The returned
// PostgresDB is nil for the in-memory store.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, *appRepos.Repositories, error) {
	if cfg.Database.UseInMemory {
		lgr.Warn().Msg("Using the in-memory store, data is lost on restart")
		store, err := inmem.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open in-memory store: %w", err)
		}
		return nil, store.Repositories(), nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg, logger.Component("postgres"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(database.Pool, lgr).Up(ctx); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, appRepos.NewRepositories(database), nil
}

// BuildDependencies initializes services, brokers and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	var err error
	baseURL := strings.TrimSuffix(cfg.Server.PublicBaseURL, "/") + filestorage.PublicPrefix
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(logger.Component("hub"))

	if cfg.NATS.URL != "" {
		deps.Bridge, err = messaging.NewBridge(cfg.NATS.URL, cfg.NATS.SubjectPrefix, deps.Hub, logger.Component("nats"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		deps.Hub.SetRelay(deps.Bridge.Relay)
		lgr.Info().Str("url", cfg.NATS.URL).Msg("Realtime events are relayed over NATS")
	}

	deps.Activity = activity.Nop{}
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		producer, err := activity.NewProducer(brokers, cfg.Kafka.Topic, logger.Component("activity"))
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		deps.Activity = producer
		lgr.Info().Strs("brokers", brokers).Str("topic", cfg.Kafka.Topic).Msg("Activity events are published to Kafka")
	}

	deps.Services = appServices.NewServices(appServices.Deps{
		Repos:          repos,
		JWT:            deps.JWTService,
		Storage:        deps.FileStorage,
		Hub:            deps.Hub,
		Activity:       deps.Activity,
		Location:       cfg.Location(),
		RatingCooldown: helpers.ParseDuration(cfg.Rating.Cooldown, 7*24*time.Hour),
		Logger:         lgr,
	})

	if cfg.Seed.DemoUsers {
		if err := seed.CreateDemoUsers(context.Background(), deps.Services.Auth, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo users, proceeding anyway...")
		}
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	healthChecks := map[string]appControllers.HealthCheck{}
	if database != nil {
		healthChecks["database"] = database.Ping
	}
	if deps.Bridge != nil {
		healthChecks["nats"] = func(context.Context) error { return deps.Bridge.HealthCheck() }
	}

	s := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(s.Auth, logger.Component("auth")),
		User:       appControllers.NewUserController(s.Users, s.Requests),
		Request:    appControllers.NewRequestController(s.Requests),
		Chat:       appControllers.NewChatController(s.Chats, websocket.NewHandler(cfg.Origins(), logger.Component("websocket")), logger.Component("chat")),
		Assignment: appControllers.NewAssignmentController(s.Assignments),
		Rating:     appControllers.NewRatingController(s.Ratings),
		Post:       appControllers.NewPostController(s.Posts),
		Category:   appControllers.NewCategoryController(),
		Health:     appControllers.NewHealthController(healthChecks),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))
	router.MaxMultipartMemory = filestorage.MaxImageSize

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.Static(filestorage.PublicPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	return router
}
