package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/studentdesk/internal/app/controllers"
	appMigrations "github.com/yigit/studentdesk/internal/app/migrations"
	appRepos "github.com/yigit/studentdesk/internal/app/repositories"
	appRoutes "github.com/yigit/studentdesk/internal/app/routes"
	appServices "github.com/yigit/studentdesk/internal/app/services"
	"github.com/yigit/studentdesk/internal/app/views"
	"github.com/yigit/studentdesk/internal/config"
	"github.com/yigit/studentdesk/internal/db"
	appMiddleware "github.com/yigit/studentdesk/internal/middleware"
	pkgAuth "github.com/yigit/studentdesk/internal/pkg/auth"
	"github.com/yigit/studentdesk/internal/pkg/helpers"
	"github.com/yigit/studentdesk/internal/pkg/logger"
	"github.com/yigit/studentdesk/internal/pkg/validation"
	"github.com/yigit/studentdesk/internal/seed"
)

// ConfigPathEnv names the variable that overrides the config file location
const ConfigPathEnv = "CONFIG_PATH"

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         *appServices.AuthService
	StudentService      *appServices.StudentService
	AuthController      *appControllers.AuthController
	DashboardController *appControllers.DashboardController
	StudentController   *appControllers.StudentController
	SessionGate         *appMiddleware.SessionGate
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv(ConfigPathEnv, "configs/config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
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

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		SessionExp:  helpers.ParseDuration(cfg.JWT.SessionExpiration, 12*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.SessionRepository,
		deps.JWTService,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository)

	deps.SessionGate = appMiddleware.NewSessionGate(deps.AuthService, cfg.Session.CookieName)

	deps.AuthController = appControllers.NewAuthController(
		deps.AuthService,
		deps.SessionGate,
		appControllers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		lgr,
	)
	deps.DashboardController = appControllers.NewDashboardController(deps.StudentService, time.Now)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := seed.CreateDefaultAdmin(ctx, deps.AuthService, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, lgr); err != nil {
		// The app is still usable through sign up
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, pinger appRoutes.Pinger, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	// API validation errors name fields the way the JSON body does
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.UseJSONNames(v)
	}

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.SetHTMLTemplate(tmpl)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.DashboardController,
		deps.StudentController,
		deps.SessionGate,
		pinger,
	)

	return router, nil
}
