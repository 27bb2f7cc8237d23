package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go_editor/core"
	"go_editor/core/validation"
	"go_editor/db"
	"go_editor/geometry"
	"go_editor/imagorclient"
	"go_editor/logging"
	"go_editor/preview"
	"go_editor/shutdown"
	"go_editor/webui"
	"go_editor/webui/auth"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Shutdown priorities. Lower values run first, so the HTTP server stops
// accepting requests before the writers flush and the database closes.
const (
	priorityHTTPServer  = 10
	priorityBroadcaster = 20
	priorityAutosaver   = 21
	priorityHistory     = 22
	priorityDatabase    = 30
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	// Determine if running in development mode
	isDevelopment := os.Getenv("DEV_MODE") == "true"

	// Initialize structured logger early
	logger, err := logging.NewLogger(isDevelopment, core.GetEnvOrDefault("LOG_FILE", "editor.log"))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	// Run startup validation before touching the database or imagor
	exitCode := runStartupValidation(logger)
	if exitCode != core.ExitCodeSuccess {
		os.Exit(exitCode)
	}

	// Load configuration (safe to call after validation passes)
	config, err := core.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("imagor_url", config.ImagorBaseURL),
		zap.Bool("imagor_signed", config.ImagorSecret != ""),
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("database", config.DatabasePath),
		zap.Duration("autosave_delay", config.AutosaveDelay),
		zap.Duration("shutdown_timeout", config.ShutdownTimeout),
		zap.Bool("auth_enabled", config.EditorPassword != ""),
		zap.Bool("allow_self_signed_certs", config.AllowSelfSignedCerts),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Open the session database and bring the schema up to date
	database, err := db.NewDatabaseWithConfig(db.DatabaseConfig{
		Path:           config.DatabasePath,
		MigrationsPath: config.MigrationsPath,
	})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repository with an async writer for history snapshots. The writer's
	// handler only touches the database connection, so building it against
	// a synchronous repository first is safe.
	syncRepo := db.NewRepository(database, nil)
	historyWriter := db.NewAsyncWriter(syncRepo.CreateAsyncWriteHandler())
	historyWriter.Start()
	repo := db.NewRepository(database, historyWriter)

	// Imagor client for transform URLs and raw source fetches
	imagor, err := imagorclient.NewClient(imagorclient.ClientConfig{
		BaseURL:              config.ImagorBaseURL,
		Secret:               config.ImagorSecret,
		AllowSelfSignedCerts: config.AllowSelfSignedCerts,
	})
	if err != nil {
		logger.Fatal("Failed to create imagor client", zap.Error(err))
	}

	// Server-side preview compositor, capped by the configured thumbnail size
	previews := preview.NewService(imagor, config.Defaults.PreviewMaxSize)

	// Shutdown manager coordinates signal handling and cleanup ordering
	manager := shutdown.NewManager(logger.Zap(), shutdown.WithTimeout(config.ShutdownTimeout))

	// WebSocket broadcaster is created up front so the autosaver can push
	// save confirmations through it
	broadcaster := webui.NewWebSocketBroadcaster()

	// Autosaver debounces session writes; every flush also appends a
	// history snapshot and notifies connected clients
	autosaver := db.NewAutosaver(
		func(ctx context.Context, record db.SessionRecord) error {
			if err := repo.UpsertSession(ctx, record); err != nil {
				return err
			}
			if err := repo.RecordHistory(ctx, record.ID, record.State); err != nil {
				logger.Warn("Failed to record history snapshot",
					zap.String("session_id", record.ID),
					zap.Error(err),
				)
			}
			broadcaster.BroadcastAutosave(record.ID, time.Now())
			return nil
		},
		config.AutosaveDelay,
		func(sessionID string, err error) {
			logger.Error("Autosave failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		},
	)
	autosaver.Start()

	// Sessions API and HTTP server, with layer placement and snapping tuned
	// by the editor defaults file
	apiConfig := webui.DefaultSessionsAPIConfig()
	apiConfig.ScaleFactor = config.Defaults.ScaleFactor
	apiConfig.Placement = geometry.Placement(config.Defaults.Placement)
	apiConfig.DisableSnapping = config.Defaults.DisableSnapping
	sessionsAPI := webui.NewSessionsAPI(repo, autosaver, imagor, previews, broadcaster, apiConfig)

	var authProvider webui.AuthProvider
	if config.EditorPassword != "" {
		middleware, err := auth.NewAuthMiddleware(config.EditorPassword, logger.Zap())
		if err != nil {
			logger.Fatal("Failed to initialize authentication", zap.Error(err))
		}
		authProvider = &authMiddlewareProvider{mw: middleware}
	} else {
		logger.Warn("EDITOR_PASSWORD not set, running without authentication")
	}

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	serverConfig.ShutdownTimeout = config.ShutdownTimeout

	server, err := webui.NewServer(serverConfig, sessionsAPI, authProvider, logger.Zap())
	if err != nil {
		logger.Fatal("Failed to create web server", zap.Error(err))
	}

	// Prune old history snapshots daily
	cleanupConfig := db.DefaultCleanupSchedulerConfig()
	cleanupConfig.OnCleanup = func(result db.CleanupResult, err error) {
		if err != nil {
			logger.Warn("History cleanup failed", zap.Error(err))
			return
		}
		logger.Info("History cleanup completed",
			zap.Int64("deleted", result.TotalDeleted),
			zap.Duration("duration", result.Duration),
		)
	}
	database.StartCleanupSchedulerWithConfig(manager.Context(), cleanupConfig)

	// Register cleanup in dependency order: stop serving, flush pending
	// writes, then close the database.
	manager.Register("http-server", priorityHTTPServer, func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	manager.Register("websocket-broadcaster", priorityBroadcaster, func(ctx context.Context) error {
		broadcaster.Close()
		return nil
	})
	manager.Register("autosaver", priorityAutosaver, func(ctx context.Context) error {
		return autosaver.Stop(ctx)
	})
	manager.Register("history-writer", priorityHistory, func(ctx context.Context) error {
		historyWriter.Stop()
		return nil
	})
	manager.Register("database", priorityDatabase, func(ctx context.Context) error {
		return database.Close()
	})

	manager.Start()

	go func() {
		logger.Info("Starting editor backend", zap.String("addr", server.Addr()))
		if err := server.Start(manager.Context()); err != nil && err != http.ErrServerClosed {
			logger.Error("Web server stopped unexpectedly", zap.Error(err))
		}
	}()

	// Block until a shutdown signal arrives
	manager.Wait()

	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		os.Exit(core.ExitCodeError)
	}

	logger.Info("Goodbye!")
}

// authMiddlewareProvider adapts auth.AuthMiddleware to the webui.AuthProvider
// interface expected by the server.
type authMiddlewareProvider struct {
	mw *auth.AuthMiddleware
}

func (p *authMiddlewareProvider) Middleware(next http.Handler) http.Handler {
	return p.mw.Middleware(next)
}

func (p *authMiddlewareProvider) MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc {
	return p.mw.RequireAuth(next)
}

func (p *authMiddlewareProvider) LoginHandler() http.HandlerFunc {
	return auth.LoginHandler(p.mw)
}

func (p *authMiddlewareProvider) LogoutHandler() http.HandlerFunc {
	return auth.LogoutHandler(p.mw)
}

// runStartupValidation performs configuration validation with progress output.
//
// Returns the appropriate exit code:
//   - ExitCodeSuccess (0) if all validations pass
//   - ExitCodeError (1) if any validation fails
func runStartupValidation(logger *logging.Logger) int {
	logger.Info("Starting startup validation...")

	allowSelfSigned := os.Getenv("ALLOW_SELF_SIGNED_CERTS") == "true"

	suite := validation.NewValidationSuite().
		WithAllowSelfSignedCerts(allowSelfSigned).
		WithDatabasePath(core.GetEnvOrDefault("DATABASE_PATH", "editor.sqlite")).
		WithShowProgress(true)

	result := suite.Validate()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Configuration validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Duration("duration", result.Duration),
	)

	return core.ExitCodeSuccess
}
