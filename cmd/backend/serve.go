package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	gormmysql "gorm.io/driver/mysql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/replaykit/replaykit/catalog"
	"github.com/replaykit/replaykit/cmd/backend/handlers"
	"github.com/replaykit/replaykit/codegen"
	"github.com/replaykit/replaykit/executor"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/recording"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/storage"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

// openScenarioStore builds the scenario store selected by config and returns
// it with a close function.
func openScenarioStore(cfg *Config, log logger.Logger) (scenario.Store, func(), error) {
	switch cfg.Database.Driver {
	case "", "memory":
		return scenario.NewRegistry(), func() {}, nil
	case "sqlite", "mysql":
	default:
		return nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}

	var dialector gorm.Dialector
	if cfg.Database.Driver == "sqlite" {
		dialector = gormsqlite.Open(cfg.Database.Path)
	} else {
		dialector = gormmysql.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	store := scenario.NewGormStore(db, log)
	if err := store.Migrate(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, func() { sqlDB.Close() }, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log := logger.NewLogrusLogger(cfg.Log.Level)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// Initialize scenario store
	scenarioStore, closeStore, err := openScenarioStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	log.Info(ctx, "scenario store initialized", map[string]interface{}{
		"driver": cfg.Database.Driver,
	})

	// Seed predefined scenarios
	if cfg.Catalog.Path != "" {
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		if err := cat.Seed(ctx, scenarioStore, log); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	// Initialize blob storage for scripts and screenshots
	blobs, err := storage.New(storage.Config{
		Type:     cfg.Storage.Type,
		BaseDir:  cfg.Storage.BaseDir,
		S3Bucket: cfg.Storage.S3Bucket,
		S3Region: cfg.Storage.S3Region,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info(ctx, "storage initialized", map[string]interface{}{
		"type": cfg.Storage.Type,
	})

	// Wire up the core components
	manager := recording.NewManager(log)
	generator := codegen.NewGenerator()
	driver := executor.NewChromeDriver(log)
	engine := executor.NewEngine(scenarioStore, driver, blobs, log)

	// Setup router
	router := mux.NewRouter()
	logging := handlers.NewLoggingMiddleware(log)
	router.Use(logging.Handler)

	router.HandleFunc("/health", handlers.NewHealthHandler(manager)).Methods("GET")

	recordingHandler := handlers.NewRecordingHandler(manager, scenarioStore, generator, blobs, log)
	scenarioHandler := handlers.NewScenarioHandler(scenarioStore, log)
	executionHandler := handlers.NewExecutionHandler(engine, log)
	codegenHandler := handlers.NewCodegenHandler(generator, log)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/recordings", recordingHandler.Start).Methods("POST")
	apiRouter.HandleFunc("/recordings/{session_id}", recordingHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/recordings/{session_id}/steps", recordingHandler.AddStep).Methods("POST")
	apiRouter.HandleFunc("/recordings/{session_id}/stop", recordingHandler.Stop).Methods("POST")
	apiRouter.HandleFunc("/scenarios", scenarioHandler.List).Methods("GET")
	apiRouter.HandleFunc("/executions", executionHandler.Run).Methods("POST")
	apiRouter.HandleFunc("/codegen", codegenHandler.Generate).Methods("POST")
	apiRouter.HandleFunc("/codegen/api", codegenHandler.GenerateAPI).Methods("POST")

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
