package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsefit/program-engine/internal/api"
	"pulsefit/program-engine/internal/config"
	"pulsefit/program-engine/internal/generation"
	"pulsefit/program-engine/internal/llm"
	"pulsefit/program-engine/internal/logger"
	"pulsefit/program-engine/internal/repository/mongo"
	"pulsefit/program-engine/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("starting program engine", "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		appLog.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			appLog.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	appLog.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureClientProfileIndexes(ctx, appDB.Collection("client_profiles"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		mongo.EnsureProgramSlotIndexes(ctx, appDB.Collection("program_slots"))
		mongo.EnsureGenerationLogIndexes(ctx, appDB.Collection("generation_logs"))
		appLog.Info("index creation process completed")
	}()

	// --- Initialize Repositories ---
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	profileRepo := mongo.NewMongoClientProfileRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	slotRepo := mongo.NewMongoProgramSlotRepository(appDB)
	logRepo := mongo.NewMongoGenerationLogRepository(appDB)

	// --- Initialize Generation Client ---
	llmClient, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		appLog.Fatal("failed to initialize generation client", "error", err)
	}

	// --- Initialize Raw-Payload Archive (optional) ---
	var archive storage.FileStorage
	if cfg.S3.ArchiveEnabled {
		archive, err = storage.NewS3Storage(cfg.S3, appLog)
		if err != nil {
			appLog.Fatal("failed to initialize S3 storage", "error", err)
		}
	}

	// --- Initialize Orchestrator ---
	orchestrator := generation.NewOrchestrator(
		llmClient, exerciseRepo, profileRepo, programRepo, slotRepo, logRepo,
		archive, appLog, cfg.Generation,
	)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, orchestrator, programRepo, slotRepo, logRepo)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation attempts are synchronous and slow
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("listen and serve error", "error", err)
		}
	}()
	appLog.Info("server started", "address", cfg.Server.Address)

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLog.Fatal("server forced to shutdown", "error", err)
	}

	appLog.Info("server exiting")
}
