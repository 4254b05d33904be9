package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tournament-platform/config"
	"tournament-platform/database"
	"tournament-platform/handlers"
	"tournament-platform/services"
	"tournament-platform/telemetry"
	"tournament-platform/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal("failed to set up tracing:", err)
	}

	db, err := database.Open(database.Options{URL: cfg.DatabaseURL, Debug: cfg.IsDevelopment()})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	var (
		store     utils.ObjectStore
		uploadDir string
	)
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Store(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		store = r2
		log.Printf("✅ Media uploads go to R2 bucket %s", cfg.R2.Bucket)
	} else {
		local, err := utils.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
		store = local
		uploadDir = cfg.UploadDir
		log.Println("⚠️  R2 not configured, storing uploads in", cfg.UploadDir)
	}

	users := services.NewUserService(db)
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	tournaments := services.NewTournamentService(db, users, store)
	registrations := services.NewRegistrationService(db, users)

	if _, err := services.NewStatusScheduler(db).Start(ctx, cfg.StatusSyncInterval); err != nil {
		log.Fatal("failed to start status scheduler:", err)
	}

	app := handlers.NewApp(handlers.AppOptions{
		Config:        cfg,
		Users:         users,
		Tokens:        tokens,
		Tournaments:   tournaments,
		Registrations: registrations,
		UploadDir:     uploadDir,
		AccessLog:     true,
	})

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost%s", cfg.Addr())
	log.Printf("✅ Status sync running (every %s)", cfg.StatusSyncInterval)
	log.Printf("✅ CORS configured for origins: %v", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	database.Close(db)
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}
}
