package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/aurora-be/internal/api"
	"github.com/isdelr/aurora-be/internal/auth"
	"github.com/isdelr/aurora-be/internal/config"
	"github.com/isdelr/aurora-be/internal/database"
	"github.com/isdelr/aurora-be/internal/logger"
	"github.com/isdelr/aurora-be/internal/messaging"
	"github.com/isdelr/aurora-be/internal/monitoring"
	"github.com/isdelr/aurora-be/internal/repository"
	"github.com/isdelr/aurora-be/internal/repository/mongodb"
	"github.com/isdelr/aurora-be/internal/repository/sqlite"
	"github.com/isdelr/aurora-be/internal/services"
	"github.com/isdelr/aurora-be/internal/storage"
	"github.com/isdelr/aurora-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())

	ctx := context.Background()

	// Set up the store
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to initialize store")
	}
	defer store.Close(context.Background())

	// Set up image storage
	images, uploadDir, err := openImageStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Upload.Backend).Msg("Failed to initialize image storage")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	publishers := services.Publishers{hub}
	if cfg.RabbitMQ.URL != "" {
		broker, err := messaging.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ publisher")
		}
		defer broker.Close()
		publishers = append(publishers, broker)
	}

	// Set up services
	eventService := services.NewEventService(store.Events())
	userService := services.NewUserService(store.Users(), eventService, cfg.BcryptCost)
	postService := services.NewPostService(store.Posts(), eventService, publishers)

	// Set up and run the background scheduler
	scheduler, err := monitoring.NewScheduler(eventService, cfg.EventPruneSchedule, cfg.EventRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	scheduler.Run()

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(cfg.StatsInterval)
	go statUpdater.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Store:          store,
		Users:          userService,
		Posts:          postService,
		Events:         eventService,
		Issuer:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Cookies:        auth.CookiePolicy{Secure: cfg.CookieSecure},
		Images:         images,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		UploadDir:      uploadDir,
		Hub:            hub,
		Stats:          statUpdater,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("driver", cfg.DBDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := database.MigrateMongo(ctx, db); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
		return mongodb.New(client, db), nil
	default:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return sqlite.New(db), nil
	}
}

// openImageStore also returns the directory to serve at /uploads, if any.
func openImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, string, error) {
	if cfg.Upload.Backend == config.UploadS3 {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			PublicURL:       cfg.S3.PublicURL,
		})
		return s3Store, "", err
	}

	local, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}
