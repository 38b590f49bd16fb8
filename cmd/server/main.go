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

	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/config"
	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	rentalEvents "github.com/Kilat-Rental/service-reservation/internal/events"
	"github.com/Kilat-Rental/service-reservation/internal/handler"
	"github.com/Kilat-Rental/service-reservation/internal/platform/auth"
	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
	"github.com/Kilat-Rental/service-reservation/internal/platform/database"
	"github.com/Kilat-Rental/service-reservation/internal/platform/health"
	"github.com/Kilat-Rental/service-reservation/internal/platform/kafka"
	"github.com/Kilat-Rental/service-reservation/internal/platform/logger"
	"github.com/Kilat-Rental/service-reservation/internal/platform/middleware"
	"github.com/Kilat-Rental/service-reservation/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "service-reservation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.Duration("submission_timeout", cfg.Workflow.SubmissionTimeout),
		zap.Bool("unknown_availability_bookable", cfg.Workflow.TreatUnknownAsAvailable),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.VehicleModel{},
			&repository.BookingModel{},
			&repository.ReservationModel{},
			&repository.ReceiptModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Catalog cache is optional; without redis the catalog reads go straight to postgres
	var redisClient *redis.Client
	if cfg.RedisConfig.URL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisConfig.URL, log)
		if err != nil {
			log.Warn("catalog cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	var vehicleRepo vehicle.Repository = repository.NewGormVehicleRepository(db)
	if redisClient != nil {
		vehicleRepo = repository.NewCachedCatalog(vehicleRepo, redisClient, cfg.RedisConfig.CacheTTL, log)
	}
	bookingRepo := repository.NewGormBookingRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)
	receiptRepo := repository.NewGormReceiptRepository(db)

	// Initialize application services
	clk := clock.NewSystem()
	catalogService := application.NewCatalogService(vehicleRepo, log)
	receiptService := application.NewReceiptService(receiptRepo, log)
	adminService := application.NewAdminService(bookingRepo, reservationRepo, log)

	pipeline := reservation.NewPipeline(
		bookingRepo,
		reservationRepo,
		receiptService,
		rentalEvents.NewPublisher(kafkaProducer),
		cfg.Workflow.SubmissionTimeout,
		log.Named("pipeline"),
	)
	sessionService := application.NewSessionService(
		vehicleRepo,
		pipeline,
		reservation.NewResolver(cfg.Workflow.TreatUnknownAsAvailable),
		reservation.NewIdentifierGenerator(clk, nil),
		clk,
		cfg.Workflow.SessionIdleTTL,
		log.Named("sessions"),
	)
	go sessionService.RunSweeper(ctx, cfg.Workflow.SweepInterval)

	// Initialize and start catalog event consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
	catalogConsumer := rentalEvents.NewCatalogEventConsumer(cfg.KafkaConfig.Brokers, groupID, catalogService, log)
	defer func() { _ = catalogConsumer.Close() }()

	go func() {
		log.Info("starting catalog event consumer")
		if err := catalogConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("catalog event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, redisClient, serviceName).RegisterRoutes(router)

	// Register routes
	api := &router.RouterGroup
	handler.NewCatalogHandler(catalogService).RegisterRoutes(api)
	handler.NewSessionHandler(sessionService).RegisterRoutes(api, jwtManager)
	handler.NewReceiptHandler(receiptService).RegisterRoutes(api, jwtManager)
	handler.NewAdminHandler(adminService, sessionService).RegisterRoutes(api, jwtManager)

	// Create HTTP server. WriteTimeout leaves room for a submission that runs to its deadline.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Workflow.SubmissionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Stop the consumer and sweeper
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Workflow.SubmissionTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName+" stopped", zap.Int("open_sessions", sessionService.ActiveSessions()))
}
