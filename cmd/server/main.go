package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sportsadmin.backend/internal/config"
	"sportsadmin.backend/internal/infrastructure/datasources/postgres"
	"sportsadmin.backend/internal/infrastructure/jobs"
	"sportsadmin.backend/internal/infrastructure/notifier"
	"sportsadmin.backend/internal/infrastructure/repositories"
	"sportsadmin.backend/internal/infrastructure/storage"
	"sportsadmin.backend/internal/interfaces/http/handlers"
	"sportsadmin.backend/internal/interfaces/http/middleware"
	"sportsadmin.backend/internal/usecases"
	"sportsadmin.backend/pkg/jwt"
	"sportsadmin.backend/pkg/logger"
	"sportsadmin.backend/pkg/metrics"
	"sportsadmin.backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

type blobStore interface {
	usecases.BlobStore
	EnsureBucket(ctx context.Context) error
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = func(cfg config.LogConfig, env string) error {
		return logger.Setup(logger.Options{
			Env:        env,
			Level:      cfg.Level,
			FilePath:   cfg.FilePath,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
		})
	}
	initRedis    = redis.Init
	openDB       = postgres.NewConnection
	newBlobStore = func(cfg config.StorageConfig) (blobStore, error) {
		s, err := storage.NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	runServer = serve
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// serve blocks until the listener fails or ctx ends, then drains in-flight requests.
func serve(ctx context.Context, h http.Handler, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runMainProcess() error {
	dotenvErr := loadDotenv()

	cfg := loadCfg()

	if err := initLog(cfg.Log, cfg.Server.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Refusing to start", zap.Error(err))
		return err
	}
	if dotenvErr != nil {
		logger.Info(ctx, "No .env file found, using environment variables")
	}
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	blobs, err := newBlobStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		logger.Warn(ctx, "File storage not available, uploads will fail", zap.Error(err))
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	m := metrics.New()

	userRepo := repositories.NewUserRepository(db)
	contractRepo := repositories.NewContractRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	expiryWindow := cfg.Workflow.ExpiryWindow()

	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	userUsecase := usecases.NewUserUsecase(userRepo)
	contractUsecase := usecases.NewContractUsecase(contractRepo, auditRepo)
	documentUsecase := usecases.NewDocumentUsecase(contractRepo, documentRepo, expiryWindow)
	paymentUsecase := usecases.NewPaymentUsecase(paymentRepo, contractRepo)
	reportUsecase := usecases.NewReportUsecase(userRepo, contractRepo, documentRepo, paymentRepo, expiryWindow)
	notificationUsecase := usecases.NewNotificationUsecase(notificationRepo)
	fileUsecase := usecases.NewFileUsecase(blobs)
	workflowUsecase := usecases.NewWorkflowUsecase(usecases.WorkflowDeps{
		UnitOfWork:    uow,
		Users:         userRepo,
		Contracts:     contractRepo,
		Documents:     documentRepo,
		Payments:      paymentRepo,
		Audit:         auditRepo,
		Blobs:         blobs,
		Notifier:      notifier.NewInAppNotifier(notificationRepo),
		Locker:        redis.NewLocker("lock:", cfg.Redis.LockTTL, cfg.Redis.LockWait),
		Observer:      m,
		UploadTimeout: cfg.Storage.UploadTimeout,
	})

	secureCookies := cfg.Server.Env == "production"
	maxUpload := cfg.Server.MaxUploadBytes

	expiryJob := jobs.NewDocumentExpiryJob(documentRepo, m, expiryWindow, cfg.Workflow.ExpiryScanInterval)
	go expiryJob.Start(ctx)
	defer expiryJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(m.Middleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerReadinessRoute(r, map[string]dependencyCheck{
		"postgres": sqlDB.PingContext,
		"redis":    redis.Ping,
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	registerAPIV1Routes(r, routeDeps{
		authHandler:         handlers.NewAuthHandler(authUsecase, secureCookies),
		userHandler:         handlers.NewUserHandler(userUsecase),
		contractHandler:     handlers.NewContractHandler(contractUsecase, workflowUsecase, maxUpload),
		documentHandler:     handlers.NewDocumentHandler(documentUsecase, workflowUsecase, maxUpload, cfg.Workflow.ExpiryWarningDays),
		paymentHandler:      handlers.NewPaymentHandler(paymentUsecase, workflowUsecase, maxUpload),
		fileHandler:         handlers.NewFileHandler(fileUsecase),
		reportHandler:       handlers.NewReportHandler(reportUsecase),
		notificationHandler: handlers.NewNotificationHandler(notificationUsecase),
		authMiddleware:      middleware.AuthMiddleware(jwtService),
	})

	logger.Debug(ctx, "Routes registered", zap.Int("count", len(r.Routes())))
	logger.Info(ctx, "Sports academy backend starting", zap.String("port", cfg.Server.Port))

	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}
