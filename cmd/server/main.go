package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"wrapchain.backend/internal/config"
	pgsource "wrapchain.backend/internal/infrastructure/datasources/postgres"
	"wrapchain.backend/internal/infrastructure/jobs"
	"wrapchain.backend/internal/infrastructure/ledger"
	"wrapchain.backend/internal/infrastructure/models"
	"wrapchain.backend/internal/infrastructure/repositories"
	"wrapchain.backend/internal/interfaces/http/handlers"
	"wrapchain.backend/internal/interfaces/http/middleware"
	"wrapchain.backend/internal/usecases"
	"wrapchain.backend/pkg/derive"
	"wrapchain.backend/pkg/jwt"
	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		if cfg.Driver == config.DriverSQLite {
			return gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
		}
		conn, err := pgsource.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	migrate = func(db *gorm.DB) error {
		return db.AutoMigrate(models.All()...)
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	if cfg.Server.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.Server.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		logger.SetLevel(level)
	}
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	programs, err := cfg.Programs.Resolve()
	if err != nil {
		return fmt.Errorf("invalid program configuration: %w", err)
	}

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

	if cfg.Database.Driver == config.DriverSQLite {
		// sqlite allows one writer; the unit of work holds its connection for the whole transaction
		sqlDB.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(ctx, "Database ready", zap.String("driver", cfg.Database.Driver))

	r, pendingJob := wire(cfg, db, programs)

	// Start background jobs
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go pendingJob.Start(jobCtx)

	for _, route := range r.Routes() {
		logger.Debug(ctx, "route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(ctx, "Shutting down server")
		pendingJob.Stop()
		cancel()
	}()

	logger.Info(ctx, "Wrapchain backend starting", zap.String("port", cfg.Server.Port))
	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// wire builds the HTTP router and the background jobs over db.
func wire(cfg *config.Config, db *gorm.DB, programs derive.Programs) (*gin.Engine, *jobs.PendingRequestsJob) {
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	membersRepo := repositories.NewMembersRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	controllerRepo := repositories.NewControllerRepository(db)
	factoryRepo := repositories.NewFactoryRepository(db)
	depositRepo := repositories.NewDepositAddressRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	tokenLedger := ledger.NewTokenLedger(db)
	uow := repositories.NewUnitOfWork(db, redis.NewRecordLocker(cfg.Custody.LockTTL))

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(redis.NewChallengeStore(cfg.Custody.ChallengeTTL), jwtService)
	membersUsecase := usecases.NewMembersUsecase(uow, membersRepo, merchantRepo, programs)
	controllerUsecase := usecases.NewControllerUsecase(uow, controllerRepo, membersRepo, factoryRepo, tokenLedger, programs)
	factoryUsecase := usecases.NewFactoryUsecase(usecases.FactoryDeps{
		UnitOfWork:     uow,
		FactoryRepo:    factoryRepo,
		DepositRepo:    depositRepo,
		RequestRepo:    requestRepo,
		ControllerRepo: controllerRepo,
		MembersRepo:    membersRepo,
		MerchantRepo:   merchantRepo,
		Ledger:         tokenLedger,
		Controller:     controllerUsecase,
		Programs:       programs,
		StrictCancel:   cfg.Custody.StrictCancel,
	})
	tokenUsecase := usecases.NewTokenUsecase(uow, tokenLedger, programs)

	r := newRouter(routeDeps{
		authHandler:       handlers.NewAuthHandler(authUsecase),
		membersHandler:    handlers.NewMembersHandler(membersUsecase),
		controllerHandler: handlers.NewControllerHandler(controllerUsecase),
		factoryHandler:    handlers.NewFactoryHandler(factoryUsecase),
		tokenHandler:      handlers.NewTokenHandler(tokenUsecase),
		authMiddleware:    middleware.AuthMiddleware(jwtService),
	})
	return r, jobs.NewPendingRequestsJob(requestRepo, cfg.Jobs.PendingGaugeInterval)
}
