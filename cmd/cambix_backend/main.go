package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	_ "github.com/cambix/cambix_backend/cmd/docs"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/core/services"
	"github.com/cambix/cambix_backend/internal/handlers"
	"github.com/cambix/cambix_backend/internal/middleware"
	"github.com/cambix/cambix_backend/internal/repositories/database/pgsql"
	"github.com/cambix/cambix_backend/pkg/config"
	"github.com/cambix/cambix_backend/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Cambix Backend API
// @version 1.0
// @description Currency exchange house backend: teller windows, float ledgers, exchange rates and transactions.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories and services
	repos := pgsql.NewRepositoryProvider(dbPool)

	rateService := services.NewRateService(repos.RateRepo, repos.TransactionRepo, repos.MasterRepo)
	floatService := services.NewFloatLedgerService(repos.WindowRepo, repos.FloatRepo, repos.TransactionRepo, repos.MasterRepo)
	windowService := services.NewWindowService(repos.WindowRepo, repos.RateRepo, repos.MasterRepo, rateService, floatService)
	transactionService := services.NewTransactionService(repos.TransactionRepo, repos.WindowRepo, repos.RateRepo, repos.MasterRepo)
	authService := services.NewAuthService(repos.MasterRepo, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer)

	serviceContainer := &portssvc.ServiceContainer{
		AuthSvc:        authService,
		RateSvc:        rateService,
		FloatSvc:       floatService,
		WindowSvc:      windowService,
		TransactionSvc: transactionService,
	}

	// Nightly sweep recreating keep-daily rates so windows opened after
	// midnight start from a fresh rate set.
	renewalCron, err := startRateRenewalCron(cfg, repos, rateService, logger)
	if err != nil {
		logger.Error("Failed to start rate renewal cron", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT value", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	handlers.RegisterCustomValidators()
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	renewalCron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server exited.")
}

// runMigrations applies all pending "up" migrations through a temporary
// database/sql connection compatible with the main pgx pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		migrationDB.Close()
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		migrationDB.Close()
		return err
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// startRateRenewalCron schedules the keep-daily renewal sweep for every
// active exchange house. Windows opening mid-day also renew lazily, the
// cron only keeps rate boards fresh for reporting before the first open.
func startRateRenewalCron(cfg *config.Config, repos *portsrepo.RepositoryProvider, rateService portssvc.RateSvcFacade, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.RateRenewalSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		houses, err := repos.MasterRepo.ListActiveHouses(ctx)
		if err != nil {
			logger.Error("Rate renewal sweep failed to list houses", slog.String("error", err.Error()))
			return
		}
		day := time.Now().UTC()
		for _, house := range houses {
			renewed, err := rateService.RenewDailyRates(ctx, house.HouseID, day)
			if err != nil {
				logger.Error("Rate renewal sweep failed",
					slog.Int64("houseID", house.HouseID),
					slog.String("error", err.Error()))
				continue
			}
			if renewed > 0 {
				logger.Info("Rate renewal sweep completed",
					slog.Int64("houseID", house.HouseID),
					slog.Int("renewed", renewed))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
