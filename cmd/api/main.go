package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/config"
	domainRepo "github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/internal/infrastructure/cache"
	"github.com/sangkips/dentalbill-api/internal/infrastructure/database"
	"github.com/sangkips/dentalbill-api/internal/infrastructure/repository"
	"github.com/sangkips/dentalbill-api/internal/jobs"
	"github.com/sangkips/dentalbill-api/internal/platform/logger"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/handler"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/middleware"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/routes"
	"github.com/sangkips/dentalbill-api/pkg/oauth"
	"github.com/sangkips/dentalbill-api/pkg/printer"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dentalbill-api",
		Short:        "Dental clinic billing API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(recalcCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")

			cfg := config.Load()
			log := logger.New(cfg.Log)
			db, err := database.NewPostgresDB(&cfg.Database, log, cfg.App.Debug)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db, log); err != nil {
				return err
			}
			if seed {
				return database.SeedDefaultData(db, cfg, log)
			}
			return nil
		},
	}
	cmd.Flags().Bool("seed", false, "Seed roles, the admin account and the default fee schedule")
	return cmd
}

func recalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recompute issued receipts and report totals that drifted",
		RunE: func(cmd *cobra.Command, args []string) error {
			apply, _ := cmd.Flags().GetBool("apply")

			cfg := config.Load()
			log := logger.New(cfg.Log)
			db, err := database.NewPostgresDB(&cfg.Database, log, false)
			if err != nil {
				return err
			}

			reportService := service.NewReportService(
				repository.NewReportRepository(db),
				repository.NewReceiptRepository(db),
				log,
			)
			report, err := reportService.Recalc(cmd.Context(), apply)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().Bool("apply", false, "Store the recomputed amounts instead of only reporting them")
	return cmd
}

func runServer() error {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(&cfg.Database, log, cfg.App.Debug)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return err
	}
	if err := database.SeedDefaultData(db, cfg, log); err != nil {
		log.Warn().Err(err).Msg("failed to seed default data")
	}

	ctx := context.Background()
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		// the fee schedule is read from Postgres when the cache is down
		log.Warn().Err(err).Msg("redis unavailable, fee schedule cache disabled")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	router, stop, err := buildRouter(cfg, db, cache.NewScheduleCache(redisClient, cfg.Redis.ScheduleTTL), jwtManager, log)
	if err != nil {
		return err
	}
	defer stop()

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// buildRouter wires repositories, services and handlers. The returned stop
// func ends the background workers.
func buildRouter(
	cfg *config.Config,
	db *gorm.DB,
	scheduleCache domainRepo.FeeScheduleCache,
	jwtManager *utils.JWTManager,
	log zerolog.Logger,
) (*gin.Engine, func(), error) {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	feeRepo := repository.NewPaymentFeeRepository(db)
	settingsRepo := repository.NewBillingSettingsRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Services
	feeScheduleService := service.NewFeeScheduleService(serviceRepo, feeRepo, settingsRepo, scheduleCache, cfg.Billing, log)
	authService := service.NewAuthService(userRepo, jwtManager, googleOAuthService)
	userService := service.NewUserService(userRepo, roleRepo)
	patientService := service.NewPatientService(patientRepo)
	doctorService := service.NewDoctorService(doctorRepo)
	billingService := service.NewBillingService(receiptRepo, patientRepo, doctorRepo, feeScheduleService, log)
	reportService := service.NewReportService(reportRepo, receiptRepo, log)

	receiptPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn().Err(err).Msg("receipt printer disabled")
		receiptPrinter = printer.None()
	}
	printConfigured := err == nil && cfg.Printer.Type != "none" && cfg.Printer.Type != ""
	printService := service.NewPrintService(receiptRepo, receiptPrinter, service.SlipHeader{
		ClinicName: cfg.Printer.ClinicName,
		Address:    cfg.Printer.ClinicAddress,
		Phone:      cfg.Printer.ClinicPhone,
		Footer:     cfg.Printer.Footer,
	}, cfg.Printer.Width, printConfigured, log)

	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.OAuth, cfg.App.IsProduction()),
		User:        handler.NewUserHandler(userService),
		Patient:     handler.NewPatientHandler(patientService),
		Doctor:      handler.NewDoctorHandler(doctorService),
		FeeSchedule: handler.NewFeeScheduleHandler(feeScheduleService),
		Receipt:     handler.NewReceiptHandler(billingService),
		Report:      handler.NewReportHandler(reportService),
		Print:       handler.NewPrintHandler(printService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	stops := []func(){rateLimiter.Stop}

	if cfg.Jobs.Enabled {
		scheduler, err := jobs.NewIdempotencyPurger(idempotencyRepo, log).Start(cfg.Jobs.IdempotencyPurgeEvery)
		if err != nil {
			rateLimiter.Stop()
			return nil, nil, err
		}
		stops = append(stops, scheduler.Stop)
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	stop := func() {
		for _, fn := range stops {
			fn()
		}
	}
	return router, stop, nil
}
