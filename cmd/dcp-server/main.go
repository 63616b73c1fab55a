package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dcportal/dcportal/internal/config"
	"github.com/dcportal/dcportal/internal/domain/databank"
	"github.com/dcportal/dcportal/internal/domain/department"
	"github.com/dcportal/dcportal/internal/domain/form"
	"github.com/dcportal/dcportal/internal/domain/profile"
	"github.com/dcportal/dcportal/internal/domain/public"
	"github.com/dcportal/dcportal/internal/domain/schedule"
	"github.com/dcportal/dcportal/internal/domain/submission"
	"github.com/dcportal/dcportal/internal/platform/auth"
	"github.com/dcportal/dcportal/internal/platform/cache"
	"github.com/dcportal/dcportal/internal/platform/db"
	"github.com/dcportal/dcportal/internal/platform/middleware"
	"github.com/dcportal/dcportal/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dcp-server",
		Short: "Data collection portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			departmentID, _ := cmd.Flags().GetString("department")
			password, _ := cmd.Flags().GetString("password")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			in := profile.CreateUserInput{
				Email:    email,
				FullName: name,
				Role:     role,
				Password: password,
			}
			if departmentID != "" {
				depID, err := uuid.Parse(departmentID)
				if err != nil {
					return fmt.Errorf("invalid --department: %w", err)
				}
				in.DepartmentID = &depID
			}

			svc := profile.NewService(profile.NewRepoPG(pool))
			p, err := svc.CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s user %s (%s)\n", p.Role, p.Email, p.ID)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Login email (required)")
	createCmd.Flags().String("name", "", "Full name (required)")
	createCmd.Flags().String("role", "admin", "Role: admin, department_user or data_entry_user")
	createCmd.Flags().String("department", "", "Department id (required for non-admin roles)")
	createCmd.Flags().String("password", "", "Initial password (required)")

	cmd.AddCommand(createCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Authenticated API group
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	// Public group: no auth, rate limited, responses cached
	publicGroup := e.Group("/public")
	publicGroup.Use(middleware.RateLimit(rateLimitCfg))

	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStoreFromURL(ctx, cfg.RedisURL, "dcp:public:")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = redisStore
		logger.Info().Msg("connected to redis cache")
	} else {
		mem := cache.NewMemoryStore()
		mem.StartCleanup(ctx, time.Minute)
		store = mem
	}
	publicGroup.Use(cache.Middleware(store, time.Duration(cfg.PublicCacheTTL)*time.Second))

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// Domain wiring
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.SessionTTL)*time.Hour)

	deptSvc := department.NewService(department.NewRepoPG(pool))
	department.NewHandler(deptSvc).RegisterRoutes(apiV1)

	profileSvc := profile.NewService(profile.NewRepoPG(pool))
	profile.NewHandler(profileSvc, issuer).RegisterRoutes(apiV1, publicGroup)

	bankSvc := databank.NewService(databank.NewRepoPG(pool))
	databank.NewHandler(bankSvc).RegisterRoutes(apiV1)

	formSvc := form.NewService(form.NewRepoPG(pool), bankSvc)
	form.NewHandler(formSvc).RegisterRoutes(apiV1)

	schedSvc := schedule.NewService(schedule.NewRepoPG(pool))
	subSvc := submission.NewService(submission.NewRepoPG(pool), formSvc, schedSvc, schedSvc)
	schedule.NewHandler(schedSvc, subSvc).RegisterRoutes(apiV1)
	submission.NewHandler(subSvc).RegisterRoutes(apiV1)

	reportSvc := reporting.NewService(formSvc, schedSvc, subSvc)
	reporting.NewHandler(reportSvc).RegisterRoutes(apiV1)

	public.NewHandler(schedSvc, formSvc, reportSvc).RegisterRoutes(publicGroup)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
