package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lims/lims/internal/config"
	"github.com/lims/lims/internal/domain/auditevent"
	"github.com/lims/lims/internal/domain/billing"
	"github.com/lims/lims/internal/domain/catalog"
	"github.com/lims/lims/internal/domain/orders"
	"github.com/lims/lims/internal/domain/patient"
	"github.com/lims/lims/internal/domain/reference"
	"github.com/lims/lims/internal/platform/auth"
	"github.com/lims/lims/internal/platform/db"
	"github.com/lims/lims/internal/platform/metrics"
	"github.com/lims/lims/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lims-server",
		Short: "Laboratory order lifecycle API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
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
	cmd.AddCommand(statusCmd)

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
		logger.Fatal().Err(err).Msg("unsafe configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Metrics
	stats := metrics.NewRegistry()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(stats.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories
	txRunner := db.NewTxRunner(pool)
	catalogItems := catalog.NewItemRepoPG(pool)
	catalogPanels := catalog.NewPanelRepoPG(pool)
	departments := catalog.NewDepartmentRepoPG(pool)
	patients := patient.NewRepoPG(pool)
	ranges := reference.NewRepoPG(pool)
	requests := orders.NewRequestRepoPG(pool)
	requestItems := orders.NewItemRepoPG(pool)
	invoices := billing.NewRepoPG(pool)
	auditEvents := auditevent.NewRepoPG(pool)

	// Services
	catalogSvc := catalog.NewService(catalogItems, catalogPanels, departments)
	patientSvc := patient.NewService(patients)
	referenceSvc := reference.NewService(ranges)
	auditSvc := auditevent.NewService(auditEvents)
	billingSvc := billing.NewService(invoices, &headerSyncAdapter{requests: requests})
	ordersSvc := orders.NewService(
		requests,
		requestItems,
		&catalogSourceAdapter{svc: catalogSvc},
		&patientSourceAdapter{svc: patientSvc},
		&rangeResolverAdapter{svc: referenceSvc},
		&auditSinkAdapter{svc: auditSvc},
		&invoiceSinkAdapter{svc: billingSvc},
		txRunner,
	)

	// Handlers
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	reference.NewHandler(referenceSvc).RegisterRoutes(apiV1)
	orders.NewHandler(ordersSvc, stats).RegisterRoutes(apiV1)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)
	auditevent.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", stats.Handler())

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

// catalogSourceAdapter adapts the catalog service to orders.CatalogSource,
// avoiding a direct import between the two domains.
type catalogSourceAdapter struct {
	svc *catalog.Service
}

func toEntry(it *catalog.Item) *orders.CatalogEntry {
	return &orders.CatalogEntry{
		ID:           it.ID,
		Name:         it.Name,
		Price:        it.Price,
		DepartmentID: it.DepartmentID,
		IsPanel:      it.IsPanel,
	}
}

func (a *catalogSourceAdapter) Entries(ctx context.Context, ids []uuid.UUID) ([]*orders.CatalogEntry, error) {
	items, err := a.svc.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]*orders.CatalogEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, toEntry(it))
	}
	return entries, nil
}

func (a *catalogSourceAdapter) PanelMembers(ctx context.Context, panelID uuid.UUID) ([]*orders.CatalogEntry, error) {
	memberIDs, err := a.svc.PanelMembers(ctx, panelID)
	if err != nil {
		return nil, err
	}
	items, err := a.svc.GetItems(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	entries := make([]*orders.CatalogEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, toEntry(it))
	}
	return entries, nil
}

// patientSourceAdapter adapts the patient service to orders.PatientSource,
// normalizing gender for range resolution and deriving whole-year age.
type patientSourceAdapter struct {
	svc *patient.Service
}

func (a *patientSourceAdapter) Subject(ctx context.Context, id uuid.UUID) (*orders.Subject, error) {
	p, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	subject := &orders.Subject{
		ID:   p.ID,
		Name: strings.TrimSpace(p.FirstName + " " + p.LastName),
	}
	switch p.Gender {
	case patient.GenderMale:
		g := "male"
		subject.Gender = &g
	case patient.GenderFemale:
		g := "female"
		subject.Gender = &g
	}
	if p.BirthDate != nil {
		age := p.AgeOn(time.Now())
		subject.AgeYears = &age
	}
	return subject, nil
}

// rangeResolverAdapter adapts the reference service to orders.RangeResolver.
type rangeResolverAdapter struct {
	svc *reference.Service
}

func (a *rangeResolverAdapter) ResolveFor(ctx context.Context, analyteID uuid.UUID, gender *string, ageYears *int, candidate string) (orders.RangeInfo, error) {
	res, err := a.svc.ResolveFor(ctx, analyteID, gender, ageYears, candidate)
	if err != nil {
		return orders.RangeInfo{}, err
	}
	return orders.RangeInfo{Text: res.Text, Flag: res.Flag}, nil
}

// auditSinkAdapter adapts the audit service to orders.AuditSink.
type auditSinkAdapter struct {
	svc *auditevent.Service
}

func (a *auditSinkAdapter) Record(ctx context.Context, entry orders.AuditEntry) {
	a.svc.Record(ctx, &auditevent.AuditEvent{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Outcome:    entry.Outcome,
		Detail:     entry.Detail,
	})
}

// invoiceSinkAdapter adapts the billing service to orders.InvoiceSink.
type invoiceSinkAdapter struct {
	svc *billing.Service
}

func (a *invoiceSinkAdapter) CreateInvoice(ctx context.Context, requestID uuid.UUID, amount float64) error {
	return a.svc.CreateForRequest(ctx, requestID, amount)
}

func (a *invoiceSinkAdapter) UpdateInvoiceAmount(ctx context.Context, requestID uuid.UUID, amount float64) error {
	return a.svc.UpdateAmountForRequest(ctx, requestID, amount)
}

func (a *invoiceSinkAdapter) DeleteInvoice(ctx context.Context, requestID uuid.UUID) error {
	return a.svc.DeleteForRequest(ctx, requestID)
}

// headerSyncAdapter mirrors invoice payment status onto the request header.
type headerSyncAdapter struct {
	requests orders.RequestRepository
}

func (a *headerSyncAdapter) SetPaymentStatus(ctx context.Context, requestID uuid.UUID, status string) error {
	return a.requests.UpdatePaymentStatus(ctx, requestID, status)
}
