package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ozziework/internal/domain/audit"
	"ozziework/internal/domain/auth"
	"ozziework/internal/domain/documents"
	"ozziework/internal/domain/engagement"
	"ozziework/internal/domain/identity"
	"ozziework/internal/domain/messaging"
	"ozziework/internal/domain/payroll"
	"ozziework/internal/domain/timesheet"
	"ozziework/internal/platform/config"
	"ozziework/internal/platform/crypto"
	"ozziework/internal/platform/db"
	"ozziework/internal/platform/email"
	"ozziework/internal/platform/jobs"
	"ozziework/internal/platform/metrics"
	adminhandler "ozziework/internal/transport/http/handlers/admin"
	applicationshandler "ozziework/internal/transport/http/handlers/applications"
	authhandler "ozziework/internal/transport/http/handlers/auth"
	documentshandler "ozziework/internal/transport/http/handlers/documents"
	"ozziework/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects, migrates, seeds and wires the full service graph.
// migrationsDir is resolved relative to the working directory.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()
	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, err
	}
	mailer := email.New(cfg)

	authSvc := auth.NewService(auth.NewStore(pool))
	identitySvc := identity.NewService(identity.NewStore(pool))
	engagementSvc := engagement.NewService(engagement.NewStore(pool))
	timesheetSvc := timesheet.NewService(timesheet.NewStore(pool))
	payrollSvc := payroll.NewService(payroll.NewStore(pool))
	documentsSvc := documents.NewService(documents.NewStore(pool), cryptoSvc, cfg.StorageDir)
	messagingSvc := messaging.NewService(messaging.NewStore(pool))
	auditSvc := audit.New(pool)
	idempotency := middleware.NewIdempotencyStore(pool)

	jobRunner := jobs.New(pool)
	jobRunner.Start(ctx)
	jobRunner.ScheduleEvery(ctx, jobs.JobOverdueSweep, cfg.SweepInterval, func(ctx context.Context) (any, error) {
		result, err := payrollSvc.RunOverdueSweep(ctx, cfg.OverdueAfter, false, time.Now().UTC())
		if err == nil {
			collector.PayslipsMarkedOverdue(result.MarkedOverdue)
		}
		return result, err
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authSvc, identitySvc, cfg.JWTSecret)
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/refresh", authHandler.HandleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
			r.Put("/me/profile", authHandler.HandleUpdateProfile)

			appHandler := &applicationshandler.Handler{
				Engagement:  engagementSvc,
				Timesheets:  timesheetSvc,
				Payroll:     payrollSvc,
				Identity:    identitySvc,
				Documents:   documentsSvc,
				Messaging:   messagingSvc,
				Audit:       auditSvc,
				Mailer:      mailer,
				Metrics:     collector,
				Idempotency: idempotency,
				Cfg:         cfg,
			}
			r.Get("/applications", appHandler.HandleList)
			r.Route("/applications/{applicationID}", func(r chi.Router) {
				r.Post("/offer", appHandler.HandleCreateOffer)
				r.Get("/offer", appHandler.HandleGetOffer)
				r.Patch("/offer", appHandler.HandlePatchOffer)

				r.Get("/timesheet", appHandler.HandleGetTimesheet)
				r.Put("/timesheet", appHandler.HandleReplaceEntries)
				r.Post("/timesheet/submit", appHandler.HandleSubmitTimesheet)
				r.Post("/timesheet/approve", appHandler.HandleApproveTimesheet)

				r.Post("/payslip", appHandler.HandleSettle)
				r.Get("/payslip", appHandler.HandleGetPayslip)
				r.Post("/payslip/confirm", appHandler.HandleConfirmInstructions)
			})

			docHandler := documentshandler.NewHandler(documentsSvc)
			r.Get("/documents", docHandler.HandleList)
			r.Get("/documents/{documentID}/download", docHandler.HandleDownload)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			adminHandler := &adminhandler.Handler{
				Payroll: payrollSvc,
				Jobs:    jobRunner,
				Metrics: collector,
				Audit:   auditSvc,
				Cfg:     cfg,
			}
			r.Post("/admin/payslips/overdue-sweep", adminHandler.HandleOverdueSweep)
			r.Get("/admin/audit-events", adminHandler.HandleAuditEvents)
			if cfg.MetricsEnabled {
				r.Get("/admin/metrics", adminHandler.HandleMetrics)
			}
		})
	})

	return &App{Config: cfg, Pool: pool, Router: router, Jobs: jobRunner, Metrics: collector}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
