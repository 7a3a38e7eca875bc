package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"nexus/internal/audit"
	"nexus/internal/incidences"
	"nexus/internal/jwtauth"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	"nexus/internal/platform/config"
	"nexus/internal/platform/httpserver"
	"nexus/internal/platform/logger"
	"nexus/internal/platform/metrics"
	"nexus/internal/platform/middleware"
	platformredis "nexus/internal/platform/redis"
	"nexus/internal/reactor"
	"nexus/internal/roles"
	"nexus/internal/tasks"
	"nexus/internal/tenant"
	"nexus/internal/tickets"
	"nexus/internal/wiki"
)

// main wires dependencies and runs the HTTP server alongside the background
// workers. Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Debug)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. An empty DSN runs everything on in-memory stores, which is
	// enough for demos and frontend development.
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("opening postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("pinging postgres", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connecting redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		auditStore        audit.Store
		notificationStore notification.Store
		roleCatalog       interface {
			roles.Catalog
			roles.Provisioner
		}
		tenantStore    tenant.Store
		ticketStore    tickets.Store
		incidenceStore incidences.Store
		taskStore      tasks.Store
		wikiStore      wiki.Store
	)
	if db != nil {
		auditStore = audit.NewPostgresStore(db)
		notificationStore = notification.NewPostgresStore(db)
		roleCatalog = roles.NewPostgresCatalog(db)
		tenantStore = tenant.NewPostgresStore(db)
		ticketStore = tickets.NewPostgresStore(db)
		incidenceStore = incidences.NewPostgresStore(db)
		taskStore = tasks.NewPostgresStore(db)
		wikiStore = wiki.NewPostgresStore(db)
	} else {
		auditStore = audit.NewInMemoryStore()
		notificationStore = notification.NewInMemoryStore()
		roleCatalog = roles.NewInMemoryCatalog()
		tenantStore = tenant.NewInMemoryStore()
		ticketStore = tickets.NewInMemoryStore()
		incidenceStore = incidences.NewInMemoryStore()
		taskStore = tasks.NewInMemoryStore()
		wikiStore = wiki.NewInMemoryStore()
	}

	// Audit trail and notification routing.
	recorder := audit.NewRecorder(auditStore, audit.WithLogger(log), audit.WithMetrics(m))
	router := notification.NewRouter(notificationStore, roleCatalog,
		notification.WithRouterLogger(log), notification.WithRouterMetrics(m))

	// Lifecycle fan-out: the audit trail plus the reactor watch tables.
	manager := lifecycle.NewManager(recorder, reactor.Registry(router),
		lifecycle.WithLogger(log), lifecycle.WithMetrics(m))

	unreadCache := notification.NewUnreadCache(redisClient, config.UnreadCountTTL)
	notificationService := notification.NewService(notificationStore,
		notification.WithCache(unreadCache),
		notification.WithServiceLogger(log),
		notification.WithServiceMetrics(m))
	sweeper := notification.NewSweeper(notificationStore,
		notification.WithSweeperLogger(log), notification.WithSweeperMetrics(m))

	// Domain services.
	tenantService := tenant.NewService(tenantStore, roleCatalog, manager, tenant.WithServiceLogger(log))
	ticketService := tickets.NewService(ticketStore, manager)
	incidenceService := incidences.NewService(incidenceStore, manager)
	taskService := tasks.NewService(taskStore, manager)
	wikiService := wiki.NewService(wikiStore, manager)

	// Auth.
	jwtService := jwtauth.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	tokenValidator := jwtauth.NewJWTServiceAdapter(jwtService)

	// HTTP surface.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))
	r.Use(middleware.RateLimit(redisClient, cfg.RateLimitPerMinute, time.Minute, log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if err := redisClient.Health(r.Context()); err != nil {
			http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokenValidator, log))
		audit.NewHandler(recorder, log).Register(r)
		notification.NewHandler(notificationService, router, sweeper, log).Register(r)
		tenant.NewHandler(tenantService, log).Register(r)
		tickets.NewHandler(ticketService, log).Register(r)
		incidences.NewHandler(incidenceService, log).Register(r)
		tasks.NewHandler(taskService, log).Register(r)
		wiki.NewHandler(wikiService, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return sweeper.Run(gctx, cfg.SweepInterval)
	})

	if db != nil && len(cfg.KafkaBrokers) > 0 {
		relay, err := audit.NewRelay(db, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("starting audit relay", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
