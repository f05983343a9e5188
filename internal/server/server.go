package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/ecocycle/connect/config"
	"github.com/ecocycle/connect/internal/db"
	"github.com/ecocycle/connect/internal/handlers"
	"github.com/ecocycle/connect/internal/mq"
	"github.com/ecocycle/connect/internal/services"
	"github.com/ecocycle/connect/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
	stopMailer context.CancelFunc
	logger     *slog.Logger
}

type options struct {
	logger *slog.Logger
	clock  clockwork.Clock
	seed   bool
	events *mq.MQ
}

// Option configures a Server.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock tokens are issued and verified against.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSeed fills an empty store with demo data on start.
func WithSeed(seed bool) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithEvents publishes account events to queue instead of the configured backend.
func WithEvents(queue *mq.MQ) Option {
	return func(o *options) {
		o.events = queue
	}
}

type repositories interface {
	services.UserRepository
	services.MarketplaceRepository
}

type splitRepositories struct {
	*store.UserRepository
	*store.MarketplaceRepository
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	o := options{logger: slog.Default(), clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	jwtSecret := strings.TrimSpace(cfg.Server.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT secret is required (server.jwt_secret or JWT_SECRET)")
	}

	var (
		repos  repositories
		dbConn *sql.DB
	)
	switch cfg.Server.Store {
	case config.StorePostgres:
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		dbConn = conn
		repos = splitRepositories{
			UserRepository:        store.NewUserRepository(conn),
			MarketplaceRepository: store.NewMarketplaceRepository(conn),
		}
	default:
		repos = store.NewMemory()
	}

	if o.seed {
		if err := services.Seed(ctx, repos, repos); err != nil {
			if dbConn != nil {
				_ = dbConn.Close()
			}
			return nil, fmt.Errorf("seed data: %w", err)
		}
		o.logger.Info("demo data ready")
	}

	queue := o.events
	if queue == nil {
		opened, err := mq.Open(ctx, cfg.Events)
		if err != nil {
			if dbConn != nil {
				_ = dbConn.Close()
			}
			return nil, fmt.Errorf("open events: %w", err)
		}
		queue = opened
	}

	// The in-process broker has no outside consumer, so mail goes to the log.
	stopMailer := func() {}
	if queue != nil && o.events == nil && cfg.Events.Backend == config.EventsMemory {
		mailerCtx, cancel := context.WithCancel(context.Background())
		stopMailer = cancel
		go func() {
			err := queue.Subscribe(mailerCtx, cfg.Events.Channel, services.LogMailer(o.logger))
			if err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Error("mailer stopped", "error", err)
			}
		}()
	}

	userService := services.NewUserService(repos)
	dashboardService := services.NewDashboardService(repos, repos)

	tokens := handlers.NewTokens(jwtSecret, o.clock)
	authMiddleware := handlers.RequireAuth(tokens)
	authHandler := handlers.NewAuthHandler(userService, tokens, handlers.AuthConfig{
		TokenTTL: cfg.Server.TokenTTL,
		ResetTTL: cfg.Server.ResetTTL,
		Events:   services.NewAccountEvents(queue, cfg.Events.Channel, o.clock, o.logger),
	}, o.logger)
	dashboardHandler := handlers.NewDashboardHandler(userService, dashboardService, o.logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)

	basePath := "/" + strings.Trim(cfg.Server.BasePath, "/")
	router.Route(basePath, func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authHandler)
		})
		api.Route("/dashboard", func(r chi.Router) {
			handlers.DashboardRouter(r, dashboardHandler, authMiddleware)
		})
	})

	port := cfg.Server.Port
	if port == 0 {
		port = 5000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     queue,
		stopMailer: stopMailer,
		logger:     o.logger,
	}, nil
}

// Router exposes the chi router for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.stopMailer()
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
