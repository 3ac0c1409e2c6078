package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/config"
	"github.com/RubachokBoss/exam-eligibility/internal/delivery/httpd"
	appmiddleware "github.com/RubachokBoss/exam-eligibility/internal/middleware"
	"github.com/RubachokBoss/exam-eligibility/internal/repository"
	"github.com/RubachokBoss/exam-eligibility/internal/service"
	"github.com/RubachokBoss/exam-eligibility/internal/service/integration"
	"github.com/RubachokBoss/exam-eligibility/pkg/hash"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type App struct {
	server      *http.Server
	logger      zerolog.Logger
	config      *config.Config
	db          *sql.DB
	publisher   integration.EventPublisher
	authService service.AuthService

	sweeperCtx  context.Context
	stopSweeper context.CancelFunc
	sweeperOnce sync.Once
	sweeperDone chan struct{}
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	publisher := newPublisher(cfg.RabbitMQ, log)

	userRepo := repository.NewUserRepository(db, log)
	recordRepo := repository.NewRecordRepository(db, log)

	var sessionRepo repository.SessionRepository
	switch cfg.Session.Store {
	case "memory":
		sessionRepo = repository.NewMemorySessionRepository()
	default:
		sessionRepo = repository.NewPostgresSessionRepository(db, log)
	}

	hasher := hash.NewBcryptHasher(cfg.Auth.BcryptCost)

	authService := service.NewAuthService(userRepo, sessionRepo, hasher, cfg.Session.TTL, log)
	studentService := service.NewStudentService(userRepo, recordRepo, hasher, publisher, cfg.Auth.ReservedUsernames, log)
	recordService := service.NewRecordService(userRepo, recordRepo, publisher, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, teacher := range cfg.Auth.BootstrapTeachers {
		if err := authService.EnsureTeacher(ctx, teacher.Username, teacher.Password); err != nil {
			publisher.Close()
			return nil, fmt.Errorf("failed to bootstrap teacher %q: %w", teacher.Username, err)
		}
	}

	renderer, err := httpd.NewRenderer()
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	handler := httpd.NewHandler(
		authService,
		studentService,
		recordService,
		renderer,
		httpd.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.SecureCookie,
			MaxAge: cfg.Session.TTL,
		},
		db,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appmiddleware.RequestLogger(log))
	router.Use(appmiddleware.Recovery(log))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	router.Use(appmiddleware.CORS(cfg.CORS))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())

	return &App{
		server:      server,
		logger:      log,
		config:      cfg,
		db:          db,
		publisher:   publisher,
		authService: authService,
		sweeperCtx:  sweeperCtx,
		stopSweeper: stopSweeper,
		sweeperDone: make(chan struct{}),
	}, nil
}

// newPublisher falls back to a no-op publisher; the app works without a broker.
func newPublisher(cfg config.RabbitMQConfig, log zerolog.Logger) integration.EventPublisher {
	if !cfg.Enabled {
		return integration.NewNopPublisher()
	}

	publisher, err := integration.NewRabbitMQPublisher(cfg.URL, cfg.Exchange, cfg.QueueName, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to RabbitMQ, events disabled")
		return integration.NewNopPublisher()
	}
	return publisher
}

func (a *App) Run() error {
	a.sweeperOnce.Do(func() {
		go a.sweepSessions(a.sweeperCtx, a.config.Session.CleanupInterval)
	})

	a.logger.Info().Msgf("Starting exam eligibility service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

// sweepSessions purges expired sessions until ctx is cancelled.
func (a *App) sweepSessions(ctx context.Context, interval time.Duration) {
	defer close(a.sweeperDone)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := a.authService.PurgeExpired(ctx)
			if err != nil {
				a.logger.Error().Err(err).Msg("Failed to purge expired sessions")
				continue
			}
			if purged > 0 {
				a.logger.Debug().Int64("purged", purged).Msg("Expired sessions purged")
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down exam eligibility service...")

	err := a.server.Shutdown(ctx)

	a.stopSweeper()
	// Run may never have started the sweeper.
	a.sweeperOnce.Do(func() { close(a.sweeperDone) })
	<-a.sweeperDone

	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return err
}
