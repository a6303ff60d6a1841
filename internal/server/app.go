// Package server initializes and runs the application: it wires the
// database, the revocation store, the services and the HTTP endpoint, and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/auth"
	"github.com/DeepaPrasanna/social-media/internal/server/config"
	"github.com/DeepaPrasanna/social-media/internal/server/httpapi"
	"github.com/DeepaPrasanna/social-media/internal/server/repositories/repomanager"
	"github.com/DeepaPrasanna/social-media/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redisClient *redis.Client
	authService *services.AuthService
	userService *services.UserService
	postService *services.PostService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pictures := services.NewProfilePictureStore(cfg)
	us := services.NewUserService(db, rm, pictures, logger)
	ps := services.NewPostService(db, rm, logger)
	as := services.NewAuthService(us, auth.NewRevocationList(redisClient), cfg, logger)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		authService: as,
		userService: us,
		postService: ps,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.authService, app.userService, app.postService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if err := app.redisClient.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}
}
