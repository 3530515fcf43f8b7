// Package server wires the account server together: configuration, the
// PostgreSQL store and its migrations, token and password primitives, media
// storage, and the HTTP and gRPC health servers, with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/1anshu-stack/backend/internal/cryptox"
	"github.com/1anshu-stack/backend/internal/filex"
	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/auth"
	"github.com/1anshu-stack/backend/internal/server/config"
	"github.com/1anshu-stack/backend/internal/server/health"
	"github.com/1anshu-stack/backend/internal/server/media"
	"github.com/1anshu-stack/backend/internal/server/repositories/repomanager"
	"github.com/1anshu-stack/backend/internal/server/services"

	gs "github.com/1anshu-stack/backend/internal/server/grpc"
	hs "github.com/1anshu-stack/backend/internal/server/http"
)

const readinessTimeout = 3 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	http   *hs.Server
	grpc   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	uploadDir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	if err := app.init(ctx, uploadDir); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context, uploadDir string) error {
	c := app.config

	rm, err := repomanager.NewPostgresRepositoryManager(app.db)
	if err != nil {
		return fmt.Errorf("repository manager: %w", err)
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	issuer, err := auth.NewIssuer(auth.Options{
		AccessSecret:  []byte(c.AccessTokenSecret),
		RefreshSecret: []byte(c.RefreshTokenSecret),
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	uploader, err := media.NewS3Uploader(ctx, media.Options{
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		Region:        c.S3Region,
		Bucket:        c.S3Bucket,
		BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("media storage: %w", err)
	}

	checks := []health.Check{{Name: "database", Fn: app.db.PingContext}}
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		app.redis = redis.NewClient(opts)
		checks = append(checks, health.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		}})
	}
	checker := health.NewChecker(readinessTimeout, checks...)

	sessions := services.NewSessionService(app.db, rm, cryptox.NewArgon2Hasher(cryptox.DefaultParams()), issuer, uploader, app.logger)
	accounts := services.NewAccountService(app.db, rm, uploader, app.logger)

	rateLimit, err := hs.NewIPRateLimiter(c.RateLimit, app.redis)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	handler := hs.NewHandler(sessions, accounts, issuer, hs.Options{
		AccessTTL:      c.AccessTokenTTL,
		RefreshTTL:     c.RefreshTokenTTL,
		UploadDir:      uploadDir,
		JSONBodyLimit:  c.JSONBodyLimit,
		MultipartLimit: c.MultipartLimit,
	}, app.logger)

	router := hs.NewRouter(hs.RouterConfig{
		Handler:    handler,
		Health:     checker,
		Prefix:     c.RoutePrefix,
		CORSOrigin: c.CORSOrigin,
		RateLimit:  rateLimit,
		Logger:     app.logger,
	})

	app.http = hs.NewServer(c.HTTPAddr, router, app.logger)
	app.grpc = gs.NewGRPCServer(c.GRPCAddr, app.logger, checker)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs one server and cancels the whole app when it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpc.Run)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
