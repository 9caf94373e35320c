package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/boxlabs/storagebox/internal/auth/http"
	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/internal/auth/store"
	redisdrv "github.com/boxlabs/storagebox/internal/auth/store/drivers/redis"
	"github.com/boxlabs/storagebox/internal/auth/store/drivers/sqlite"
	"github.com/boxlabs/storagebox/pkg/jwtx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the storage box service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	revocations store.RevokedTokens
	redisClient *goredis.Client // nil unless the redis backend is selected

	tokenService        *service.TokenService
	userService         *service.UserService
	roleService         *service.RoleService
	permissionService   *service.PermissionService
	categoryService     *service.CategoryService
	feeService          *service.FeeService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized and the
// baseline records seeded.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "storagebox",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY must be set")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("AUTH_ISSUER must not be empty")
	}
	codec, err := jwtx.NewCodec([]byte(cfg.SigningKey))
	if err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initRevocations(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices(codec)

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapService.Run(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to seed baseline records: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("storage box service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"revocation_backend", app.cfg.RevocationBackend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down storage box service")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.Close(); err != nil {
		return err
	}

	app.logger.Info("storage box service stopped")
	return nil
}

// Close releases the data-layer resources.
func (app *Application) Close() error {
	var errs []error
	if app.redisClient != nil {
		errs = append(errs, app.redisClient.Close())
	}
	errs = append(errs, app.db.Close())
	return errors.Join(errs...)
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initRevocations() error {
	switch app.cfg.RevocationBackend {
	case "sqlite", "":
		app.revocations = app.db.RevokedTokens()
	case "redis":
		app.redisClient = goredis.NewClient(&goredis.Options{Addr: app.cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
		}

		app.revocations = redisdrv.NewRevokedTokens(app.redisClient)
	default:
		return fmt.Errorf("unknown revocation backend %q", app.cfg.RevocationBackend)
	}
	return nil
}

func (app *Application) initServices(codec *jwtx.Codec) {
	app.tokenService = &service.TokenService{
		Codec:       codec,
		Store:       app.db,
		Revocations: app.revocations,
		Issuer:      app.cfg.Issuer,
		AccessTTL:   app.cfg.AccessTTL,
		RefreshTTL:  app.cfg.RefreshTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.roleService = &service.RoleService{Store: app.db}
	app.permissionService = &service.PermissionService{Store: app.db}
	app.categoryService = &service.CategoryService{Store: app.db}
	app.feeService = &service.FeeService{Store: app.db}

	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminUsername: app.cfg.AdminUsername,
		AdminPassword: app.cfg.AdminPassword,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.RoleService = app.roleService
	router.PermissionService = app.permissionService
	router.CategoryService = app.categoryService
	router.FeeService = app.feeService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
