package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"securetodo/internal/adapter/database/sqlite"
	"securetodo/internal/adapter/database/sqlite/repository"
	"securetodo/internal/adapter/feed"
	"securetodo/internal/adapter/telemetry"
	"securetodo/internal/adapter/validation"
	"securetodo/internal/adapter/worker"
	"securetodo/internal/core/port"
	"securetodo/internal/core/service"
	"securetodo/internal/core/util"
	"securetodo/internal/shared"
)

const serviceName = "securetodo"

// Container wires every component once at start up. Consumers receive the
// pieces they need from here instead of reaching for globals.
type Container struct {
	Config     *shared.AppConfig
	Logger     zerolog.Logger
	Telemetry  *telemetry.Container
	DB         *sqlite.DB
	Users      port.UserRepository
	Tasks      port.TaskRepository
	Feed       *feed.TaskFeed
	Auth       *service.AuthService
	TaskSvc    port.TaskService
	Dispatcher *worker.Dispatcher
	Controller *Controller

	ownsDB bool
}

type Option func(*options)

type options struct {
	db        *sqlite.DB
	telemetry telemetry.Config
}

// WithDB uses an already opened store. The container will not close it.
func WithDB(db *sqlite.DB) Option {
	return func(o *options) {
		o.db = db
	}
}

func WithTelemetry(cfg telemetry.Config) Option {
	return func(o *options) {
		o.telemetry = cfg
	}
}

func NewContainer(ctx context.Context, cfg *shared.AppConfig, logger zerolog.Logger, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		telemetry: telemetry.Config{
			ServiceName:    serviceName,
			ServiceVersion: "dev",
			Environment:    cfg.Environment,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	tel, err := telemetry.NewContainer(o.telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	// providers started above must not leak when a later step fails
	fail := func(err error) (*Container, error) {
		return nil, errors.Join(err, tel.Shutdown(ctx))
	}

	hasher, err := util.NewPasswordHasher(cfg.PasswordScheme, cfg.BcryptCost)
	if err != nil {
		return fail(err)
	}

	validator, err := validation.NewValidator()
	if err != nil {
		return fail(fmt.Errorf("init validator: %w", err))
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		DB:        o.db,
	}

	if c.DB == nil {
		c.DB, err = sqlite.Open(sqlite.Options{
			Path:           cfg.DatabasePath,
			Logger:         logger,
			TracerProvider: tel.TracerProvider,
			LogQueries:     cfg.LogQueries,
		})
		if err != nil {
			return fail(fmt.Errorf("open database: %w", err))
		}
		c.ownsDB = true
	}

	c.Users = repository.NewUserRepository(c.DB, tel.Probe)
	c.Tasks = repository.NewTaskRepository(c.DB, tel.Probe)
	c.Feed = feed.NewTaskFeed(c.Tasks, logger, tel.AppMetrics)

	c.Auth = service.NewAuthService(service.AuthDeps{
		Repo:      c.Users,
		Hasher:    hasher,
		Validator: validator,
		Session:   service.NewSession(),
		Telemetry: tel.Probe,
		Metrics:   tel.AppMetrics,
		Logger:    logger,
	})

	c.TaskSvc = service.NewTaskService(service.TaskDeps{
		Repo:      c.Tasks,
		Feed:      c.Feed,
		Validator: validator,
		Telemetry: tel.Probe,
		Metrics:   tel.AppMetrics,
		Logger:    logger,
	})

	c.Dispatcher = worker.NewDispatcher(cfg.Workers, cfg.WorkerQueue, logger, tel.AppMetrics)
	c.Dispatcher.Start(ctx)

	c.Controller = NewController(c.Auth, c.TaskSvc, c.Dispatcher, logger)

	logger.Info().
		Str("database", cfg.DatabasePath).
		Str("password_scheme", hasher.Scheme()).
		Int("workers", c.Dispatcher.Workers()).
		Msg("Container ready")

	return c, nil
}

// Close stops the workers after they drain, then releases the store and the
// telemetry providers.
func (c *Container) Close(ctx context.Context) error {
	c.Dispatcher.Stop()

	var errs []error
	if c.ownsDB {
		errs = append(errs, c.DB.Close())
	}
	errs = append(errs, c.Telemetry.Shutdown(ctx))

	return errors.Join(errs...)
}
