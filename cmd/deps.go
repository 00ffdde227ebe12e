package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/gateway"
	"github.com/frahmantamala/hr-portal/internal/output"
	"github.com/frahmantamala/hr-portal/internal/session"
	"github.com/frahmantamala/hr-portal/internal/session/postgres"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

// Dependencies is everything a client command needs, built from config.
type Dependencies struct {
	Config    *internal.Config
	Logger    *slog.Logger
	DB        *gorm.DB
	Bus       *events.EventBus
	Store     *session.Store
	Gateway   *gateway.Client
	Auth      *auth.Service
	Employees *employee.Client
	Navigator *auth.Navigator
	Printer   *output.Printer
}

func initLogger(cfg *internal.Config) *slog.Logger {
	logger.InitWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return logger.LoggerWrapper()
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := initLogger(cfg)

	db, err := postgres.Open(cfg.Session.Driver, cfg.Session.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := postgres.Migrate(ctx, db, cfg.Session.Driver, false); err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	bus := events.NewEventBus(log)
	store := session.NewStore(
		session.WithPersister(postgres.NewSessionRepository(db, cfg.Session.Profile, log), cfg.Session.AutoPersist),
		session.WithEventBus(bus),
		session.WithLogger(log),
	)
	if err := store.Load(ctx); err != nil {
		closeDB(db, log)
		return nil, err
	}

	jar, err := gateway.NewPersistentJar(ctx, cfg.API.BaseURL, postgres.NewCookieRepository(db, cfg.Session.Profile), log)
	if err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}

	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Jar:     jar,
	}, store, log)
	if err != nil {
		closeDB(db, log)
		return nil, err
	}

	employees := employee.NewClient(gw, log,
		employee.WithEventBus(bus),
		employee.WithPermissions(auth.NewPermissionChecker(), store),
	)

	return &Dependencies{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Bus:       bus,
		Store:     store,
		Gateway:   gw,
		Auth:      auth.NewService(gw, store, log),
		Employees: employees,
		Navigator: auth.NewNavigator(store, log),
		Printer:   printer(),
	}, nil
}

// Close flushes the session when write-through is off and releases the database.
func (d *Dependencies) Close(ctx context.Context) {
	if !d.Config.Session.AutoPersist {
		if err := d.Store.Save(ctx); err != nil {
			d.Logger.Error("failed to save session", "error", err)
		}
	}
	closeDB(d.DB, d.Logger)
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", "error", err)
	}
}

// withDeps runs fn with freshly built dependencies and closes them afterwards.
func withDeps(ctx context.Context, fn func(*Dependencies) error) error {
	deps, err := initializeDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)
	return fn(deps)
}
