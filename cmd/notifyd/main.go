// Command notifyd serves the notification engine over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifyengine/pkg/config"
	"github.com/dmitrymomot/notifyengine/pkg/email"
	"github.com/dmitrymomot/notifyengine/pkg/httpserver"
	"github.com/dmitrymomot/notifyengine/pkg/logger"
	"github.com/dmitrymomot/notifyengine/pkg/mongo"
	"github.com/dmitrymomot/notifyengine/pkg/notifications"
	"github.com/dmitrymomot/notifyengine/pkg/notifications/mongostore"
	"github.com/dmitrymomot/notifyengine/pkg/notifications/pgstore"
	"github.com/dmitrymomot/notifyengine/pkg/pg"
	"github.com/dmitrymomot/notifyengine/pkg/redis"
	"github.com/dmitrymomot/notifyengine/pkg/sms"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeMongo    = "mongo"
)

type appConfig struct {
	Store        string `env:"NOTIFY_STORE" envDefault:"memory"`
	ContactsFile string `env:"NOTIFY_CONTACTS_FILE"`

	Log    logger.Config
	HTTP   httpserver.Config
	Engine notifications.Config
	PG     pg.Config
	Mongo  mongo.Config
	Redis  redis.Config
	Email  email.Config
	SMS    sms.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithContextValue("request_id", middleware.RequestIDKey))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	checks := make(map[string]httpserver.Check)

	storage, err := openStorage(ctx, cfg, log, checks, &cleanup)
	if err != nil {
		return err
	}

	rules, err := cfg.Engine.Registry()
	if err != nil {
		return err
	}
	opts, err := cfg.Engine.Options()
	if err != nil {
		return err
	}
	opts = append(opts, notifications.WithLogger(log))

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cleanup = append(cleanup, func() { _ = client.Close() })
		checks["redis"] = httpserver.Check(redis.Healthcheck(client))
		opts = append(opts, notifications.WithLocker(redis.NewLockerFromConfig(client, cfg.Redis)))
	}

	transports, err := deliveryOptions(ctx, cfg, log)
	if err != nil {
		return err
	}
	opts = append(opts, transports...)

	manager := notifications.NewManager(storage, rules, opts...)
	log.InfoContext(ctx, "Notification engine ready",
		slog.String("store", cfg.Store),
		slog.Int("rules", len(rules.Rules())),
	)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, newRouter(manager, log, checks))
}

func openStorage(ctx context.Context, cfg appConfig, log *slog.Logger, checks map[string]httpserver.Check, cleanup *[]func()) (notifications.Storage, error) {
	switch cfg.Store {
	case storeMemory:
		log.WarnContext(ctx, "Using in-memory notification store; data is lost on restart")
		return notifications.NewMemoryStorage(), nil

	case storePostgres:
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		*cleanup = append(*cleanup, pool.Close)
		if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg.PG, log); err != nil {
			return nil, err
		}
		checks["postgres"] = httpserver.Check(pg.Healthcheck(pool))
		return pgstore.New(pool), nil

	case storeMongo:
		db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		client := db.Client()
		*cleanup = append(*cleanup, func() { _ = client.Disconnect(context.Background()) })
		store := mongostore.New(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		checks["mongodb"] = httpserver.Check(mongo.Healthcheck(client))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown NOTIFY_STORE %q: want %s, %s or %s", cfg.Store, storeMemory, storePostgres, storeMongo)
	}
}

// deliveryOptions picks the email and SMS senders. Email falls back to the
// dev directory sender and is disabled when neither is configured; SMS
// falls back to logging.
func deliveryOptions(ctx context.Context, cfg appConfig, log *slog.Logger) ([]notifications.Option, error) {
	contacts := notifications.StaticContacts{}
	if cfg.ContactsFile != "" {
		var err error
		if contacts, err = notifications.LoadContactsFile(cfg.ContactsFile); err != nil {
			return nil, err
		}
	}

	var opts []notifications.Option

	switch {
	case cfg.Email.PostmarkEnabled():
		client, err := email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return nil, err
		}
		opts = append(opts, notifications.WithEmailTransport(notifications.NewEmailTransport(client, contacts)))
	case cfg.Email.DevDir != "":
		sender := email.NewDevSender(cfg.Email.DevDir, email.WithDevLogger(log))
		opts = append(opts, notifications.WithEmailTransport(notifications.NewEmailTransport(sender, contacts)))
	default:
		log.WarnContext(ctx, "Email channel disabled: no Postmark tokens or EMAIL_DEV_DIR")
	}

	var sender sms.Sender = sms.NewLogSender(log)
	if cfg.SMS.Enabled() {
		snsSender, err := sms.NewSNSSender(ctx, cfg.SMS)
		if err != nil {
			return nil, err
		}
		sender = snsSender
	}
	opts = append(opts, notifications.WithSMSTransport(notifications.NewSMSTransport(sender, contacts)))

	return opts, nil
}
