// Command academy serves the course store and school admin API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrymomot/academy/internal/config"
	"github.com/dmitrymomot/academy/internal/handlers"
	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/provider"
	"github.com/dmitrymomot/academy/internal/tasks"
	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/middlewares"
	"github.com/dmitrymomot/academy/pkg/cookie"
	"github.com/dmitrymomot/academy/pkg/db"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/health"
	"github.com/dmitrymomot/academy/pkg/job"
	"github.com/dmitrymomot/academy/pkg/kv"
	"github.com/dmitrymomot/academy/pkg/logger"
	"github.com/dmitrymomot/academy/pkg/mailer"
	"github.com/dmitrymomot/academy/pkg/mailer/resend"
	"github.com/dmitrymomot/academy/pkg/redis"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Logger, cfg.Sentry,
		logger.Extract("request_id", middlewares.GetRequestID),
		logger.Extract("visitor_id", provider.VisitorID),
	)

	checks := health.Checks{}
	var (
		startup  []web.Hook
		shutdown []web.Hook
	)

	bus := events.NewBus(events.WithLogger(log))

	var storage kv.Storage
	switch cfg.StorageDriver {
	case config.DriverRedis:
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		storage = kv.NewRedis(client, kv.WithRedisPrefix(cfg.StoragePrefix))
		checks["redis"] = redis.Healthcheck(client)

		// Instances sharing Redis see each other's events.
		bridge := events.NewBridge(client, bus,
			events.WithChannel(cfg.StoragePrefix+":events"),
			events.WithBridgeLogger(log),
		)
		startup = append(startup, bridge.Start)
		shutdown = append(shutdown, bridge.Stop, redis.Shutdown(client))

	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx, pool, kv.Migrations, "migrations", cfg.DB.MigrationsTable, log); err != nil {
			pool.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		storage = kv.NewPostgres(pool)
		checks["postgres"] = db.Healthcheck(pool)
		shutdown = append(shutdown, db.Shutdown(pool))

	default:
		storage = kv.NewMemory()
		shutdown = append(shutdown, func(context.Context) error { return storage.Close() })
	}
	checks["storage"] = kv.Healthcheck(storage)

	bundle, err := locales.Bundle()
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	var sender mailer.Sender = mailer.Noop{Logger: log}
	if cfg.Resend.Enabled() {
		sender = resend.New(cfg.Resend)
	}
	mail := mailer.New(sender, fmt.Sprintf("%s <%s>", cfg.Resend.SenderName, cfg.Resend.SenderEmail))

	site := provider.NewSite(storage, bus, bundle,
		provider.WithLogger(log),
		provider.WithBcryptCost(cfg.BcryptCost),
		provider.WithMailer(mail),
		provider.WithTouchInterval(cfg.VisitorTouchInterval),
	)
	startup = append(startup, func(ctx context.Context) error {
		site.Load(ctx)
		return nil
	})

	cookies, err := cookie.New(
		cookie.WithSecret(cfg.CookieSecret),
		cookie.WithSecure(cfg.CookieSecure),
		cookie.WithDomain(cfg.CookieDomain),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	if err != nil {
		return fmt.Errorf("cookies: %w", err)
	}

	jobs, err := job.NewManager(
		job.WithLogger(log),
		job.WithLocation(cfg.Location()),
		job.WithTimeout(cfg.JobTimeout),
		job.WithStartupTask(tasks.NewCancelPendingOrders(
			site.Orders, site.Inbox, bundle,
			cfg.PendingOrderTTL, cfg.CancelPendingSchedule, nil, log,
		)),
		job.WithScheduledTask(tasks.NewPurgeVisitors(
			storage, provider.VisitorPrefix,
			cfg.VisitorTTL, cfg.PurgeVisitorsSchedule, log,
		)),
	)
	if err != nil {
		return fmt.Errorf("job manager: %w", err)
	}
	checks["jobs"] = job.Healthcheck(jobs)
	startup = append(startup, jobs.StartFunc())
	// Jobs stop before the backends they write to.
	shutdown = append([]web.Hook{jobs.Shutdown()}, shutdown...)

	app := web.New(
		web.WithLogger(log),
		web.WithHTTPMiddleware(middlewares.CORS(cfg.CORS)),
		web.WithMiddleware(
			middlewares.Recover(),
			middlewares.RequestID(),
			middlewares.RequestLogger(),
			provider.Middleware(site, cookies),
		),
		web.WithHandlers(handlers.All(cfg.EventsHeartbeat, jobs)...),
		web.WithErrorHandler(handlers.ErrorHandler(bundle)),
		web.WithNotFound(handlers.NotFound),
		web.WithHealthChecks(checks),
	)

	opts := []web.RunOption{
		web.Address(cfg.Address),
		web.Logger(log),
		web.ShutdownTimeout(cfg.ShutdownTimeout),
	}
	for _, h := range startup {
		opts = append(opts, web.StartupHook(h))
	}
	for _, h := range shutdown {
		opts = append(opts, web.ShutdownHook(h))
	}

	if err := web.Run(ctx, app, opts...); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
