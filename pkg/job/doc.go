// Package job runs periodic tasks on cron schedules.
//
// Tasks are plain structs with Name(), Schedule() and Handle(ctx) methods.
// No interface import is required; the package uses structural typing:
//
//	type CancelPendingOrders struct {
//	    book *purchase.Book
//	    ttl  time.Duration
//	}
//
//	func (t *CancelPendingOrders) Name() string     { return "cancel_pending_orders" }
//	func (t *CancelPendingOrders) Schedule() string { return "*/15 * * * *" }
//	func (t *CancelPendingOrders) Handle(ctx context.Context) error {
//	    _, err := t.book.CancelStalePending(ctx, t.ttl)
//	    return err
//	}
//
// # Manager
//
//	m, err := job.NewManager(
//	    job.WithScheduledTask(tasks.NewCancelPendingOrders(book, 72*time.Hour)),
//	    job.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//
// Schedules use five fields (minute hour day month weekday) and the
// descriptors cron understands, such as @hourly or @every 10m. Invalid
// expressions fail NewManager.
//
// Runs of the same task never overlap; a run that is still executing when the
// next tick fires causes that tick to be skipped. Panics inside Handle are
// recovered and logged.
//
// # App Integration
//
// Start and Shutdown plug into the server's startup and shutdown hooks:
//
//	web.Run(ctx, app,
//	    web.StartupHook(m.StartFunc()),
//	    web.ShutdownHook(m.Shutdown()),
//	)
//
// Healthcheck reports whether the manager is running.
package job
