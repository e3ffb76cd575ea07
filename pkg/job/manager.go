package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Manager runs registered tasks on their schedules.
type Manager struct {
	cron   *cron.Cron
	tasks  map[string]*task
	logger *slog.Logger
	cfg    *config

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	ctx     context.Context
	running sync.WaitGroup
}

type task struct {
	cfg     scheduleConfig
	entryID cron.EntryID
	// busy guards against overlapping runs of the same task.
	busy sync.Mutex
}

// NewManager creates a job manager with the given options.
// Every schedule is parsed up front; an invalid one is returned as an error.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := &config{
		logger:   slog.New(slog.DiscardHandler),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Manager{
		cron:   cron.New(cron.WithLocation(cfg.location), cron.WithParser(parser)),
		tasks:  make(map[string]*task, len(cfg.schedules)),
		logger: cfg.logger,
		cfg:    cfg,
	}

	for _, sc := range cfg.schedules {
		if _, ok := m.tasks[sc.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, sc.name)
		}
		t := &task{cfg: sc}
		id, err := m.cron.AddFunc(sc.schedule, func() { m.tick(t) })
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: %w", ErrInvalidSchedule, sc.schedule, sc.name, err)
		}
		t.entryID = id
		m.tasks[sc.name] = t
	}

	return m, nil
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Start begins running scheduled tasks. Tasks registered with
// WithStartupTask run once in the background right away.
// ctx scopes every task run; cancelling it or calling Stop stops them.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	m.cron.Start()
	m.started = true

	for _, t := range m.tasks {
		if t.cfg.runOnStart {
			go m.tick(t)
		}
	}

	m.logger.Info("job manager started", slog.Int("tasks", len(m.tasks)))
	return nil
}

// Stop stops scheduling and waits for running tasks to return or ctx to end.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrNotStarted
	}
	m.started = false
	cronDone := m.cron.Stop()
	cancel := m.cancel
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		m.running.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
	cancel()

	m.logger.Info("job manager stopped")
	return nil
}

// Run executes the named task immediately and returns its error.
// It waits if a scheduled run of the same task is in progress.
func (m *Manager) Run(ctx context.Context, name string) error {
	t, ok := m.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	t.busy.Lock()
	defer t.busy.Unlock()
	return m.execute(ctx, t)
}

// Next returns the next scheduled run of the named task. It is zero until
// the manager has started.
func (m *Manager) Next(name string) (time.Time, error) {
	t, ok := m.tasks[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.cron.Entry(t.entryID).Next, nil
}

// Tasks returns the registered task names.
func (m *Manager) Tasks() []string {
	names := make([]string, 0, len(m.tasks))
	for name := range m.tasks {
		names = append(names, name)
	}
	return names
}

func (m *Manager) tick(t *task) {
	if !t.busy.TryLock() {
		m.logger.Warn("task still running, skipping tick", slog.String("task", t.cfg.name))
		return
	}
	defer t.busy.Unlock()

	m.mu.Lock()
	ctx := m.ctx
	if !m.started || ctx == nil {
		m.mu.Unlock()
		return
	}
	m.running.Add(1)
	m.mu.Unlock()
	defer m.running.Done()

	_ = m.execute(ctx, t)
}

func (m *Manager) execute(ctx context.Context, t *task) (err error) {
	if m.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		if err != nil {
			m.logger.ErrorContext(ctx, "task failed",
				slog.String("task", t.cfg.name),
				slog.Duration("took", time.Since(start)),
				slog.Any("error", err),
			)
			return
		}
		m.logger.DebugContext(ctx, "task completed",
			slog.String("task", t.cfg.name),
			slog.Duration("took", time.Since(start)),
		)
	}()

	return t.cfg.handler(ctx)
}

// Shutdown returns a shutdown function for the job manager.
func (m *Manager) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Stop(ctx)
	}
}

// StartFunc returns a startup function for the job manager.
func (m *Manager) StartFunc() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Start(ctx)
	}
}
