package job_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/job"
)

type countTask struct {
	name     string
	schedule string
	calls    atomic.Int32
	err      error
	panic    bool
}

func (t *countTask) Name() string     { return t.name }
func (t *countTask) Schedule() string { return t.schedule }
func (t *countTask) Handle(context.Context) error {
	t.calls.Add(1)
	if t.panic {
		panic("boom")
	}
	return t.err
}

func TestNewManager_Schedules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr error
	}{
		{name: "every minute", expr: "* * * * *"},
		{name: "every 15 minutes", expr: "*/15 * * * *"},
		{name: "weekly on Sunday", expr: "0 0 * * 0"},
		{name: "descriptor", expr: "@hourly"},
		{name: "interval", expr: "@every 10m"},
		{name: "six fields", expr: "0 0 * * * *", wantErr: job.ErrInvalidSchedule},
		{name: "garbage", expr: "soon", wantErr: job.ErrInvalidSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := job.NewManager(job.WithScheduledTask(&countTask{name: "t", schedule: tt.expr}))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewManager_DuplicateTask(t *testing.T) {
	t.Parallel()

	_, err := job.NewManager(
		job.WithScheduledTask(&countTask{name: "same", schedule: "@hourly"}),
		job.WithScheduledTask(&countTask{name: "same", schedule: "@daily"}),
	)
	require.ErrorIs(t, err, job.ErrDuplicateTask)
}

func TestManager_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ok := &countTask{name: "ok", schedule: "@hourly"}
	failing := &countTask{name: "failing", schedule: "@hourly", err: errors.New("nope")}
	panicking := &countTask{name: "panicking", schedule: "@hourly", panic: true}

	m, err := job.NewManager(
		job.WithScheduledTask(ok),
		job.WithScheduledTask(failing),
		job.WithScheduledTask(panicking),
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ok", "failing", "panicking"}, m.Tasks())

	require.NoError(t, m.Run(ctx, "ok"))
	assert.EqualValues(t, 1, ok.calls.Load())

	require.EqualError(t, m.Run(ctx, "failing"), "nope")
	require.ErrorIs(t, m.Run(ctx, "panicking"), job.ErrTaskPanicked)
	require.ErrorIs(t, m.Run(ctx, "missing"), job.ErrUnknownTask)
}

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	startup := &countTask{name: "startup", schedule: "@daily"}
	m, err := job.NewManager(job.WithStartupTask(startup))
	require.NoError(t, err)

	check := job.Healthcheck(m)
	require.ErrorIs(t, check(ctx), job.ErrHealthcheckFailed)
	require.ErrorIs(t, m.Stop(ctx), job.ErrNotStarted)

	require.NoError(t, m.StartFunc()(ctx))
	require.ErrorIs(t, m.Start(ctx), job.ErrAlreadyStarted)
	require.NoError(t, check(ctx))

	require.Eventually(t, func() bool { return startup.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	next, err := m.Next("startup")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))

	require.NoError(t, m.Shutdown()(ctx))
	require.ErrorIs(t, check(ctx), job.ErrHealthcheckFailed)
}

func TestHealthcheck_NilManager(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, job.Healthcheck(nil)(context.Background()), job.ErrHealthcheckFailed)
}
