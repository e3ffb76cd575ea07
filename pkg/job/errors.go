package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is returned by Run for a name that was not registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidSchedule is returned when a task's cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("job: invalid schedule")

	// ErrDuplicateTask is returned when two tasks share a name.
	ErrDuplicateTask = errors.New("job: duplicate task name")

	// ErrAlreadyStarted is returned when attempting to start a manager
	// that is already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when attempting to stop a manager
	// that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrTaskPanicked wraps a recovered panic from a task handler.
	ErrTaskPanicked = errors.New("job: task panicked")
)
