package handlers

import (
	"time"

	"github.com/dmitrymomot/academy/internal/web"
)

// All returns every API handler. heartbeat is the keep-alive interval of
// the event stream; jobs may be nil when no background tasks run.
func All(heartbeat time.Duration, jobs JobRunner) []web.Handler {
	return []web.Handler{
		Public{},
		Preferences{},
		Cart{},
		Auth{},
		Notifications{},
		Admin{Jobs: jobs},
		Events{Heartbeat: heartbeat},
	}
}
