package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

// JobRunner is the part of job.Manager the back office drives.
type JobRunner interface {
	Tasks() []string
	Next(name string) (time.Time, error)
	Run(ctx context.Context, name string) error
}

type taskView struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"nextRun,omitempty"`
}

// jobs lists the background tasks with their next scheduled run.
// Startup tasks and a manager that has not started have no next run.
func (h Admin) jobs(c web.Context) error {
	names := h.Jobs.Tasks()
	slices.Sort(names)

	out := make([]taskView, 0, len(names))
	for _, name := range names {
		v := taskView{Name: name}
		if next, err := h.Jobs.Next(name); err == nil && !next.IsZero() {
			v.NextRun = &next
		}
		out = append(out, v)
	}
	return send(c, out)
}

// runJob runs a task now and waits for it.
func (h Admin) runJob(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	name := c.Param("name")
	if err := h.Jobs.Run(c, name); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, nil, "admin.job_ran", i18n.M{"name": name})
}
