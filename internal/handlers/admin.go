package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/internal/report"
	"github.com/dmitrymomot/academy/internal/settings"
	"github.com/dmitrymomot/academy/internal/teacher"
	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

const dateLayout = "2006-01-02"

// Admin serves the back office.
type Admin struct {
	// Jobs exposes the background tasks. The job routes are not mounted
	// when it is nil.
	Jobs JobRunner
}

// Routes implements web.Handler.
func (h Admin) Routes(r web.Router) {
	r.Route("/api/admin", func(r web.Router) {
		r.Group(func(r web.Router) {
			r.Use(RequireRole(auth.RoleAdmin, auth.RoleHR))
			r.GET("/teachers", h.teachers)
			r.POST("/teachers", h.createTeacher)
			r.PUT("/teachers/{id}", h.updateTeacher)
			r.DELETE("/teachers/{id}", h.deleteTeacher)
		})

		r.Group(func(r web.Router) {
			r.Use(RequireRole(auth.RoleAdmin))
			r.GET("/orders", h.orders)
			r.PATCH("/orders/{id}", h.updateOrder)
			r.GET("/reports", h.reports)
			r.GET("/settings", h.settings)
			r.PUT("/settings", h.updateSettings)
			r.GET("/content/{page}", h.page)
			r.PUT("/content/{page}", h.updatePage)
			r.POST("/notifications", h.notify)
			r.GET("/users", h.users)
			r.GET("/messages", h.messages)
			r.POST("/messages/{id}/handled", h.messageHandled)
			if h.Jobs != nil {
				r.GET("/jobs", h.jobs)
				r.POST("/jobs/{name}/run", h.runJob)
			}
		})
	})
}

// orders lists every order, optionally filtered by status and userId.
func (h Admin) orders(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	status := purchase.Status(c.Query("status"))
	var userID int
	if v := c.Query("userId"); v != "" {
		if userID, err = strconv.Atoi(v); err != nil {
			return web.ErrBadRequest("invalid userId", web.WithErrorCode("bad_request"), web.WithError(err))
		}
	}

	all := root.Site().Orders.GetAllPurchases(c)
	out := make([]purchase.Purchase, 0, len(all))
	for _, p := range all {
		if status != "" && p.Status != status {
			continue
		}
		if userID != 0 && p.UserID != userID {
			continue
		}
		out = append(out, p)
	}
	return send(c, out)
}

type orderStatusBody struct {
	Status purchase.Status `json:"status"`
}

// updateOrder changes an order's status and tells its owner.
func (h Admin) updateOrder(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body orderStatusBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	site := root.Site()
	p, err := site.Orders.UpdatePurchaseStatus(c, c.Param("id"), body.Status)
	if err != nil {
		return err
	}

	bundle := site.Bundle()
	lang := bundle.DefaultLanguage()
	status := bundle.T(lang, locales.Toast, "status."+string(p.Status))
	if _, err := site.Inbox.Add(c, notification.New{
		UserID:  notification.For(p.UserID),
		Title:   bundle.T(lang, locales.Notifications, "order_status.title"),
		Message: bundle.T(lang, locales.Notifications, "order_status.message", i18n.M{"id": p.ID, "status": status}),
		Type:    notification.TypeOrder,
	}); err != nil {
		c.Logger().ErrorContext(c, "notify order owner failed",
			slog.String("order_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
	return respond(c, http.StatusOK, root, p, "admin.order_updated", i18n.M{"id": p.ID})
}

// reports summarises orders between from and to, both inclusive dates.
func (h Admin) reports(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var f report.Filter
	if v := c.Query("from"); v != "" {
		if f.From, err = time.Parse(dateLayout, v); err != nil {
			return web.ErrBadRequest("invalid from date", web.WithErrorCode("bad_request"), web.WithError(err))
		}
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return web.ErrBadRequest("invalid to date", web.WithErrorCode("bad_request"), web.WithError(err))
		}
		f.To = to.AddDate(0, 0, 1)
	}
	return send(c, report.Build(root.Site().Orders.GetAllPurchases(c), f))
}

func (h Admin) teachers(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	return send(c, root.Site().Teachers.List(c, teacher.Status(c.Query("status"))))
}

func (h Admin) createTeacher(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body teacher.Input
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	t, err := root.Site().Teachers.Create(c, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, root, t, "admin.teacher_created")
}

func (h Admin) updateTeacher(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	var body teacher.Input
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	t, err := root.Site().Teachers.Update(c, id, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, t, "admin.teacher_updated")
}

func (h Admin) deleteTeacher(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	if err := root.Site().Teachers.Delete(c, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, nil, "admin.teacher_deleted")
}

func (h Admin) settings(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	return send(c, root.Site().Content.Settings(c))
}

func (h Admin) updateSettings(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body settings.Settings
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	s, err := root.Site().Content.UpdateSettings(c, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, s, "admin.settings_saved")
}

func (h Admin) page(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	p, err := root.Site().Content.Page(c, c.Param("page"))
	if err != nil {
		return err
	}
	return send(c, p)
}

func (h Admin) updatePage(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body settings.PageInput
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	p, err := root.Site().Content.UpdatePage(c, c.Param("page"), body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, p, "admin.page_saved")
}

type notifyBody struct {
	// UserID addresses one user; null broadcasts to everyone.
	UserID  *int              `json:"userId"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Type    notification.Type `json:"type"`
}

func (h Admin) notify(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body notifyBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	site := root.Site()
	if body.UserID != nil {
		if _, err := site.Users.Get(c, *body.UserID); err != nil {
			return err
		}
	}
	n, err := site.Inbox.Add(c, notification.New{
		UserID:  body.UserID,
		Title:   body.Title,
		Message: body.Message,
		Type:    body.Type,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, root, n, "notifications.sent")
}

func (h Admin) users(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	users := root.Site().Users.List(c)
	out := make([]auth.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return send(c, out)
}

func (h Admin) messages(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	return send(c, root.Site().Contact.List(c))
}

func (h Admin) messageHandled(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	if err := root.Site().Contact.MarkHandled(c, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func uuidParam(c web.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, web.ErrBadRequest("invalid id", web.WithErrorCode("bad_request"), web.WithError(err))
	}
	return id, nil
}
