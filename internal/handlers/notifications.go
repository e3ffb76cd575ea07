package handlers

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/web"
)

// Notifications serves the signed-in user's notifications.
type Notifications struct{}

// Routes implements web.Handler.
func (h Notifications) Routes(r web.Router) {
	r.Route("/api/notifications", func(r web.Router) {
		r.Use(RequireUser())
		r.GET("/", h.list)
		r.POST("/{id}/read", h.read)
		r.POST("/read-all", h.readAll)
		// The list is shared by every user, so only admins may wipe it.
		r.DELETE("/", h.clear, RequireRole(auth.RoleAdmin))
	})
}

type inboxView struct {
	Items  []notification.Notification `json:"items"`
	Unread int                         `json:"unread"`
}

// list returns the user's notifications. Admins pass all=true to see
// notifications addressed to anyone.
func (h Notifications) list(c web.Context) error {
	root, u, err := signedIn(c)
	if err != nil {
		return err
	}
	inbox := root.Site().Inbox

	view := inboxView{Unread: inbox.UnreadCount(c, u.ID)}
	if u.Role == auth.RoleAdmin && c.Query("all") == "true" {
		view.Items = inbox.All(c)
	} else {
		view.Items = inbox.ForUser(c, u.ID)
	}
	return send(c, view)
}

func (h Notifications) read(c web.Context) error {
	root, u, err := signedIn(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return web.ErrBadRequest("invalid id", web.WithErrorCode("bad_request"), web.WithError(err))
	}

	inbox := root.Site().Inbox
	if u.Role == auth.RoleAdmin {
		err = inbox.MarkRead(c, id)
	} else {
		err = inbox.MarkReadFor(c, u.ID, id)
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, inboxView{
		Items:  inbox.ForUser(c, u.ID),
		Unread: inbox.UnreadCount(c, u.ID),
	}, "notifications.read")
}

func (h Notifications) readAll(c web.Context) error {
	root, u, err := signedIn(c)
	if err != nil {
		return err
	}
	inbox := root.Site().Inbox
	if err := inbox.MarkAllRead(c, u.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, inboxView{
		Items:  inbox.ForUser(c, u.ID),
		Unread: 0,
	}, "notifications.all_read")
}

func (h Notifications) clear(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	root.Site().Inbox.Clear(c)
	return respond(c, http.StatusOK, root, inboxView{Items: []notification.Notification{}}, "notifications.cleared")
}
