package handlers

import (
	"net/http"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

// Auth serves sign-in and the profile of the signed-in user.
type Auth struct{}

// Routes implements web.Handler.
func (h Auth) Routes(r web.Router) {
	r.Route("/api/auth", func(r web.Router) {
		r.POST("/login", h.login)
		r.POST("/register", h.register)
		r.POST("/logout", h.logout)
		r.GET("/me", h.me)
	})
	r.Route("/api/profile", func(r web.Router) {
		r.Use(RequireUser())
		r.PUT("/", h.updateProfile)
		r.PUT("/password", h.changePassword)
		r.GET("/purchases", h.purchases)
	})
}

// session is the signed-in user with the page the client should open.
type session struct {
	User     *auth.User `json:"user"`
	Redirect string     `json:"redirect,omitempty"`
}

func newSession(u auth.User) session {
	pub := u.Public()
	return session{User: &pub, Redirect: u.Role.HomePath()}
}

type loginBody struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h Auth) login(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body loginBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	u, err := root.Session.Login(c, body.Login, body.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, newSession(u), "auth.logged_in", i18n.M{"name": u.Name})
}

func (h Auth) register(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body auth.RegisterInput
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	u, err := root.Session.Register(c, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, root, newSession(u), "auth.registered", i18n.M{"name": u.Name})
}

func (h Auth) logout(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	if err := root.Session.Logout(c); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, session{}, "auth.logged_out")
}

// me answers with a null user for anonymous visitors.
func (h Auth) me(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	u, signed := root.User(c)
	if !signed {
		return send(c, session{})
	}
	return send(c, newSession(u))
}

func (h Auth) updateProfile(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body auth.ProfileInput
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	u, err := root.Session.UpdateProfile(c, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, u.Public(), "profile.updated")
}

func (h Auth) changePassword(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body auth.PasswordInput
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	if err := root.Session.ChangePassword(c, body); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, nil, "profile.password_changed")
}

func (h Auth) purchases(c web.Context) error {
	root, u, err := signedIn(c)
	if err != nil {
		return err
	}
	return send(c, root.Site().Orders.GetUserPurchases(c, u.ID))
}
