package handlers

import (
	"net/http"

	"github.com/dmitrymomot/academy/internal/cart"
	"github.com/dmitrymomot/academy/internal/checkout"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

// Cart serves the visitor's cart and checkout.
type Cart struct{}

// Routes implements web.Handler.
func (h Cart) Routes(r web.Router) {
	r.Route("/api/cart", func(r web.Router) {
		r.GET("/", h.show)
		r.DELETE("/", h.clear)
		r.POST("/items", h.add)
		r.PATCH("/items/{id}", h.update)
		r.DELETE("/items/{id}", h.remove)
	})
	r.POST("/api/checkout", h.checkout)
}

func (h Cart) show(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	return send(c, cart.Summarize(root.Cart.Items(c)))
}

type addItemBody struct {
	CourseID int `json:"courseId"`
	Quantity int `json:"quantity"`
}

// add puts a catalog course into the cart. Title and price come from the
// catalog, never from the client.
func (h Cart) add(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body addItemBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	if body.Quantity < 0 {
		return cart.ErrInvalidQuantity
	}

	course, err := root.Site().Catalog.Course(c, body.CourseID)
	if err != nil {
		return err
	}
	title := course.Title.In(root.Language(c))
	items, err := root.Cart.Add(c, cart.Item{
		ID:       course.ID,
		Title:    title,
		Price:    course.Price,
		Image:    course.Image,
		Quantity: body.Quantity,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, cart.Summarize(items), "cart.added", i18n.M{"title": title})
}

type quantityBody struct {
	Quantity int `json:"quantity"`
}

func (h Cart) update(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var body quantityBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	items, err := root.Cart.SetQuantity(c, id, body.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, cart.Summarize(items), "cart.updated")
}

func (h Cart) remove(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	items, err := root.Cart.Remove(c, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, cart.Summarize(items), "cart.removed")
}

func (h Cart) clear(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	if err := root.Cart.Clear(c); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, cart.Summarize(nil), "cart.cleared")
}

type checkoutBody struct {
	PaymentMethod purchase.PaymentMethod `json:"paymentMethod"`
}

func (h Cart) checkout(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	u, signed := root.User(c)
	if !signed {
		return checkout.ErrLoginRequired
	}
	var body checkoutBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}

	res, err := root.Site().Checkout.Checkout(c, checkout.Buyer{
		ID:       u.ID,
		Name:     u.Name,
		Language: root.Language(c),
	}, root.Cart, body.PaymentMethod)
	if err != nil {
		return err
	}

	key := "checkout.paid"
	if res.Status == purchase.StatusPending {
		key = "checkout.pending"
	}
	return respond(c, http.StatusCreated, root, res, key)
}
