package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/catalog"
	"github.com/dmitrymomot/academy/internal/contact"
	"github.com/dmitrymomot/academy/internal/provider"
	"github.com/dmitrymomot/academy/internal/web"
)

// Public serves the catalog, content pages and the contact form.
type Public struct{}

// Routes implements web.Handler.
func (h Public) Routes(r web.Router) {
	r.GET("/api/courses", h.courses)
	r.GET("/api/courses/{id}", h.course)
	r.GET("/api/jobs", h.jobs)
	r.GET("/api/about", h.about)
	r.GET("/api/pages/{page}", h.page)
	r.GET("/api/settings/public", h.settings)
	r.POST("/api/contact", h.contact)
}

// courseView is a course in the visitor's language.
type courseView struct {
	ID          int             `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Level       catalog.Level   `json:"level"`
	Duration    string          `json:"duration"`
	Teacher     string          `json:"teacher"`
	InCart      bool            `json:"inCart"`
	Purchased   bool            `json:"purchased"`
}

func viewCourse(c web.Context, root *provider.Root, course catalog.Course, lang string) courseView {
	v := courseView{
		ID:          course.ID,
		Slug:        course.Slug,
		Title:       course.Title.In(lang),
		Description: course.Description.In(lang),
		Price:       course.Price,
		Image:       course.Image,
		Level:       course.Level,
		Duration:    course.Duration,
		Teacher:     course.Teacher,
	}
	for _, it := range root.Cart.Items(c) {
		if it.ID == course.ID {
			v.InCart = true
			break
		}
	}
	if u, ok := root.User(c); ok {
		v.Purchased = root.Site().Orders.HasPurchased(c, u.ID, course.ID)
	}
	return v
}

func (h Public) courses(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	lang := root.Language(c)
	list := root.Site().Catalog.Courses(c, catalog.Level(c.Query("level")), c.Query("q"))

	out := make([]courseView, 0, len(list))
	for _, course := range list {
		out = append(out, viewCourse(c, root, course, lang))
	}
	return send(c, out)
}

// course accepts a numeric id or a slug.
func (h Public) course(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}

	var course catalog.Course
	if id, convErr := strconv.Atoi(c.Param("id")); convErr == nil {
		course, err = root.Site().Catalog.Course(c, id)
	} else {
		course, err = root.Site().Catalog.CourseBySlug(c, c.Param("id"))
	}
	if err != nil {
		return err
	}
	return send(c, viewCourse(c, root, course, root.Language(c)))
}

type jobView struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	Employment   string   `json:"employment"`
	Salary       string   `json:"salary"`
	Requirements []string `json:"requirements"`
}

func (h Public) jobs(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	lang := root.Language(c)

	jobs := root.Site().Catalog.Jobs(c)
	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		v := jobView{
			ID:           j.ID,
			Title:        j.Title.In(lang),
			Description:  j.Description.In(lang),
			Location:     j.Location,
			Employment:   j.Employment,
			Salary:       j.Salary,
			Requirements: make([]string, 0, len(j.Requirements)),
		}
		for _, req := range j.Requirements {
			v.Requirements = append(v.Requirements, req.In(lang))
		}
		out = append(out, v)
	}
	return send(c, out)
}

func (h Public) about(c web.Context) error {
	return h.render(c, "about")
}

func (h Public) page(c web.Context) error {
	return h.render(c, c.Param("page"))
}

func (h Public) render(c web.Context, slug string) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	page, err := root.Site().Content.Render(c, slug, root.Language(c))
	if err != nil {
		return err
	}
	return send(c, page)
}

type publicSettings struct {
	SiteName     string            `json:"siteName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	WorkingHours string            `json:"workingHours"`
	Socials      map[string]string `json:"socials"`
}

func (h Public) settings(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	s := root.Site().Content.Settings(c).Public()
	return send(c, publicSettings{
		SiteName:     s.SiteName,
		Email:        s.Email,
		Phone:        s.Phone,
		Address:      s.Address.In(root.Language(c)),
		WorkingHours: s.WorkingHours,
		Socials:      s.Socials,
	})
}

func (h Public) contact(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var form contact.Form
	if err := c.BindJSON(&form); err != nil {
		return err
	}
	msg, err := root.Site().Contact.Submit(c, form)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, root, msg, "contact.sent")
}
