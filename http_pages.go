package microblog

import (
	"github.com/goliatone/go-router"
)

// RegisterPageRoutes wires the home page and the static pages. The home
// page loads the session when present so it can render the signed-in
// variant with the post form and the user's feed.
func RegisterPageRoutes[T any](app router.Router[T], guard *SessionGuard, opts ...PagesControllerOption) {
	controller := NewPagesController(opts...)

	loadSession := guard.LoadSession()

	app.Get(controller.Routes.Home, controller.Home, loadSession).
		SetName("pages.home")
	app.Get(controller.Routes.Help, controller.Help).
		SetName("pages.help")
	app.Get(controller.Routes.About, controller.About).
		SetName("pages.about")
	app.Get(controller.Routes.Contact, controller.Contact).
		SetName("pages.contact")
}

type PagesControllerRoutes struct {
	Home    string
	Help    string
	About   string
	Contact string
}

type PagesControllerViews struct {
	Home    string
	Help    string
	About   string
	Contact string
}

type PagesController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *PagesControllerRoutes
	Views        *PagesControllerViews
	ErrorHandler router.ErrorHandler
}

type PagesControllerOption func(*PagesController) *PagesController

func NewPagesController(opts ...PagesControllerOption) *PagesController {
	c := &PagesController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &PagesControllerRoutes{
			Home:    "/",
			Help:    "/help",
			About:   "/about",
			Contact: "/contact",
		},
		Views: &PagesControllerViews{
			Home:    "pages/home",
			Help:    "pages/help",
			About:   "pages/about",
			Contact: "pages/contact",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in pages controller...")
	}

	return c
}

func (a *PagesController) WithLogger(logger Logger) *PagesController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// Home renders the landing page. Signed-in users get their feed and the
// micropost form; anonymous visitors get the welcome hero.
func (a *PagesController) Home(ctx router.Context) error {
	actor, ok := CurrentUser(ctx)
	if !ok {
		return ctx.Render(a.Views.Home, router.ViewContext{
			"title": "Home",
		})
	}

	feed, err := a.Repo.Microposts().Feed(ctx.Context(), actor.ID, ctx.QueryInt("page", 1))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(a.Views.Home, router.ViewContext{
		"title":  "Home",
		"user":   actor,
		"feed":   feed,
		"record": MicropostPayload{},
	})
}

func (a *PagesController) Help(ctx router.Context) error {
	return ctx.Render(a.Views.Help, router.ViewContext{"title": "Help"})
}

func (a *PagesController) About(ctx router.Context) error {
	return ctx.Render(a.Views.About, router.ViewContext{"title": "About"})
}

func (a *PagesController) Contact(ctx router.Context) error {
	return ctx.Render(a.Views.Contact, router.ViewContext{"title": "Contact"})
}
