package microblog

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterSessionRoutes wires sign in and sign out
func RegisterSessionRoutes[T any](app router.Router[T], opts ...SessionsControllerOption) {
	controller := NewSessionsController(opts...)

	app.Get(controller.Routes.SigninShow, controller.SigninShow).
		SetName("sessions.new")
	app.Post(controller.Routes.SigninCreate, controller.SigninCreate).
		SetName("sessions.create")
	app.Get(controller.Routes.Signout, controller.Signout).
		SetName("sessions.destroy")
}

type SessionsControllerRoutes struct {
	SigninShow   string
	SigninCreate string
	Signout      string
}

type SessionsControllerViews struct {
	Signin string
}

type SessionsController struct {
	Debug        bool
	Logger       Logger
	Auther       HTTPAuthenticator
	Routes       *SessionsControllerRoutes
	Views        *SessionsControllerViews
	RootPath     string
	ErrorHandler router.ErrorHandler
}

type SessionsControllerOption func(*SessionsController) *SessionsController

func NewSessionsController(opts ...SessionsControllerOption) *SessionsController {
	c := &SessionsController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		RootPath:     "/",
		Routes: &SessionsControllerRoutes{
			SigninShow:   "/signin",
			SigninCreate: "/signin",
			Signout:      "/signout",
		},
		Views: &SessionsControllerViews{
			Signin: "sessions/new",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in sessions controller...")
	}

	return c
}

func (a *SessionsController) WithLogger(logger Logger) *SessionsController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// SigninPayload is the sign-in form payload
type SigninPayload struct {
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	RememberMe string `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the lookup identifier, here the email
func (r SigninPayload) GetIdentifier() string {
	return r.Email
}

// GetPassword returns the submitted credential
func (r SigninPayload) GetPassword() string {
	return r.Password
}

// GetExtendedSession is true when the user checked remember me
func (r SigninPayload) GetExtendedSession() bool {
	return r.RememberMe == "on" || r.RememberMe == "true" || r.RememberMe == "1"
}

// Validate will run validation rules
func (r SigninPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// SigninShow renders the sign-in form
func (a *SessionsController) SigninShow(ctx router.Context) error {
	return ctx.Render(a.Views.Signin, router.ViewContext{
		"title":  "Sign in",
		"record": SigninPayload{},
	})
}

// SigninCreate verifies the submitted credentials. On success the
// session cookie is set and the request is redirected to the remembered
// rejected route, or home. Bad credentials re-render the form.
func (a *SessionsController) SigninCreate(ctx router.Context) error {
	payload := new(SigninPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signin parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Signin, router.ViewContext{
			"title":  "Sign in",
			"record": payload,
		})
	}

	if a.Debug {
		fmt.Println("======= SIGN IN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("======================")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signin validate payload", "error", err)
		return ctx.Render(a.Views.Signin, router.ViewContext{
			"title":      "Sign in",
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		a.Logger.Error("signin login error", "error", err, "identifier", payload.GetIdentifier())
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Invalid email/password combination",
		}).Render(a.Views.Signin, router.ViewContext{
			"title":  "Sign in",
			"record": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, a.RootPath)

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Signed in.",
	}).Redirect(redirect, fiber.StatusSeeOther)
}

// Signout clears the session cookie and returns home
func (a *SessionsController) Signout(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect(a.RootPath, fiber.StatusSeeOther)
}
