package microblog

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterMicropostRoutes wires micropost creation and deletion, both
// restricted to signed-in users.
func RegisterMicropostRoutes[T any](app router.Router[T], guard *SessionGuard, opts ...MicropostsControllerOption) {
	controller := NewMicropostsController(opts...)

	signedIn := guard.RequireSignedIn()

	app.Post(controller.Routes.Create, controller.Create, signedIn).
		SetName("microposts.create")
	app.Delete(controller.Routes.Destroy, controller.Destroy, signedIn).
		SetName("microposts.destroy")
}

type MicropostsControllerRoutes struct {
	Create  string
	Destroy string
}

type MicropostsController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *MicropostsControllerRoutes
	RootPath     string
	ErrorHandler router.ErrorHandler
}

type MicropostsControllerOption func(*MicropostsController) *MicropostsController

func NewMicropostsController(opts ...MicropostsControllerOption) *MicropostsController {
	c := &MicropostsController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		RootPath:     "/",
		Routes: &MicropostsControllerRoutes{
			Create:  "/microposts",
			Destroy: "/microposts/:id",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in microposts controller...")
	}

	return c
}

func (a *MicropostsController) WithLogger(logger Logger) *MicropostsController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// MicropostPayload is the post composition form payload
type MicropostPayload struct {
	Content string `form:"content" json:"content"`
}

// Validate will run validation rules
func (r MicropostPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, MicropostMaxLength)),
	)
}

// Create records a micropost for the signed-in user and returns home
func (a *MicropostsController) Create(ctx router.Context) error {
	actor, ok := CurrentUser(ctx)
	if !ok {
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	payload := new(MicropostPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("micropost parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Redirect(a.RootPath, fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("micropost validate payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Micropost could not be created",
			"validation":     FormatValidationErrorToMap(err),
		}).Redirect(a.RootPath, fiber.StatusSeeOther)
	}

	post := &Micropost{
		Content: payload.Content,
		UserID:  actor.ID,
	}

	if _, err := a.Repo.Microposts().Create(ctx.Context(), post); err != nil {
		a.Logger.Error("micropost create error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Micropost created!",
	}).Redirect(a.RootPath, fiber.StatusSeeOther)
}

// Destroy deletes one of the signed-in user's own microposts. Posts
// belonging to other users are left alone and the request goes home.
func (a *MicropostsController) Destroy(ctx router.Context) error {
	actor, ok := CurrentUser(ctx)
	if !ok {
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	post, err := a.Repo.Microposts().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.Redirect(a.RootPath, http.StatusSeeOther)
		}
		return a.ErrorHandler(ctx, err)
	}

	if post.UserID != actor.ID {
		a.Logger.Info(
			"Actor does not own micropost, redirecting",
			"actor_id", actor.ID,
			"micropost_id", post.ID,
		)
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	if err := a.Repo.Microposts().Delete(ctx.Context(), post.ID); err != nil {
		a.Logger.Error("micropost destroy error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Micropost deleted",
	}).Redirect(a.RootPath, fiber.StatusSeeOther)
}
