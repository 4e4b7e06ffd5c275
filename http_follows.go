package microblog

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

// RegisterFollowRoutes wires the follow and unfollow actions, both
// restricted to signed-in users.
func RegisterFollowRoutes[T any](app router.Router[T], guard *SessionGuard, opts ...FollowsControllerOption) {
	controller := NewFollowsController(opts...)

	signedIn := guard.RequireSignedIn()

	app.Post(controller.Routes.Create, controller.Create, signedIn).
		SetName("relationships.create")
	app.Delete(controller.Routes.Destroy, controller.Destroy, signedIn).
		SetName("relationships.destroy")
}

type FollowsControllerRoutes struct {
	Create  string
	Destroy string
}

type FollowsController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *FollowsControllerRoutes
	ProfilePath  string
	RootPath     string
	ErrorHandler router.ErrorHandler
}

type FollowsControllerOption func(*FollowsController) *FollowsController

func NewFollowsController(opts ...FollowsControllerOption) *FollowsController {
	c := &FollowsController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		ProfilePath:  "/users/:id",
		RootPath:     "/",
		Routes: &FollowsControllerRoutes{
			Create:  "/relationships",
			Destroy: "/relationships/:id",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in follows controller...")
	}

	return c
}

func (a *FollowsController) WithLogger(logger Logger) *FollowsController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// FollowPayload names the user to follow
type FollowPayload struct {
	FollowedID string `form:"followed_id" json:"followed_id"`
}

// Validate will run validation rules
func (r FollowPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FollowedID, validation.Required, is.UUIDv4),
	)
}

// Create records a follow edge from the signed-in user to the submitted
// target and returns to the target's profile.
func (a *FollowsController) Create(ctx router.Context) error {
	actor, ok := CurrentUser(ctx)
	if !ok {
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	payload := new(FollowPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("follow parse payload", "error", err)
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("follow validate payload", "error", err)
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	followedID, err := uuid.Parse(payload.FollowedID)
	if err != nil {
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	followUser := NewFollowUserHandler(a.Repo)
	if err := followUser.Execute(ctx.Context(), FollowUserMessage{
		FollowerID: actor.ID,
		FollowedID: followedID,
	}); err != nil {
		a.Logger.Error("follow error", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Could not follow user",
		}).Redirect(a.profilePath(followedID), fiber.StatusSeeOther)
	}

	return ctx.Redirect(a.profilePath(followedID), fiber.StatusSeeOther)
}

// Destroy removes the signed-in user's follow edge to the user named in
// the route and returns to that profile.
func (a *FollowsController) Destroy(ctx router.Context) error {
	actor, ok := CurrentUser(ctx)
	if !ok {
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	followedID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.Redirect(a.RootPath, http.StatusSeeOther)
	}

	unfollowUser := NewUnfollowUserHandler(a.Repo)
	if err := unfollowUser.Execute(ctx.Context(), UnfollowUserMessage{
		FollowerID: actor.ID,
		FollowedID: followedID,
	}); err != nil {
		a.Logger.Error("unfollow error", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Could not unfollow user",
		}).Redirect(a.profilePath(followedID), fiber.StatusSeeOther)
	}

	return ctx.Redirect(a.profilePath(followedID), fiber.StatusSeeOther)
}

func (a *FollowsController) profilePath(id uuid.UUID) string {
	return strings.Replace(a.ProfilePath, ":id", id.String(), 1)
}
