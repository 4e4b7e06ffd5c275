package microblog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

// RegisterUserRoutes wires the user directory, sign-up, profile
// management, and follow listing actions. Guarded actions get the
// session guard's middleware; edit/update additionally require the actor
// to own the record, destroy requires an admin.
func RegisterUserRoutes[T any](app router.Router[T], guard *SessionGuard, opts ...UsersControllerOption) {

	controller := NewUsersController(opts...)

	signedIn := guard.RequireSignedIn()
	loadSession := guard.LoadSession()
	self := guard.RequireSelf("id")
	admin := guard.RequireAdmin()

	app.Get(controller.Routes.New, controller.New).
		SetName("users.new")
	app.Post(controller.Routes.Create, controller.Create).
		SetName("users.create")

	app.Get(controller.Routes.Index, controller.Index, signedIn).
		SetName("users.index")
	app.Get(controller.Routes.Show, controller.Show, loadSession).
		SetName("users.show")

	app.Get(controller.Routes.Edit, controller.Edit, signedIn, self).
		SetName("users.edit")
	app.Put(controller.Routes.Update, controller.Update, signedIn, self).
		SetName("users.update")
	app.Delete(controller.Routes.Destroy, controller.Destroy, signedIn, admin).
		SetName("users.destroy")

	app.Get(controller.Routes.Following, controller.Following, signedIn).
		SetName("users.following")
	app.Get(controller.Routes.Followers, controller.Followers, signedIn).
		SetName("users.followers")
}

type UsersControllerRoutes struct {
	Index     string
	Show      string
	New       string
	Create    string
	Edit      string
	Update    string
	Destroy   string
	Following string
	Followers string
}

type UsersControllerViews struct {
	Index    string
	Show     string
	New      string
	Edit     string
	Follow   string
	NotFound string
}

type UsersController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       HTTPAuthenticator
	Routes       *UsersControllerRoutes
	Views        *UsersControllerViews
	ErrorHandler router.ErrorHandler
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &UsersControllerRoutes{
			Index:     "/users",
			Show:      "/users/:id",
			New:       "/signup",
			Create:    "/users",
			Edit:      "/users/:id/edit",
			Update:    "/users/:id",
			Destroy:   "/users/:id",
			Following: "/users/:id/following",
			Followers: "/users/:id/followers",
		},
		Views: &UsersControllerViews{
			Index:    "users/index",
			Show:     "users/show",
			New:      "users/new",
			Edit:     "users/edit",
			Follow:   "users/show_follow",
			NotFound: "errors/404",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in users controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in users controller...")
	}

	return c
}

func (a *UsersController) WithLogger(logger Logger) *UsersController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// Index renders one page of the user directory
func (a *UsersController) Index(ctx router.Context) error {
	page, err := a.Repo.Users().List(ctx.Context(), ctx.QueryInt("page", 1))
	if err != nil {
		a.Logger.Error("users index list error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(a.Views.Index, router.ViewContext{
		"title": "All users",
		"users": page,
	})
}

// Show renders a user profile with their microposts and follow counts
func (a *UsersController) Show(ctx router.Context) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.renderNotFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	posts, err := a.Repo.Microposts().ListByUser(ctx.Context(), user.ID, ctx.QueryInt("page", 1))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	followingCount, err := a.Repo.Follows().CountFollowing(ctx.Context(), user.ID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	followersCount, err := a.Repo.Follows().CountFollowers(ctx.Context(), user.ID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	following := false
	if viewer, ok := CurrentUser(ctx); ok && viewer.ID != user.ID {
		if following, err = a.Repo.Follows().IsFollowing(ctx.Context(), viewer.ID, user.ID); err != nil {
			return a.ErrorHandler(ctx, err)
		}
	}

	return ctx.Render(a.Views.Show, router.ViewContext{
		"title":           user.Name,
		"user":            user,
		"microposts":      posts,
		"following":       following,
		"following_count": followingCount,
		"followers_count": followersCount,
	})
}

// New renders the sign-up form
func (a *UsersController) New(ctx router.Context) error {
	return ctx.Render(a.Views.New, router.ViewContext{
		"title":  "Sign up",
		"record": SignupPayload{},
	})
}

// SignupPayload is the sign-up form payload
type SignupPayload struct {
	Name                 string `form:"name" json:"name"`
	Email                string `form:"email" json:"email"`
	Password             string `form:"password" json:"password"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(
			&r.PasswordConfirmation,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// Create handles the sign-up submission: on success the new user is
// persisted, signed in, welcomed with a flash and redirected to their
// profile. Validation failures re-render the form with the submitted
// values preserved.
func (a *UsersController) Create(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.New, router.ViewContext{
			"title":  "Sign up",
			"record": payload,
		})
	}

	if a.Debug {
		fmt.Println("======= SIGN UP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("======================")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return ctx.Render(a.Views.New, router.ViewContext{
			"title":      "Sign up",
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	var created *User
	req := RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(u *User) {
			created = u
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("signup register error", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error creating account",
		}).Render(a.Views.New, router.ViewContext{
			"title":  "Sign up",
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	if err := a.Auther.SignInUser(ctx, created); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Welcome to the Sample App!",
	}).Redirect(a.showPath(created), fiber.StatusSeeOther)
}

// Edit renders the profile edit form for the signed-in user
func (a *UsersController) Edit(ctx router.Context) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.renderNotFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(a.Views.Edit, router.ViewContext{
		"title": "Edit user",
		"record": UpdateProfilePayload{
			Name:  user.Name,
			Email: user.Email,
		},
		"user": user,
	})
}

// UpdateProfilePayload is the profile edit form payload. A blank
// password leaves the stored credential untouched.
type UpdateProfilePayload struct {
	Name                 string `form:"name" json:"name"`
	Email                string `form:"email" json:"email"`
	Password             string `form:"password" json:"password"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation"`
}

// Validate will run validation rules
func (r UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Length(6, 72)),
		validation.Field(
			&r.PasswordConfirmation,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// Update applies a profile edit. Failures re-render the edit form with
// the submitted values; success flashes a confirmation and redirects to
// the profile.
func (a *UsersController) Update(ctx router.Context) error {
	payload := new(UpdateProfilePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("profile update parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Edit, router.ViewContext{
			"title":  "Edit user",
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("profile update validate payload", "error", err)
		return ctx.Render(a.Views.Edit, router.ViewContext{
			"title":      "Edit user",
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.renderNotFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	user.Name = payload.Name
	user.Email = NormalizeEmail(payload.Email)

	if payload.Password != "" {
		hash, err := HashPassword(payload.Password)
		if err != nil {
			return a.ErrorHandler(ctx, err)
		}
		user.PasswordHash = hash
	}

	if user, err = a.Repo.Users().Update(ctx.Context(), user); err != nil {
		a.Logger.Error("profile update error", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error updating profile",
		}).Render(a.Views.Edit, router.ViewContext{
			"title":  "Edit user",
			"record": payload,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Profile updated.",
	}).Redirect(a.showPath(user), fiber.StatusSeeOther)
}

// Destroy removes a user record, their microposts and follow edges,
// then returns to the directory. The admin requirement is enforced by
// middleware before this runs.
func (a *UsersController) Destroy(ctx router.Context) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.renderNotFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	destroyUser := NewDestroyUserHandler(a.Repo)
	if err := destroyUser.Execute(ctx.Context(), DestroyUserMessage{UserID: user.ID}); err != nil {
		a.Logger.Error("user destroy error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "User destroyed.",
	}).Redirect(a.Routes.Index, fiber.StatusSeeOther)
}

// Following lists the users the subject follows
func (a *UsersController) Following(ctx router.Context) error {
	return a.renderFollowPage(ctx, "Following", a.Repo.Follows().Following)
}

// Followers lists the users following the subject
func (a *UsersController) Followers(ctx router.Context) error {
	return a.renderFollowPage(ctx, "Followers", a.Repo.Follows().Followers)
}

func (a *UsersController) renderFollowPage(ctx router.Context, title string, list func(context.Context, uuid.UUID, int) (*Page[*User], error)) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.renderNotFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	page, err := list(ctx.Context(), user.ID, ctx.QueryInt("page", 1))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(a.Views.Follow, router.ViewContext{
		"title": title,
		"user":  user,
		"users": page,
	})
}

func (a *UsersController) renderNotFound(ctx router.Context) error {
	return ctx.Status(fiber.StatusNotFound).Render(a.Views.NotFound, router.ViewContext{
		"title": "Not found",
	})
}

func (a *UsersController) showPath(user *User) string {
	return strings.Replace(a.Routes.Show, ":id", user.ID.String(), 1)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for view rendering
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
