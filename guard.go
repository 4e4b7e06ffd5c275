package microblog

import (
	"net/http"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// SigninNotice is the message shown when a guard rejects an anonymous
// request. Wording is free as long as it mentions signing in.
var SigninNotice = "Please sign in to access this page."

// SessionGuard is the precondition filter for actions that require a
// signed-in user. On success the user record is stored in locals and in
// the request context; on failure the request is redirected to the
// sign-in path with a notice flash.
type SessionGuard struct {
	auth       Authenticator
	auther     HTTPAuthenticator
	cfg        Config
	Logger     Logger
	SigninPath string
	RootPath   string
}

// NewSessionGuard builds the guard around the authenticator pair
func NewSessionGuard(auth Authenticator, auther HTTPAuthenticator, cfg Config) *SessionGuard {
	return &SessionGuard{
		auth:       auth,
		auther:     auther,
		cfg:        cfg,
		Logger:     defLogger{},
		SigninPath: "/signin",
		RootPath:   "/",
	}
}

func (g *SessionGuard) WithLogger(logger Logger) *SessionGuard {
	if logger != nil {
		g.Logger = logger
	}
	return g
}

// RequireSignedIn resolves the session cookie into a user record before
// the handler runs. Anonymous requests never reach the handler.
func (g *SessionGuard) RequireSignedIn() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token := ctx.Cookies(g.cfg.GetContextKey())
			if token == "" {
				return g.DenyNotSignedIn(ctx, ErrUnableToFindSession)
			}

			session, err := g.auth.SessionFromToken(token)
			if err != nil {
				return g.DenyNotSignedIn(ctx, err)
			}

			user, err := g.auth.UserFromSession(ctx.Context(), session)
			if err != nil {
				return g.DenyNotSignedIn(ctx, err)
			}

			ctx.Locals(ContextKeyCurrentUser, user)
			ctx.SetContext(WithContext(ctx.Context(), user))

			return next(ctx)
		}
	}
}

// LoadSession resolves the session cookie into a user record when one
// is present but never rejects the request. For pages that render both
// anonymous and signed-in variants.
func (g *SessionGuard) LoadSession() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token := ctx.Cookies(g.cfg.GetContextKey())
			if token == "" {
				return next(ctx)
			}

			session, err := g.auth.SessionFromToken(token)
			if err != nil {
				g.Logger.Debug("Ignoring invalid session token: %v", err)
				return next(ctx)
			}

			user, err := g.auth.UserFromSession(ctx.Context(), session)
			if err != nil {
				g.Logger.Debug("Ignoring stale session: %v", err)
				return next(ctx)
			}

			ctx.Locals(ContextKeyCurrentUser, user)
			ctx.SetContext(WithContext(ctx.Context(), user))

			return next(ctx)
		}
	}
}

// DenyNotSignedIn is the uniform failure path for guarded actions:
// remember the rejected URL, flash the sign-in notice, redirect.
func (g *SessionGuard) DenyNotSignedIn(ctx router.Context, err error) error {
	g.Logger.Info(
		"Sign in required, redirecting",
		"error", err,
		"path", ctx.OriginalURL(),
	)

	g.auther.SetRedirect(ctx)

	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}

	return flash.WithError(ctx, router.ViewContext{
		"system_message": SigninNotice,
	}).Redirect(g.SigninPath, statusCode)
}
