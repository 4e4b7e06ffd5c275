package microblog

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// CanModify reports whether actor may edit target's profile: users only
// manage their own record.
func CanModify(actor, target *User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.ID == target.ID
}

// CanDestroy reports whether actor may destroy user records. Admins may
// destroy any record, themselves included.
func CanDestroy(actor *User) bool {
	return actor != nil && actor.Admin
}

// RequireSelf protects edit/update style actions: the :id route param
// must name the signed-in user. A signed-in but non-matching actor is
// forbidden, not unauthenticated, so the redirect goes home rather than
// to the sign-in page. Must run after RequireSignedIn.
func (g *SessionGuard) RequireSelf(param string) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			actor, ok := CurrentUser(ctx)
			if !ok {
				return g.DenyNotSignedIn(ctx, ErrUnableToFindSession)
			}

			if actor.ID.String() != ctx.Param(param) {
				g.Logger.Info(
					"Actor does not own resource, redirecting",
					"actor_id", actor.ID,
					"target_id", ctx.Param(param),
				)
				return ctx.Redirect(g.RootPath, http.StatusSeeOther)
			}

			return next(ctx)
		}
	}
}

// RequireAdmin protects destroy style actions. Must run after
// RequireSignedIn.
func (g *SessionGuard) RequireAdmin() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			actor, ok := CurrentUser(ctx)
			if !ok {
				return g.DenyNotSignedIn(ctx, ErrUnableToFindSession)
			}

			if !CanDestroy(actor) {
				g.Logger.Info("Actor is not an admin, redirecting", "actor_id", actor.ID)
				return ctx.Redirect(g.RootPath, http.StatusSeeOther)
			}

			return next(ctx)
		}
	}
}
