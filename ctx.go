package microblog

import (
	"context"

	"github.com/goliatone/go-router"
)

// ContextKeyCurrentUser is the locals key the session guard stores the
// signed-in user under.
const ContextKeyCurrentUser = "current_user"

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// CurrentUser extracts the signed-in user placed in the router context by
// the session guard.
func CurrentUser(ctx router.Context) (*User, bool) {
	raw := ctx.Locals(ContextKeyCurrentUser)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

// SignedIn reports whether the request carries a signed-in user
func SignedIn(ctx router.Context) bool {
	_, ok := CurrentUser(ctx)
	return ok
}
