package microblog

import (
	"crypto/md5"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns helper functions and data for the view engine.
//
// In templates you can use:
//
//	{% if current_user %}
//	{% if is_admin(current_user) %}
//	<img class="gravatar" src="{{ gravatar_url(user.email, 80) }}">
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"is_admin":         isAdmin,
		"gravatar_url":     GravatarURL,
		"per_page":         DefaultPerPage,
	}
}

// TemplateHelpersWithRouter returns template helpers with the signed-in
// user pulled from the router context when a guard stored one.
func TemplateHelpersWithRouter(ctx router.Context, userKey string) map[string]any {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	helpers := TemplateHelpers()

	if user := ctx.Locals(userKey); user != nil {
		helpers[TemplateUserKey] = user
	}

	return helpers
}

// MergeTemplateData layers per-request view data over the router-aware
// helpers so every render sees current_user without handlers passing it
// explicitly.
func MergeTemplateData(ctx router.Context, data router.ViewContext) router.ViewContext {
	merged := router.ViewContext{}
	maps.Copy(merged, TemplateHelpersWithRouter(ctx, TemplateUserKey))
	maps.Copy(merged, data)
	return merged
}

// GetTemplateUser extracts the signed-in user from router context for
// template usage
func GetTemplateUser(ctx router.Context, userKey string) (any, bool) {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	user := ctx.Locals(userKey)
	return user, user != nil
}

// GravatarURL returns the Gravatar image URL for an email address
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 80
	}
	digest := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%x?s=%d", digest, size)
}

// isAuthenticated checks if the provided user object is not nil
func isAuthenticated(user any) bool {
	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case map[string]any:
		return len(u) > 0
	default:
		return false
	}
}

// isAdmin checks if the user carries the admin flag
func isAdmin(user any) bool {
	switch u := user.(type) {
	case *User:
		return u != nil && u.Admin
	case User:
		return u.Admin
	case map[string]any:
		admin, _ := u["admin"].(bool)
		return admin
	default:
		return false
	}
}
