package microblog_test

import (
	"testing"

	microblog "github.com/goliatone/go-microblog"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCanModify(t *testing.T) {
	self := &microblog.User{ID: uuid.New()}
	other := &microblog.User{ID: uuid.New()}

	tests := []struct {
		name   string
		actor  *microblog.User
		target *microblog.User
		want   bool
	}{
		{"owner can modify own record", self, self, true},
		{"cannot modify another user", self, other, false},
		{"nil actor", nil, self, false},
		{"nil target", self, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, microblog.CanModify(tt.actor, tt.target))
		})
	}
}

func TestCanDestroy(t *testing.T) {
	admin := &microblog.User{ID: uuid.New(), Admin: true}
	member := &microblog.User{ID: uuid.New()}

	assert.True(t, microblog.CanDestroy(admin))
	assert.False(t, microblog.CanDestroy(member))
	assert.False(t, microblog.CanDestroy(nil))
}

func newTestGuard(t *testing.T) (*microblog.SessionGuard, *MockAuthenticator) {
	t.Helper()

	mockAuth := new(MockAuthenticator)
	auther, err := microblog.NewHTTPAuthenticator(mockAuth, testConfig{})
	require.NoError(t, err)

	return microblog.NewSessionGuard(mockAuth, auther, testConfig{}), mockAuth
}

func TestRequireSelfAllowsOwner(t *testing.T) {
	guard, _ := newTestGuard(t)
	actor := &microblog.User{ID: uuid.New()}

	ctx := new(MockContext)
	ctx.On("Locals", microblog.ContextKeyCurrentUser).Return(actor)
	ctx.On("Param", "id").Return(actor.ID.String())

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.RequireSelf("id")(next)(ctx)
	require.NoError(t, err)
	assert.True(t, nextCalled)
}

func TestRequireSelfRedirectsOtherUser(t *testing.T) {
	guard, _ := newTestGuard(t)
	actor := &microblog.User{ID: uuid.New()}

	ctx := new(MockContext)
	ctx.On("Locals", microblog.ContextKeyCurrentUser).Return(actor)
	ctx.On("Param", "id").Return(uuid.New().String())
	ctx.On("Redirect", "/", mock.Anything).Return(nil)

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.RequireSelf("id")(next)(ctx)
	require.NoError(t, err)
	assert.False(t, nextCalled)
	ctx.AssertCalled(t, "Redirect", "/", mock.Anything)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	guard, _ := newTestGuard(t)
	actor := &microblog.User{ID: uuid.New(), Admin: true}

	ctx := new(MockContext)
	ctx.On("Locals", microblog.ContextKeyCurrentUser).Return(actor)

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.RequireAdmin()(next)(ctx)
	require.NoError(t, err)
	assert.True(t, nextCalled)
}

func TestRequireAdminRedirectsMember(t *testing.T) {
	guard, _ := newTestGuard(t)
	actor := &microblog.User{ID: uuid.New()}

	ctx := new(MockContext)
	ctx.On("Locals", microblog.ContextKeyCurrentUser).Return(actor)
	ctx.On("Redirect", "/", mock.Anything).Return(nil)

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.RequireAdmin()(next)(ctx)
	require.NoError(t, err)
	assert.False(t, nextCalled)
	ctx.AssertCalled(t, "Redirect", "/", mock.Anything)
}
