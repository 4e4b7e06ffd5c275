package microblog

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type FollowUserMessage struct {
	FollowerID uuid.UUID `json:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id"`
}

func (e FollowUserMessage) Type() string { return "user.follow" }

type UnfollowUserMessage struct {
	FollowerID uuid.UUID `json:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id"`
}

func (e UnfollowUserMessage) Type() string { return "user.unfollow" }

// FollowUserHandler records a follow edge. Following someone twice is a
// no-op; following yourself is a validation error.
type FollowUserHandler struct {
	repo RepositoryManager
}

func NewFollowUserHandler(repo RepositoryManager) *FollowUserHandler {
	return &FollowUserHandler{repo: repo}
}

func (h *FollowUserHandler) Execute(ctx context.Context, event FollowUserMessage) error {
	if event.FollowerID == event.FollowedID {
		return goerrors.Wrap(ErrSelfFollow, goerrors.CategoryValidation, "invalid follow target")
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Follows().FollowTx(ctx, tx, event.FollowerID, event.FollowedID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not record follow")
	}

	return nil
}

type UnfollowUserHandler struct {
	repo RepositoryManager
}

func NewUnfollowUserHandler(repo RepositoryManager) *UnfollowUserHandler {
	return &UnfollowUserHandler{repo: repo}
}

func (h *UnfollowUserHandler) Execute(ctx context.Context, event UnfollowUserMessage) error {
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Follows().UnfollowTx(ctx, tx, event.FollowerID, event.FollowedID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not remove follow")
	}

	return nil
}
