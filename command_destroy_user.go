package microblog

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DestroyUserMessage struct {
	UserID uuid.UUID `json:"user_id"`
}

func (e DestroyUserMessage) Type() string { return "user.destroy" }

// DestroyUserHandler removes a user record together with everything
// hanging off it: their microposts and every follow edge touching them.
// Without the cleanup a destroyed user's posts would keep surfacing in
// their followers' feeds.
type DestroyUserHandler struct {
	repo RepositoryManager
}

func NewDestroyUserHandler(repo RepositoryManager) *DestroyUserHandler {
	return &DestroyUserHandler{repo: repo}
}

func (h *DestroyUserHandler) Execute(ctx context.Context, event DestroyUserMessage) error {
	if event.UserID == uuid.Nil {
		return goerrors.New("missing user id", goerrors.CategoryValidation)
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.Follows().DeleteForUserTx(ctx, tx, event.UserID); err != nil {
			return err
		}

		if err := h.repo.Microposts().DeleteByUserTx(ctx, tx, event.UserID); err != nil {
			return err
		}

		return h.repo.Users().DeleteTx(ctx, tx, event.UserID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not destroy user")
	}

	return nil
}
