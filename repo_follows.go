package microblog

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Follows is the persistence port for the directed follow graph. Both
// directions are views over the same edge rows, so following(A) and
// followers(B) can never disagree about the A->B edge.
type Follows interface {
	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	FollowTx(ctx context.Context, tx bun.IDB, followerID, followedID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	UnfollowTx(ctx context.Context, tx bun.IDB, followerID, followedID uuid.UUID) error
	DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	Following(ctx context.Context, userID uuid.UUID, page int) (*Page[*User], error)
	Followers(ctx context.Context, userID uuid.UUID, page int) (*Page[*User], error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int, error)
}

type follows struct {
	db *bun.DB
}

var _ Follows = (*follows)(nil)

// NewFollowsRepository builds the bun backed follow edge store
func NewFollowsRepository(db *bun.DB) Follows {
	return &follows{db: db}
}

func (a *follows) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	return a.FollowTx(ctx, a.db, followerID, followedID)
}

// FollowTx records the edge. Duplicate follows are a no-op: the unique
// (follower_id, followed_id) index plus ON CONFLICT DO NOTHING keeps
// concurrent calls from creating a second edge.
func (a *follows) FollowTx(ctx context.Context, tx bun.IDB, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	edge := &Relationship{
		ID:         uuid.New(),
		FollowerID: followerID,
		FollowedID: followedID,
	}

	_, err := tx.NewInsert().
		Model(edge).
		On("CONFLICT (follower_id, followed_id) DO NOTHING").
		Exec(ctx)

	return err
}

func (a *follows) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	return a.UnfollowTx(ctx, a.db, followerID, followedID)
}

// UnfollowTx removes the edge; removing an absent edge is a no-op
func (a *follows) UnfollowTx(ctx context.Context, tx bun.IDB, followerID, followedID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Relationship)(nil)).
		Where("?TableAlias.follower_id = ?", followerID).
		Where("?TableAlias.followed_id = ?", followedID).
		Exec(ctx)
	return err
}

// DeleteForUserTx removes every edge touching a user, both the follows
// they initiated and the ones pointing at them; part of the
// destroy-user cleanup.
func (a *follows) DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Relationship)(nil)).
		Where("?TableAlias.follower_id = ? OR ?TableAlias.followed_id = ?", userID, userID).
		Exec(ctx)
	return err
}

func (a *follows) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	return a.db.NewSelect().
		Model((*Relationship)(nil)).
		Where("?TableAlias.follower_id = ?", followerID).
		Where("?TableAlias.followed_id = ?", followedID).
		Exists(ctx)
}

// Following lists the users that userID follows
func (a *follows) Following(ctx context.Context, userID uuid.UUID, page int) (*Page[*User], error) {
	return a.listEdgeUsers(ctx, page,
		"JOIN relationships AS rel ON rel.followed_id = usr.id",
		"rel.follower_id = ?", userID)
}

// Followers lists the users that follow userID
func (a *follows) Followers(ctx context.Context, userID uuid.UUID, page int) (*Page[*User], error) {
	return a.listEdgeUsers(ctx, page,
		"JOIN relationships AS rel ON rel.follower_id = usr.id",
		"rel.followed_id = ?", userID)
}

func (a *follows) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	return a.db.NewSelect().
		Model((*Relationship)(nil)).
		Where("?TableAlias.follower_id = ?", userID).
		Count(ctx)
}

func (a *follows) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	return a.db.NewSelect().
		Model((*Relationship)(nil)).
		Where("?TableAlias.followed_id = ?", userID).
		Count(ctx)
}

func (a *follows) listEdgeUsers(ctx context.Context, page int, join, where string, userID uuid.UUID) (*Page[*User], error) {
	page = NormalizePage(page)

	var records []*User
	total, err := a.db.NewSelect().
		Model(&records).
		Join(join).
		Where(where, userID).
		OrderExpr("?TableAlias.name ASC, ?TableAlias.id ASC").
		Limit(DefaultPerPage).
		Offset(PageOffset(page, DefaultPerPage)).
		ScanAndCount(ctx)

	if err != nil {
		return nil, err
	}

	return NewPage(records, page, DefaultPerPage, total), nil
}
