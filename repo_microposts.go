package microblog

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Microposts is the persistence port for micropost records
type Microposts interface {
	Create(ctx context.Context, post *Micropost) (*Micropost, error)
	CreateTx(ctx context.Context, tx bun.IDB, post *Micropost) (*Micropost, error)
	GetByID(ctx context.Context, id string) (*Micropost, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, page int) (*Page[*Micropost], error)
	Feed(ctx context.Context, userID uuid.UUID, page int) (*Page[*Micropost], error)
}

type microposts struct {
	repo repository.Repository[*Micropost]
	db   *bun.DB
}

var _ Microposts = (*microposts)(nil)

// NewMicropostsRepository builds the bun backed Microposts store
func NewMicropostsRepository(db *bun.DB) Microposts {
	repo := repository.NewRepository[*Micropost](db, repository.ModelHandlers[*Micropost]{
		NewRecord: func() *Micropost { return &Micropost{} },
		GetID: func(m *Micropost) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Micropost, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &microposts{
		repo: repo,
		db:   db,
	}
}

func (a *microposts) Create(ctx context.Context, post *Micropost) (*Micropost, error) {
	return a.CreateTx(ctx, a.db, post)
}

func (a *microposts) CreateTx(ctx context.Context, tx bun.IDB, post *Micropost) (*Micropost, error) {
	if post != nil && post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return a.repo.CreateTx(ctx, tx, post)
}

func (a *microposts) GetByID(ctx context.Context, id string) (*Micropost, error) {
	return a.repo.GetByID(ctx, id)
}

func (a *microposts) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Micropost)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

// DeleteByUserTx removes every micropost a user authored; part of the
// destroy-user cleanup.
func (a *microposts) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Micropost)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}

// ListByUser returns one page of a user's microposts, newest first
func (a *microposts) ListByUser(ctx context.Context, userID uuid.UUID, page int) (*Page[*Micropost], error) {
	page = NormalizePage(page)

	var records []*Micropost
	total, err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at DESC, ?TableAlias.id DESC").
		Limit(DefaultPerPage).
		Offset(PageOffset(page, DefaultPerPage)).
		ScanAndCount(ctx)

	if err != nil {
		return nil, err
	}

	return NewPage(records, page, DefaultPerPage, total), nil
}

// Feed returns one page of the posts a user sees on their home feed:
// their own microposts plus those of everyone they follow, newest first
func (a *microposts) Feed(ctx context.Context, userID uuid.UUID, page int) (*Page[*Micropost], error) {
	page = NormalizePage(page)

	followed := a.db.NewSelect().
		Model((*Relationship)(nil)).
		ColumnExpr("?TableAlias.followed_id").
		Where("?TableAlias.follower_id = ?", userID)

	var records []*Micropost
	total, err := a.db.NewSelect().
		Model(&records).
		Relation("User").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.user_id = ?", userID).
				WhereOr("?TableAlias.user_id IN (?)", followed)
		}).
		OrderExpr("?TableAlias.created_at DESC, ?TableAlias.id DESC").
		Limit(DefaultPerPage).
		Offset(PageOffset(page, DefaultPerPage)).
		ScanAndCount(ctx)

	if err != nil {
		return nil, err
	}

	return NewPage(records, page, DefaultPerPage, total), nil
}
