package microblog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MicropostMaxLength bounds micropost content
const MicropostMaxLength = 140

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Admin         bool       `bun:"admin,notnull,default:false" json:"admin,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// NormalizeEmail lowercases the email so the unique index treats
// addresses case-insensitively.
func (u *User) NormalizeEmail() *User {
	u.Email = NormalizeEmail(u.Email)
	return u
}

// NormalizeEmail is the canonical form we store and look up emails in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Micropost is a short content item owned by exactly one user.
// Immutable once created except for deletion.
type Micropost struct {
	bun.BaseModel `bun:"table:microposts,alias:mp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Relationship is a directed follow edge: follower follows followed.
// The (follower_id, followed_id) pair is unique at the storage layer so
// concurrent follow calls cannot create duplicate edges.
type Relationship struct {
	bun.BaseModel `bun:"table:relationships,alias:rel"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FollowerID    uuid.UUID  `bun:"follower_id,notnull,type:uuid" json:"follower_id,omitempty"`
	FollowedID    uuid.UUID  `bun:"followed_id,notnull,type:uuid" json:"followed_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
