package entity

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID           uuid.UUID `db:"id" json:"id"`
	OwnerID      uuid.UUID `db:"owner_id" json:"owner_id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
	IsPublic     bool      `db:"is_public" json:"is_public"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Member struct {
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	Email    string    `db:"email" json:"email"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
