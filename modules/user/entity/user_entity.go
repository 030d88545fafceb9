package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type User struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	Username           string         `db:"username" json:"username"`
	Email              string         `db:"email" json:"email"`
	PasswordHash       string         `db:"password_hash" json:"-"`
	Roles              pq.StringArray `db:"roles" json:"roles"`
	IsPublic           bool           `db:"is_public" json:"is_public"`
	SacemNumber        *string        `db:"sacem_number" json:"sacem_number,omitempty"`
	Address            *string        `db:"address" json:"address,omitempty"`
	Phone              *string        `db:"phone" json:"phone,omitempty"`
	SacemPublic        bool           `db:"sacem_public" json:"sacem_public"`
	AddressPublic      bool           `db:"address_public" json:"address_public"`
	PhonePublic        bool           `db:"phone_public" json:"phone_public"`
	TwoFactorCode      *string        `db:"two_factor_code" json:"-"`
	TwoFactorExpiresAt *time.Time     `db:"two_factor_expires_at" json:"-"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// DisplayName falls back to the email when no username is set.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
