package dto

import (
	"time"

	"setlist-api/modules/user/entity"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	IsPublic    bool      `json:"is_public"`
	SacemNumber *string   `json:"sacem_number,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToProfileResponse hides private fields unless self is true or the field's
// visibility flag is set.
func ToProfileResponse(u *entity.User, self bool) *ProfileResponse {
	resp := &ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsPublic:  u.IsPublic,
		CreatedAt: u.CreatedAt,
	}
	if self {
		resp.Email = u.Email
	}
	if self || u.SacemPublic {
		resp.SacemNumber = u.SacemNumber
	}
	if self || u.AddressPublic {
		resp.Address = u.Address
	}
	if self || u.PhonePublic {
		resp.Phone = u.Phone
	}
	return resp
}
