package entity

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusRevoked  Status = "revoked"
)

type Type string

const (
	TypeInvitation     Type = "invitation"
	TypeRequest        Type = "request"
	TypeCodeInvitation Type = "code_invitation"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInvitation, TypeRequest, TypeCodeInvitation:
		return true
	}
	return false
}

// transitions lists every status change the engine may write. Revoked is
// only ever read, and cancelling deletes the row instead of changing status.
var transitions = map[Status][]Status{
	StatusPending: {StatusAccepted, StatusDeclined},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CodeDetails is only present on code invitations.
type CodeDetails struct {
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

type Invitation struct {
	ID          uuid.UUID
	Type        Type
	Status      Status
	Token       string
	SenderID    uuid.UUID
	RecipientID *uuid.UUID
	Email       *string
	Username    *string
	ProjectID   uuid.UUID
	Code        *CodeDetails
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i *Invitation) IsPending() bool {
	return i.Status == StatusPending
}

// IsExpired is false for invitation types that never expire.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.Code != nil && now.After(i.Code.ExpiresAt)
}

func (i *Invitation) IsRecipient(userID uuid.UUID) bool {
	return i.RecipientID != nil && *i.RecipientID == userID
}

// Joiner is the user who becomes a member when the invitation is accepted.
// For a collaboration request that is the requester, who sent it.
func (i *Invitation) Joiner() uuid.UUID {
	if i.Type == TypeRequest {
		return i.SenderID
	}
	if i.RecipientID != nil {
		return *i.RecipientID
	}
	return uuid.Nil
}
