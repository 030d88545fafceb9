package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendInvitationRequest struct {
	RecipientID uuid.UUID `json:"recipientId" validate:"required"`
	ProjectID   uuid.UUID `json:"projectId" validate:"required"`
}

type CollaborationRequest struct {
	ProjectID uuid.UUID `json:"projectId" validate:"required"`
	TargetID  uuid.UUID `json:"targetId" validate:"required"`
}

type InviteByEmailRequest struct {
	Email     string    `json:"email" validate:"required,email,max=180"`
	ProjectID uuid.UUID `json:"projectId" validate:"required"`
}

type JoinWithCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type InvitationResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Token       string     `json:"token,omitempty"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	Email       *string    `json:"email,omitempty"`
	ProjectID   uuid.UUID  `json:"project_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Attempts    *int       `json:"attempts,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PendingInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
	Total       int                  `json:"total"`
}

type MessageResponse struct {
	Message    string              `json:"message"`
	Invitation *InvitationResponse `json:"invitation,omitempty"`
}
