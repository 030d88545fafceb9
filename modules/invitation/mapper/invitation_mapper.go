package mapper

import (
	"setlist-api/modules/invitation/dto"
	"setlist-api/modules/invitation/entity"

	"github.com/google/uuid"
)

// ToInvitationResponse hides the token from everyone but the sender and the
// recipient. Join codes are only ever revealed by email.
func ToInvitationResponse(inv *entity.Invitation, viewerID uuid.UUID) *dto.InvitationResponse {
	resp := &dto.InvitationResponse{
		ID:          inv.ID,
		Type:        string(inv.Type),
		Status:      string(inv.Status),
		SenderID:    inv.SenderID,
		RecipientID: inv.RecipientID,
		Email:       inv.Email,
		ProjectID:   inv.ProjectID,
		CreatedAt:   inv.CreatedAt,
	}
	if inv.Type != entity.TypeCodeInvitation && (inv.SenderID == viewerID || inv.IsRecipient(viewerID)) {
		resp.Token = inv.Token
	}
	if inv.Code != nil {
		expiresAt := inv.Code.ExpiresAt
		attempts := inv.Code.Attempts
		resp.ExpiresAt = &expiresAt
		resp.Attempts = &attempts
	}
	return resp
}

func ToInvitationResponses(invitations []entity.Invitation, viewerID uuid.UUID) []dto.InvitationResponse {
	out := make([]dto.InvitationResponse, 0, len(invitations))
	for i := range invitations {
		out = append(out, *ToInvitationResponse(&invitations[i], viewerID))
	}
	return out
}
