package validator

import (
	"strings"

	"setlist-api/core/validator"
	"setlist-api/modules/invitation/dto"

	"github.com/google/uuid"
)

func ValidateSendInvitation(req *dto.SendInvitationRequest) *validator.ValidationResult {
	result := &validator.ValidationResult{}
	if req.RecipientID == uuid.Nil {
		result.AddError("recipientId", "recipientId is required")
	}
	if req.ProjectID == uuid.Nil {
		result.AddError("projectId", "projectId is required")
	}
	return result
}

func ValidateCollaborationRequest(req *dto.CollaborationRequest) *validator.ValidationResult {
	result := &validator.ValidationResult{}
	if req.ProjectID == uuid.Nil {
		result.AddError("projectId", "projectId is required")
	}
	if req.TargetID == uuid.Nil {
		result.AddError("targetId", "targetId is required")
	}
	return result
}

func ValidateInviteByEmail(req *dto.InviteByEmailRequest) *validator.ValidationResult {
	req.Email = strings.TrimSpace(req.Email)
	return validator.Validate(req)
}

func ValidateJoinWithCode(req *dto.JoinWithCodeRequest) *validator.ValidationResult {
	req.Code = strings.TrimSpace(req.Code)
	return validator.Validate(req)
}
