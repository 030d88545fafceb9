package mapper

import (
	"strings"

	"setlist-api/modules/project/dto"
	"setlist-api/modules/project/entity"

	"github.com/google/uuid"
)

func ToProjectEntity(req *dto.ProjectRequest, ownerID uuid.UUID) *entity.Project {
	return &entity.Project{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
}

func ToProjectResponse(p *entity.Project) *dto.ProjectResponse {
	if p == nil {
		return nil
	}
	return &dto.ProjectResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		ProfileImage: p.ProfileImage,
		IsPublic:     p.IsPublic,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToProjectResponses(projects []entity.Project) []dto.ProjectResponse {
	out := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, *ToProjectResponse(&projects[i]))
	}
	return out
}

func ToMemberResponses(members []entity.Member) []dto.MemberResponse {
	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.MemberResponse{
			UserID:   m.UserID,
			Username: m.Username,
			Email:    m.Email,
			JoinedAt: m.JoinedAt,
		})
	}
	return out
}
