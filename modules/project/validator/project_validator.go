package validator

import (
	"strings"

	"setlist-api/core/validator"
	"setlist-api/modules/project/dto"
)

func ValidateProjectRequest(req *dto.ProjectRequest) *validator.ValidationResult {
	result := validator.Validate(req)
	if strings.TrimSpace(req.Name) == "" && !result.HasError() {
		result.AddError("name", "name is required")
	}
	return result
}
