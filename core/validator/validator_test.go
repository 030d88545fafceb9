package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email     string `json:"email" validate:"required,email"`
	ProjectID string `json:"projectId" validate:"required,uuid"`
}

func TestValidateReportsJSONNames(t *testing.T) {
	res := Validate(&sample{Email: "nope"})

	assert.True(t, res.HasError())
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, "email", res.Errors[0].Field)
	assert.Equal(t, "email must be a valid email address", res.First())
	assert.Equal(t, "projectId", res.Errors[1].Field)
	assert.Equal(t, "projectId is required", res.Errors[1].Message)
}

func TestValidateOK(t *testing.T) {
	res := Validate(&sample{Email: "a@b.co", ProjectID: "0b5b3d6c-4b8b-4d2e-9d0a-0f2f6a0c1e11"})
	assert.False(t, res.HasError())
	assert.Equal(t, "", res.First())
}
