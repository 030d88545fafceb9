package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeInvitation, TypeRequest, TypeCodeInvitation} {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, Type("").Valid())
	assert.False(t, Type("Invitation").Valid())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusAccepted))
	assert.True(t, StatusPending.CanTransitionTo(StatusDeclined))
	assert.False(t, StatusPending.CanTransitionTo(StatusRevoked))
	assert.False(t, StatusAccepted.CanTransitionTo(StatusDeclined))
	assert.False(t, StatusDeclined.CanTransitionTo(StatusAccepted))
	assert.False(t, StatusRevoked.CanTransitionTo(StatusAccepted))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	plain := &Invitation{ID: uuid.New(), Type: TypeInvitation}
	assert.False(t, plain.IsExpired(now.Add(100*365*24*time.Hour)))

	code := &Invitation{Type: TypeCodeInvitation, Code: &CodeDetails{ExpiresAt: now}}
	assert.False(t, code.IsExpired(now))
	assert.True(t, code.IsExpired(now.Add(time.Second)))
}
