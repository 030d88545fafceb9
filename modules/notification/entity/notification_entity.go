package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"setlist-api/core/entity"

	"github.com/google/uuid"
)

const (
	TypeInvitation           = "invitation"
	TypeCollaborationRequest = "collaboration_request"
	TypeInvitationAccepted   = "invitation_accepted"
	TypeInvitationDeclined   = "invitation_declined"
	TypeMemberJoined         = "member_joined"
	TypeEventCreated         = "event_created"
	TypeEventReminder        = "event_reminder"
)

type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	ProjectID *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	Content   string     `db:"content" json:"content"`
	Type      string     `db:"type" json:"type"`
	URL       string     `db:"url" json:"url"`
	Metadata  JSONB      `db:"metadata" json:"metadata"`
	HasSeen   bool       `db:"has_seen" json:"has_seen"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *JSONB) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

type PaginatedNotificationEntity = entity.Pagination[Notification]
