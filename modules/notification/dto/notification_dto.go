package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID      `json:"id"`
	ProjectID *uuid.UUID     `json:"project_id,omitempty"`
	Content   string         `json:"content"`
	Type      string         `json:"type"`
	URL       string         `json:"url"`
	Metadata  map[string]any `json:"metadata"`
	HasSeen   bool           `json:"has_seen"`
	CreatedAt time.Time      `json:"created_at"`
}

type MarkAsReadRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type PaginatedNotificationResponse struct {
	Items      []NotificationResponse `json:"items"`
	TotalItems int                    `json:"total_items"`
	TotalPages int                    `json:"total_pages"`
	PageNumber int                    `json:"page_number"`
	PageSize   int                    `json:"page_size"`
}
