package mapper

import (
	"setlist-api/modules/notification/dto"
	"setlist-api/modules/notification/entity"
)

func ToNotificationResponse(n *entity.Notification) dto.NotificationResponse {
	metadata := map[string]any(n.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return dto.NotificationResponse{
		ID:        n.ID,
		ProjectID: n.ProjectID,
		Content:   n.Content,
		Type:      n.Type,
		URL:       n.URL,
		Metadata:  metadata,
		HasSeen:   n.HasSeen,
		CreatedAt: n.CreatedAt,
	}
}

func ToPaginatedNotificationResponse(page *entity.PaginatedNotificationEntity) *dto.PaginatedNotificationResponse {
	items := make([]dto.NotificationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToNotificationResponse(&page.Items[i]))
	}

	totalPages := 0
	if page.PageSize > 0 {
		totalPages = (page.TotalItems + page.PageSize - 1) / page.PageSize
	}

	return &dto.PaginatedNotificationResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		TotalPages: totalPages,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}
