package models

import "time"

// Notification kinds surfaced in-app.
const (
	NotificationTaskAssigned  = "task_assigned"
	NotificationMemberAdded   = "member_added"
	NotificationTaskCompleted = "task_completed"
)

// Notification is stored in Cassandra, keyed by username with newest-first
// clustering. It is created by application logic on mutations and only ever
// mutated by mark-read operations.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	NotifType string    `json:"type"`
	Link      string    `json:"link,omitempty"`
	ProjectID string    `json:"projectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}
