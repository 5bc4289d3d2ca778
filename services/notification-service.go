package services

import (
	"fmt"

	"workforce-project/projects-service/models"
)

type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

func (ns *NotificationService) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	return ns.repo.GetNotificationsByUsername(username)
}

func (ns *NotificationService) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	if username == "" || notificationID == "" || createdAt == "" {
		return fmt.Errorf("username, notificationID, and createdAt are required")
	}
	return ns.repo.MarkNotificationAsRead(username, notificationID, createdAt)
}

func (ns *NotificationService) MarkAllAsRead(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	return ns.repo.MarkAllAsRead(username)
}

func (ns *NotificationService) DeleteNotification(username, notificationID, createdAt string) error {
	if username == "" || notificationID == "" || createdAt == "" {
		return fmt.Errorf("username, notificationID, and createdAt are required")
	}
	return ns.repo.DeleteNotification(username, notificationID, createdAt)
}
