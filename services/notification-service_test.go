package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationServiceValidation(t *testing.T) {
	ns := NewNotificationService(&fakeStore{})

	if _, err := ns.GetNotificationsByUsername(""); err == nil {
		t.Errorf("blank username accepted")
	}
	if err := ns.MarkNotificationAsRead("jdoe", "", "2026-01-02T15:04:05Z"); err == nil {
		t.Errorf("blank notification id accepted")
	}
	if err := ns.MarkAllAsRead(""); err == nil {
		t.Errorf("blank username accepted for mark-all")
	}
	if err := ns.DeleteNotification("", "id", "ts"); err == nil {
		t.Errorf("blank username accepted for delete")
	}
}

func TestNotificationServicePassesThrough(t *testing.T) {
	store := &fakeStore{}
	ns := NewNotificationService(store)

	d := NewDispatcher(store, &fakeMailer{}, testBreaker())
	member := testMember()
	d.NotifyMemberAdded(member, primitive.NewObjectID(), "p")

	notifications, err := ns.GetNotificationsByUsername(member.Username)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifications))
	}
}
