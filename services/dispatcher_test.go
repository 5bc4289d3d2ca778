package services

import (
	"fmt"
	"testing"
	"time"

	"workforce-project/projects-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore struct {
	created []models.Notification
	fail    bool
}

func (f *fakeStore) CreateNotification(n *models.Notification) error {
	if f.fail {
		return fmt.Errorf("cassandra down")
	}
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeStore) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.created {
		if n.Username == username {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	return nil
}

func (f *fakeStore) MarkAllAsRead(username string) error { return nil }

func (f *fakeStore) DeleteNotification(username, notificationID, createdAt string) error {
	return nil
}

type fakeMailer struct {
	sent []string
	fail bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.fail {
		return fmt.Errorf("smtp down")
	}
	f.sent = append(f.sent, to)
	return nil
}

func testBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "test-cb",
		Timeout: time.Second,
	})
}

func testMember() models.Member {
	return models.Member{
		ID:       primitive.NewObjectID(),
		Name:     "Jane",
		Username: "jdoe",
		Email:    "jdoe@example.com",
	}
}

func TestNotifyTaskAssignedDeliversOnce(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	d := NewDispatcher(store, mailer, testBreaker())

	projectID := primitive.NewObjectID()
	d.NotifyTaskAssigned(testMember(), projectID, "Payroll revamp", "Migrate payslip export")

	if len(store.created) != 1 {
		t.Fatalf("in-app notifications = %d, want 1", len(store.created))
	}
	n := store.created[0]
	if n.NotifType != models.NotificationTaskAssigned {
		t.Errorf("type = %q", n.NotifType)
	}
	if n.Username != "jdoe" || n.ProjectID != projectID.Hex() {
		t.Errorf("notification fields wrong: %+v", n)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "jdoe@example.com" {
		t.Errorf("mails sent = %v, want one to jdoe@example.com", mailer.sent)
	}
}

func TestNotifyMailFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{fail: true}
	d := NewDispatcher(store, mailer, testBreaker())

	// Must not panic or propagate; the in-app record still lands.
	d.NotifyTaskAssigned(testMember(), primitive.NewObjectID(), "p", "t")

	if len(store.created) != 1 {
		t.Errorf("in-app notification missing after mail failure")
	}
}

func TestNotifyStoreFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{fail: true}
	mailer := &fakeMailer{}
	d := NewDispatcher(store, mailer, testBreaker())

	d.NotifyMemberAdded(testMember(), primitive.NewObjectID(), "p")

	if len(mailer.sent) != 1 {
		t.Errorf("mail was not attempted after store failure")
	}
}

func TestNotifySkipsMailWithoutAddress(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	d := NewDispatcher(store, mailer, testBreaker())

	member := testMember()
	member.Email = ""
	d.NotifyMemberAdded(member, primitive.NewObjectID(), "p")

	if len(store.created) != 1 {
		t.Errorf("in-app notification missing")
	}
	if len(mailer.sent) != 0 {
		t.Errorf("mail sent despite missing address")
	}
}

func TestNotifyBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{fail: true}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "test-cb",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
	})
	d := NewDispatcher(store, mailer, breaker)

	member := testMember()
	for i := 0; i < 6; i++ {
		d.NotifyTaskAssigned(member, primitive.NewObjectID(), "p", "t")
	}

	if breaker.State() != gobreaker.StateOpen {
		t.Errorf("breaker state = %v, want open", breaker.State())
	}

	// An open breaker still must not surface an error to the caller.
	mailer.fail = false
	d.NotifyTaskAssigned(member, primitive.NewObjectID(), "p", "t")
	if len(mailer.sent) != 0 {
		t.Errorf("open breaker let a mail through immediately")
	}
}
