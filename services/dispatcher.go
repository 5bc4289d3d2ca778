package services

import (
	"fmt"

	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/models"
	"workforce-project/projects-service/utils"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mailer sends a single email. utils.SendEmail is the production
// implementation.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through the configured SMTP server.
type SMTPMailer struct{}

func (SMTPMailer) Send(to, subject, body string) error {
	return utils.SendEmail(to, subject, body)
}

// NotificationStore is the persistence contract for in-app notifications.
// Implemented by repositories.NotificationRepo.
type NotificationStore interface {
	CreateNotification(n *models.Notification) error
	GetNotificationsByUsername(username string) ([]models.Notification, error)
	MarkNotificationAsRead(username, notificationID, createdAt string) error
	MarkAllAsRead(username string) error
	DeleteNotification(username, notificationID, createdAt string) error
}

// Dispatcher delivers assignment and membership notifications. Delivery is
// best effort: failures are logged and never propagate to the mutation that
// triggered them. The email leg runs through a circuit breaker so a dead
// SMTP server stops being hammered.
type Dispatcher struct {
	Store   NotificationStore
	Mailer  Mailer
	Breaker *gobreaker.CircuitBreaker
}

func NewDispatcher(store NotificationStore, mailer Mailer, breaker *gobreaker.CircuitBreaker) *Dispatcher {
	return &Dispatcher{Store: store, Mailer: mailer, Breaker: breaker}
}

// NotifyTaskAssigned records an in-app notification and emails the new
// assignee.
func (d *Dispatcher) NotifyTaskAssigned(assignee models.Member, projectID primitive.ObjectID, projectName, taskTitle string) {
	subject := fmt.Sprintf("New task assigned: %s", taskTitle)
	body := fmt.Sprintf("Hi %s,<br><br>You have been assigned the task <b>%s</b> in project <b>%s</b>.", assignee.Name, taskTitle, projectName)
	message := fmt.Sprintf("You have been assigned the task '%s' in project '%s'", taskTitle, projectName)

	d.deliver(assignee, projectID, models.NotificationTaskAssigned, subject, body, message)
}

// NotifyMemberAdded records an in-app notification and emails a newly added
// project member.
func (d *Dispatcher) NotifyMemberAdded(member models.Member, projectID primitive.ObjectID, projectName string) {
	subject := fmt.Sprintf("Added to project: %s", projectName)
	body := fmt.Sprintf("Hi %s,<br><br>You have been added to the project <b>%s</b>.", member.Name, projectName)
	message := fmt.Sprintf("You have been added to the project '%s'", projectName)

	d.deliver(member, projectID, models.NotificationMemberAdded, subject, body, message)
}

func (d *Dispatcher) deliver(recipient models.Member, projectID primitive.ObjectID, kind, subject, body, message string) {
	notification := &models.Notification{
		UserID:    recipient.ID.Hex(),
		Username:  recipient.Username,
		Title:     subject,
		Message:   message,
		NotifType: kind,
		ProjectID: projectID.Hex(),
		Link:      fmt.Sprintf("/projects/%s", projectID.Hex()),
	}
	if err := d.Store.CreateNotification(notification); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_RECORD_FAILED, Description: Failed to record %s notification for %s: %v", kind, recipient.Username, err)
	}

	if recipient.Email == "" {
		logging.Logger.Warnf("Event ID: NOTIFICATION_NO_EMAIL, Description: No email on file for %s, skipping mail for %s", recipient.Username, kind)
		return
	}

	logging.Logger.Infof("Event ID: NOTIFICATION_EMAIL_ATTEMPTED, Description: Sending %s email to %s", kind, recipient.Email)
	_, err := d.Breaker.Execute(func() (interface{}, error) {
		return nil, d.Mailer.Send(recipient.Email, subject, body)
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_EMAIL_FAILED, Description: Failed to send %s email to %s: %v", kind, recipient.Email, err)
	}
}
