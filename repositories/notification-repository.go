package repositories

import (
	"os"
	"time"

	"workforce-project/projects-service/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

type NotificationRepo struct {
	session *gocql.Session
	logger  *logrus.Logger
}

// NewNotificationRepo connects to Cassandra and prepares the workforce
// keyspace.
func NewNotificationRepo(logger *logrus.Logger) (*NotificationRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS workforce
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logger.Errorf("Event ID: CASS_KEYSPACE_FAILED, Description: Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "workforce"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Errorf("Event ID: CASS_KEYSPACE_CONNECT_FAILED, Description: Failed to connect to workforce keyspace: %v", err)
		return nil, err
	}

	logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra workforce keyspace.")
	return &NotificationRepo{
		session: session,
		logger:  logger,
	}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	nr.logger.Info("Event ID: CASS_SESSION_CLOSED, Description: Cassandra session closed.")
}

// CreateTable creates the notifications table if it does not exist,
// clustered newest first per username.
func (nr *NotificationRepo) CreateTable() {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			username TEXT,
			user_id TEXT,
			title TEXT,
			message TEXT,
			notif_type TEXT,
			link TEXT,
			project_id TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((username), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		nr.logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create notifications table: %v", err)
	} else {
		nr.logger.Info("Event ID: CASS_TABLE_READY, Description: Notifications table ready.")
	}
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, username, user_id, title, message, notif_type, link, project_id, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.Username, notification.UserID, notification.Title,
		notification.Message, notification.NotifType, notification.Link, notification.ProjectID,
		notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		nr.logger.Errorf("Event ID: NOTIFICATION_INSERT_FAILED, Description: %v", err)
		return err
	}

	return nil
}

func (nr *NotificationRepo) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	query := `SELECT id, user_id, username, title, message, notif_type, link, project_id, created_at, is_read
			  FROM notifications WHERE username = ?`

	iter := nr.session.Query(query, username).Iter()
	var notifications []models.Notification
	var n models.Notification

	for iter.Scan(&n.ID, &n.UserID, &n.Username, &n.Title, &n.Message,
		&n.NotifType, &n.Link, &n.ProjectID, &n.CreatedAt, &n.IsRead) {
		notifications = append(notifications, n)
	}

	if err := iter.Close(); err != nil {
		nr.logger.Errorf("Event ID: NOTIFICATION_FETCH_FAILED, Description: Failed to fetch notifications for %s: %v", username, err)
		return nil, err
	}

	return notifications, nil
}

func (nr *NotificationRepo) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		nr.logger.Warnf("Event ID: NOTIFICATION_BAD_UUID, Description: Invalid UUID format: %v", err)
		return err
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		nr.logger.Warnf("Event ID: NOTIFICATION_BAD_TIMESTAMP, Description: Invalid created_at format: %v", err)
		return err
	}

	query := `UPDATE notifications SET is_read = true WHERE username = ? AND id = ? AND created_at = ?`
	err = nr.session.Query(query, username, uuid, parsedCreatedAt).Exec()
	if err != nil {
		nr.logger.Errorf("Event ID: NOTIFICATION_UPDATE_FAILED, Description: %v", err)
		return err
	}

	return nil
}

// MarkAllAsRead walks the unread rows for a username and marks each one.
// Cassandra updates need the full primary key, so this is a read-then-write
// per row.
func (nr *NotificationRepo) MarkAllAsRead(username string) error {
	notifications, err := nr.GetNotificationsByUsername(username)
	if err != nil {
		return err
	}

	for _, n := range notifications {
		if n.IsRead {
			continue
		}
		if err := nr.MarkNotificationAsRead(username, n.ID, n.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

func (nr *NotificationRepo) DeleteNotification(username, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		nr.logger.Warnf("Event ID: NOTIFICATION_BAD_UUID, Description: Invalid UUID format: %v", err)
		return err
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		nr.logger.Warnf("Event ID: NOTIFICATION_BAD_TIMESTAMP, Description: Invalid created_at format: %v", err)
		return err
	}

	query := `DELETE FROM notifications WHERE username = ? AND id = ? AND created_at = ?`
	err = nr.session.Query(query, username, uuid, parsedCreatedAt).Exec()
	if err != nil {
		nr.logger.Errorf("Event ID: NOTIFICATION_DELETE_FAILED, Description: %v", err)
		return err
	}

	return nil
}
