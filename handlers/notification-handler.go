package handlers

import (
	"encoding/json"
	"net/http"

	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) GetNotificationsByUsername(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username := vars["username"]

	notifications, err := h.service.GetNotificationsByUsername(username)
	if err != nil {
		if err.Error() == "username is required" {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Logger.Errorf("Event ID: NOTIFICATION_LIST_FAILED, Description: %v", err)
		http.Error(w, "Failed to retrieve notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

type markReadPayload struct {
	Username       string `json:"username"`
	NotificationID string `json:"notificationId"`
	CreatedAt      string `json:"createdAt"`
}

func (h *NotificationHandler) MarkNotificationAsRead(w http.ResponseWriter, r *http.Request) {
	var payload markReadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	err := h.service.MarkNotificationAsRead(payload.Username, payload.NotificationID, payload.CreatedAt)
	if err != nil {
		if err.Error() == "username, notificationID, and createdAt are required" {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_READ_FAILED, Description: %v", err)
		http.Error(w, "Failed to mark notification as read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username := vars["username"]

	err := h.service.MarkAllAsRead(username)
	if err != nil {
		if err.Error() == "username is required" {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_ALL_FAILED, Description: %v", err)
		http.Error(w, "Failed to mark notifications as read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "All notifications marked as read"})
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	var payload markReadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	err := h.service.DeleteNotification(payload.Username, payload.NotificationID, payload.CreatedAt)
	if err != nil {
		if err.Error() == "username, notificationID, and createdAt are required" {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Logger.Errorf("Event ID: NOTIFICATION_DELETE_FAILED, Description: %v", err)
		http.Error(w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "Notification deleted"})
}
