package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/models"
	"workforce-project/projects-service/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxAttachments     = 5
	maxAttachmentSize  = 10 << 20 // 10MB per file
	maxMultipartMemory = 32 << 20
)

type TaskHandler struct {
	service   *services.TaskService
	uploadDir string
}

func NewTaskHandler(service *services.TaskService, uploadDir string) *TaskHandler {
	return &TaskHandler{service: service, uploadDir: uploadDir}
}

// saveAttachments validates and persists uploaded files, returning their
// descriptors. The returned status is the HTTP code to use when err is
// non-nil.
func (h *TaskHandler) saveAttachments(r *http.Request, fileType string) ([]models.TaskFile, int, error) {
	if r.MultipartForm == nil {
		return nil, 0, nil
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, 0, nil
	}
	if len(headers) > maxAttachments {
		return nil, http.StatusBadRequest, fmt.Errorf("too many files: a maximum of %d attachments is allowed", maxAttachments)
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to prepare upload directory: %v", err)
	}

	var files []models.TaskFile
	for _, header := range headers {
		if header.Size > maxAttachmentSize {
			return nil, http.StatusBadRequest, fmt.Errorf("file %s exceeds the 10MB limit", header.Filename)
		}

		src, err := header.Open()
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("failed to read uploaded file: %v", err)
		}

		storedName := uuid.New().String() + "_" + filepath.Base(header.Filename)
		dst, err := os.Create(filepath.Join(h.uploadDir, storedName))
		if err != nil {
			src.Close()
			return nil, http.StatusInternalServerError, fmt.Errorf("failed to store uploaded file: %v", err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("failed to store uploaded file: %v", err)
		}

		files = append(files, models.TaskFile{
			Name:       header.Filename,
			URL:        "/uploads/" + storedName,
			Size:       header.Size,
			UploadedAt: time.Now(),
			Type:       fileType,
		})
	}
	return files, 0, nil
}

// formPtr returns a pointer to the form value only when the field was
// actually submitted, preserving partial-update semantics.
func formPtr(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	if vals, ok := r.MultipartForm.Value[key]; ok && len(vals) > 0 {
		v := vals[0]
		return &v
	}
	return nil
}

func taskFieldsFromForm(r *http.Request) models.TaskFields {
	fields := models.TaskFields{
		Title:       formPtr(r, "title"),
		Description: formPtr(r, "description"),
		AssignedTo:  formPtr(r, "assignedTo"),
	}
	if raw := formPtr(r, "priority"); raw != nil {
		p := models.Priority(*raw)
		fields.Priority = &p
	}
	if raw := formPtr(r, "estimatedHours"); raw != nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64); err == nil && v >= 0 {
			fields.EstimatedHours = &v
		}
	}
	if raw := formPtr(r, "dueDate"); raw != nil {
		if t, err := time.Parse(time.RFC3339, *raw); err == nil {
			fields.DueDate = &t
		} else if t, err := time.Parse("2006-01-02", *raw); err == nil {
			fields.DueDate = &t
		}
	}
	return fields
}

// discardAttachments removes files persisted ahead of a failed service
// call, so a not-found or storage error does not leave orphans in the
// upload dir.
func (h *TaskHandler) discardAttachments(files []models.TaskFile) {
	for _, f := range files {
		path := filepath.Join(h.uploadDir, filepath.Base(f.URL))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Logger.Warnf("Event ID: ATTACHMENT_CLEANUP_FAILED, Description: Failed to remove attachment %s: %v", path, err)
		}
	}
}

func (h *TaskHandler) writeTaskError(w http.ResponseWriter, err error) {
	switch err.Error() {
	case "task title is required":
		http.Error(w, "Task title is required", http.StatusBadRequest)
	case "invalid project ID format":
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
	case "invalid task ID format":
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
	case "project not found", "task not found":
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logging.Logger.Errorf("Event ID: TASK_OPERATION_FAILED, Description: %v", err)
		http.Error(w, "Task operation failed", http.StatusInternalServerError)
	}
}

// CreateTask appends a new task to a project. Multipart body, up to 5
// attachments of 10MB each.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	projectID := vars["id"]
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	fields := taskFieldsFromForm(r)
	if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
		http.Error(w, "Task title is required", http.StatusBadRequest)
		return
	}

	files, status, err := h.saveAttachments(r, "")
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	task, err := h.service.AddTask(r.Context(), projectID, fields, files)
	if err != nil {
		h.discardAttachments(files)
		h.writeTaskError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "task": task})
}

// RedefineTask overwrites only the submitted fields; attachments are
// appended to the existing list.
func (h *TaskHandler) RedefineTask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	projectID := vars["id"]
	taskID := vars["taskId"]
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}
	if _, err := primitive.ObjectIDFromHex(taskID); err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	files, status, err := h.saveAttachments(r, "")
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	task, err := h.service.RedefineTask(r.Context(), projectID, taskID, taskFieldsFromForm(r), files)
	if err != nil {
		h.discardAttachments(files)
		h.writeTaskError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "task": task})
}

// RecordTaskProgress is the single progress-update implementation, exposed
// through both POST and PUT.
func (h *TaskHandler) RecordTaskProgress(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	projectID := vars["id"]
	taskID := vars["taskId"]
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}
	if _, err := primitive.ObjectIDFromHex(taskID); err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	files, status, err := h.saveAttachments(r, "progress")
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	upd := models.ProgressUpdate{
		Status:      r.FormValue("status"),
		Progress:    r.FormValue("progress"),
		Remarks:     r.FormValue("remarks"),
		HoursWorked: r.FormValue("hoursWorked"),
	}

	task, err := h.service.RecordTaskProgress(r.Context(), projectID, taskID, upd, files)
	if err != nil {
		h.discardAttachments(files)
		h.writeTaskError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Task progress updated successfully",
		"task":    task,
	})
}

// DeleteTask removes one task and cleans up its attachments best effort.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	projectID := vars["id"]
	taskID := vars["taskId"]
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}
	if _, err := primitive.ObjectIDFromHex(taskID); err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTask(r.Context(), projectID, taskID); err != nil {
		h.writeTaskError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "Task deleted successfully"})
}
