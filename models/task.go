package models

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusOnHold     TaskStatus = "On Hold"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// TaskFile describes one uploaded attachment. The list on a task is
// append-only; files uploaded through the progress channel carry
// Type = "progress".
type TaskFile struct {
	Name       string    `bson:"name" json:"name"`
	URL        string    `bson:"url" json:"url"`
	Size       int64     `bson:"size" json:"size"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
	Type       string    `bson:"type,omitempty" json:"type,omitempty"`
}

// Task is an embedded sub-document of Project. It has no existence outside
// its parent; its ID is only meaningful within the parent's task list.
type Task struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	Title          string              `bson:"title" json:"title"`
	Description    string              `bson:"description" json:"description"`
	AssignedTo     *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Priority       Priority            `bson:"priority" json:"priority"`
	EstimatedHours float64             `bson:"estimatedHours" json:"estimatedHours"`
	DueDate        *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Status         TaskStatus          `bson:"status" json:"status"`
	Progress       int                 `bson:"progress" json:"progress"`
	Remarks        string              `bson:"remarks" json:"remarks"`
	HoursWorked    float64             `bson:"hoursWorked" json:"hoursWorked"`
	Files          []TaskFile          `bson:"files" json:"files"`
	LastUpdated    time.Time           `bson:"lastUpdated" json:"lastUpdated"`
}

// TaskFields carries the redefinable fields of a task. Nil pointers mean
// "leave as is" (partial update).
type TaskFields struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	AssignedTo     *string    `json:"assignedTo,omitempty"`
	Priority       *Priority  `json:"priority,omitempty"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
}

// ProgressUpdate carries the progress-channel fields. All values arrive as
// raw form strings; invalid numeric input is ignored, never rejected.
type ProgressUpdate struct {
	Status      string
	Progress    string
	Remarks     string
	HoursWorked string
}

// ClampProgress bounds a progress value to [0,100]. All progress writes go
// through here so the permissive policy is stated once.
func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ParseProgress parses a raw progress value and clamps it. Returns false for
// non-numeric input, in which case the stored value must be left unchanged.
func ParseProgress(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return ClampProgress(v), true
}

// CoerceAssignee turns a raw employee id into an ObjectID reference.
// Malformed input is coerced to nil rather than rejected; the existing
// frontend relies on this.
func CoerceAssignee(raw string) *primitive.ObjectID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &id
}

// ValidStatus reports whether s is one of the four task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// ApplyProgressUpdate applies whichever progress fields are present.
// Progress is clamped, hoursWorked only ever accumulates, remarks replace
// the previous value (no history is kept). Status and progress are allowed
// to diverge; nothing ties Completed to 100.
func (t *Task) ApplyProgressUpdate(upd ProgressUpdate, files []TaskFile) {
	if s := TaskStatus(strings.TrimSpace(upd.Status)); s != "" && ValidStatus(s) {
		t.Status = s
	}
	if p, ok := ParseProgress(upd.Progress); ok {
		t.Progress = p
	}
	if r := strings.TrimSpace(upd.Remarks); r != "" {
		t.Remarks = r
	}
	if raw := strings.TrimSpace(upd.HoursWorked); raw != "" {
		if h, err := strconv.ParseFloat(raw, 64); err == nil && h > 0 {
			t.HoursWorked += h
		}
	}
	t.Files = append(t.Files, files...)
	t.LastUpdated = time.Now()
}

// ApplyFields applies a partial redefinition and reports whether the
// assignee changed, so the caller knows to dispatch an assignment
// notification. Attachments are appended, never replaced.
func (t *Task) ApplyFields(fields TaskFields, files []TaskFile) (assigneeChanged bool) {
	if fields.Title != nil && strings.TrimSpace(*fields.Title) != "" {
		t.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		t.Description = *fields.Description
	}
	if fields.AssignedTo != nil {
		next := CoerceAssignee(*fields.AssignedTo)
		if !sameAssignee(t.AssignedTo, next) {
			t.AssignedTo = next
			assigneeChanged = next != nil
		}
	}
	if fields.Priority != nil {
		t.Priority = *fields.Priority
	}
	if fields.EstimatedHours != nil {
		t.EstimatedHours = *fields.EstimatedHours
	}
	if fields.DueDate != nil {
		t.DueDate = fields.DueDate
	}
	t.Files = append(t.Files, files...)
	t.LastUpdated = time.Now()
	return assigneeChanged
}

func sameAssignee(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
