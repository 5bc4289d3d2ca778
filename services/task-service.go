package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TaskService mutates tasks embedded in their parent project. Every write
// loads the whole aggregate, changes it in memory and replaces the whole
// document. There is no version token, so concurrent writes to the same
// project are last-write-wins; that matches the storage model this service
// was built against.
type TaskService struct {
	ProjectsCollection  *mongo.Collection
	EmployeesCollection *mongo.Collection
	Dispatcher          *Dispatcher
	UploadDir           string
}

func NewTaskService(projectsCollection, employeesCollection *mongo.Collection, dispatcher *Dispatcher, uploadDir string) *TaskService {
	return &TaskService{
		ProjectsCollection:  projectsCollection,
		EmployeesCollection: employeesCollection,
		Dispatcher:          dispatcher,
		UploadDir:           uploadDir,
	}
}

func (s *TaskService) loadProject(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID format")
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("project not found")
		}
		return nil, fmt.Errorf("error fetching project: %v", err)
	}
	return &project, nil
}

func (s *TaskService) saveProject(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()
	_, err := s.ProjectsCollection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	if err != nil {
		return fmt.Errorf("failed to save project: %v", err)
	}
	return nil
}

// AddTask appends a new task to the project. A blank title is the only
// rejected field; a malformed assignee id is coerced to nil.
func (s *TaskService) AddTask(ctx context.Context, projectID string, fields models.TaskFields, files []models.TaskFile) (*models.Task, error) {
	if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
		return nil, fmt.Errorf("task title is required")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ID:          primitive.NewObjectID(),
		Status:      models.StatusNotStarted,
		Priority:    models.PriorityMedium,
		Files:       []models.TaskFile{},
		LastUpdated: time.Now(),
	}
	assigned := task.ApplyFields(fields, files)

	project.Tasks = append(project.Tasks, task)
	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}

	if assigned {
		s.dispatchAssignment(ctx, project, task)
	}
	return &task, nil
}

// RedefineTask overwrites only the fields present in the request.
// Attachments are appended to the existing list. A change of assignee
// triggers exactly one notification dispatch.
func (s *TaskService) RedefineTask(ctx context.Context, projectID, taskID string, fields models.TaskFields, files []models.TaskFile) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task ID format")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	task := project.FindTask(taskObjectID)
	if task == nil {
		return nil, fmt.Errorf("task not found")
	}

	assigneeChanged := task.ApplyFields(fields, files)

	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}

	if assigneeChanged {
		s.dispatchAssignment(ctx, project, *task)
	}
	result := *task
	return &result, nil
}

// RecordTaskProgress applies the progress-channel fields: status, clamped
// progress, overwriting remarks and accumulating hoursWorked. Out-of-range
// or non-numeric numeric input is ignored, never an error.
func (s *TaskService) RecordTaskProgress(ctx context.Context, projectID, taskID string, upd models.ProgressUpdate, files []models.TaskFile) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task ID format")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	task := project.FindTask(taskObjectID)
	if task == nil {
		return nil, fmt.Errorf("task not found")
	}

	task.ApplyProgressUpdate(upd, files)

	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}

	result := *task
	return &result, nil
}

// DeleteTask removes exactly one task from the parent's list. Attachment
// cleanup is best effort; once the identifiers resolve, removal succeeds.
func (s *TaskService) DeleteTask(ctx context.Context, projectID, taskID string) error {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return fmt.Errorf("invalid task ID format")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}

	removed, ok := project.RemoveTask(taskObjectID)
	if !ok {
		return fmt.Errorf("task not found")
	}

	if err := s.saveProject(ctx, project); err != nil {
		return err
	}

	removeAttachmentFiles(s.UploadDir, removed.Files)
	return nil
}

func (s *TaskService) dispatchAssignment(ctx context.Context, project *models.Project, task models.Task) {
	if task.AssignedTo == nil {
		return
	}

	var assignee models.Member
	err := s.EmployeesCollection.FindOne(ctx, bson.M{"_id": *task.AssignedTo}).Decode(&assignee)
	if err != nil {
		logging.Logger.Warnf("Event ID: ASSIGNEE_LOOKUP_FAILED, Description: Could not resolve assignee %s for task %s: %v", task.AssignedTo.Hex(), task.ID.Hex(), err)
		return
	}

	s.Dispatcher.NotifyTaskAssigned(assignee, project.ID, project.Name, task.Title)
}
