package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectService struct {
	ProjectsCollection  *mongo.Collection
	EmployeesCollection *mongo.Collection
	Dispatcher          *Dispatcher
	UploadDir           string
}

func NewProjectService(projectsCollection, employeesCollection *mongo.Collection, dispatcher *Dispatcher, uploadDir string) *ProjectService {
	return &ProjectService{
		ProjectsCollection:  projectsCollection,
		EmployeesCollection: employeesCollection,
		Dispatcher:          dispatcher,
		UploadDir:           uploadDir,
	}
}

// CreateProjectInput carries everything a new project needs. MemberIDs may
// contain the creator; the creator is always the implicit first member.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	Priority    models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	CreatorID   primitive.ObjectID
	MemberIDs   []primitive.ObjectID
	Tasks       []models.TaskFields
}

// CreateProject creates a new project aggregate. Only a blank name is
// rejected; malformed assignee ids on initial tasks are coerced to nil.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	if input.Status == "" {
		input.Status = models.ProjectNotStarted
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	now := time.Now()
	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedBy:   input.CreatorID,
		Members:     []primitive.ObjectID{input.CreatorID},
		Tasks:       []models.Task{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, id := range input.MemberIDs {
		if !project.HasMember(id) {
			project.Members = append(project.Members, id)
		}
	}

	project.Tasks = buildInitialTasks(input.Tasks)

	result, err := s.ProjectsCollection.InsertOne(ctx, project)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("project with the same name already exists")
		}
		return nil, fmt.Errorf("failed to create project: %v", err)
	}

	project.ID = result.InsertedID.(primitive.ObjectID)
	return project, nil
}

// buildInitialTasks turns create-time task payloads into embedded tasks,
// preserving the submitted order. Malformed assignee ids are coerced to nil
// through the same path every other assignment takes.
func buildInitialTasks(inputs []models.TaskFields) []models.Task {
	tasks := make([]models.Task, 0, len(inputs))
	for _, fields := range inputs {
		task := models.Task{
			ID:       primitive.NewObjectID(),
			Status:   models.StatusNotStarted,
			Priority: models.PriorityMedium,
			Files:    []models.TaskFile{},
		}
		task.ApplyFields(fields, nil)
		tasks = append(tasks, task)
	}
	return tasks
}

// GetProjectByID fetches one project with creator, members and task
// assignees resolved.
func (s *ProjectService) GetProjectByID(ctx context.Context, projectID string) (*models.ProjectView, error) {
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

	views, err := s.populate(ctx, []models.Project{project})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetAllProjects returns every project, newest first, fully resolved. No
// pagination; filtering happens client side.
func (s *ProjectService) GetAllProjects(ctx context.Context) ([]models.ProjectView, error) {
	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}

	return s.populate(ctx, projects)
}

// UpdateMembers replaces or appends the member list. In append mode only
// the delta (ids not already present) is added and notified. Removed
// members keep any task assignments they had; nothing reconciles the two.
func (s *ProjectService) UpdateMembers(ctx context.Context, projectID string, memberIDs []primitive.ObjectID, appendMode bool) (*models.ProjectView, error) {
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

	var added []primitive.ObjectID
	if appendMode {
		for _, id := range memberIDs {
			if !project.HasMember(id) {
				project.Members = append(project.Members, id)
				added = append(added, id)
			}
		}
	} else {
		for _, id := range memberIDs {
			if !project.HasMember(id) {
				added = append(added, id)
			}
		}
		project.Members = memberIDs
	}
	project.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{"members": project.Members, "updatedAt": project.UpdatedAt}}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update); err != nil {
		return nil, fmt.Errorf("failed to update project members: %v", err)
	}

	for _, id := range added {
		member, err := s.lookupEmployee(ctx, id)
		if err != nil {
			logging.Logger.Warnf("Event ID: MEMBER_LOOKUP_FAILED, Description: Could not resolve new member %s on project %s: %v", id.Hex(), projectID, err)
			continue
		}
		s.Dispatcher.NotifyMemberAdded(member, project.ID, project.Name)
	}

	views, err := s.populate(ctx, []models.Project{project})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteProject removes the aggregate. Embedded tasks go with it; their
// attachment files are removed best effort. Notification rows are left in
// place as the activity trail.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return fmt.Errorf("invalid project ID format")
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("project not found")
		}
		return fmt.Errorf("error fetching project: %v", err)
	}

	for _, task := range project.Tasks {
		removeAttachmentFiles(s.UploadDir, task.Files)
	}

	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	return nil
}

// GetAllEmployees returns every employee summary, for member pickers.
func (s *ProjectService) GetAllEmployees(ctx context.Context) ([]models.Member, error) {
	cursor, err := s.EmployeesCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve employees: %v", err)
	}
	defer cursor.Close(ctx)

	var employees []models.Member
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %v", err)
	}
	return employees, nil
}

// FindEmployeeByUsername resolves the authenticated caller to an employee
// record.
func (s *ProjectService) FindEmployeeByUsername(ctx context.Context, username string) (models.Member, error) {
	var employee models.Member
	err := s.EmployeesCollection.FindOne(ctx, bson.M{"username": username}).Decode(&employee)
	if err != nil {
		return models.Member{}, fmt.Errorf("employee not found")
	}
	return employee, nil
}

func (s *ProjectService) lookupEmployee(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	var employee models.Member
	err := s.EmployeesCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&employee)
	if err != nil {
		return models.Member{}, err
	}
	return employee, nil
}

// populate resolves every employee reference across the given projects with
// a single $in query.
func (s *ProjectService) populate(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	idSet := map[primitive.ObjectID]bool{}
	for _, p := range projects {
		idSet[p.CreatedBy] = true
		for _, m := range p.Members {
			idSet[m] = true
		}
		for _, t := range p.Tasks {
			if t.AssignedTo != nil {
				idSet[*t.AssignedTo] = true
			}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	byID := map[primitive.ObjectID]models.Member{}
	if len(ids) > 0 {
		cursor, err := s.EmployeesCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve employees: %v", err)
		}
		defer cursor.Close(ctx)

		var employees []models.Member
		if err = cursor.All(ctx, &employees); err != nil {
			return nil, fmt.Errorf("failed to decode employees: %v", err)
		}
		for _, e := range employees {
			byID[e.ID] = e
		}
	}

	views := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		view := models.ProjectView{Project: p, MemberDetails: []models.Member{}, Tasks: []models.TaskView{}}
		if creator, ok := byID[p.CreatedBy]; ok {
			view.Creator = &creator
		}
		for _, m := range p.Members {
			if member, ok := byID[m]; ok {
				view.MemberDetails = append(view.MemberDetails, member)
			}
		}
		for _, t := range p.Tasks {
			tv := models.TaskView{Task: t}
			if t.AssignedTo != nil {
				if assignee, ok := byID[*t.AssignedTo]; ok {
					tv.Assignee = &assignee
				}
			}
			view.Tasks = append(view.Tasks, tv)
		}
		views = append(views, view)
	}
	return views, nil
}

// removeAttachmentFiles deletes stored attachments from disk. Errors are
// logged and swallowed; attachment cleanup never blocks a delete.
func removeAttachmentFiles(uploadDir string, files []models.TaskFile) {
	for _, f := range files {
		path := filepath.Join(uploadDir, filepath.Base(f.URL))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Logger.Warnf("Event ID: ATTACHMENT_CLEANUP_FAILED, Description: Failed to remove attachment %s: %v", path, err)
		}
	}
}
