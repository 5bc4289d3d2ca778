package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/models"
	"workforce-project/projects-service/services"
	"workforce-project/projects-service/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := r.Header.Get("Role")
	if userRole == "" {
		return fmt.Errorf("role is missing in request header")
	}

	for _, role := range allowedRoles {
		if role == userRole {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}

// writeProjectError maps well-known service error strings to status codes;
// anything unrecognized is a 500 with the original error logged server side
// only.
func writeProjectError(w http.ResponseWriter, err error) {
	switch err.Error() {
	case "project name is required":
		http.Error(w, "Project name is required", http.StatusBadRequest)
	case "invalid project ID format":
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
	case "project with the same name already exists":
		http.Error(w, err.Error(), http.StatusConflict)
	case "project not found":
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logging.Logger.Errorf("Event ID: PROJECT_OPERATION_FAILED, Description: %v", err)
		http.Error(w, "Project operation failed", http.StatusInternalServerError)
	}
}

type createProjectPayload struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
	Members     []string             `json:"members"`
	Tasks       []models.TaskFields  `json:"tasks"`
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var payload createProjectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(payload.Name) == "" {
		http.Error(w, "Project name is required", http.StatusBadRequest)
		return
	}

	tokenString := r.Header.Get("Authorization")
	username, err := utils.ExtractUsernameFromToken(strings.TrimPrefix(tokenString, "Bearer "))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	creator, err := h.Service.FindEmployeeByUsername(r.Context(), username)
	if err != nil {
		http.Error(w, "Employee record not found for caller", http.StatusUnauthorized)
		return
	}

	var memberIDs []primitive.ObjectID
	for _, raw := range payload.Members {
		if id := models.CoerceAssignee(raw); id != nil {
			memberIDs = append(memberIDs, *id)
		}
	}

	project, err := h.Service.CreateProject(r.Context(), services.CreateProjectInput{
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		CreatorID:   creator.ID,
		MemberIDs:   memberIDs,
		Tasks:       payload.Tasks,
	})
	if err != nil {
		writeProjectError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "project": project})
}

func (h *ProjectHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	projects, err := h.Service.GetAllProjects(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_LIST_FAILED, Description: %v", err)
		http.Error(w, "Error fetching projects", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(projects)
}

func (h *ProjectHandler) GetProjectByIDHandler(w http.ResponseWriter, r *http.Request) {
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

	project, err := h.Service.GetProjectByID(r.Context(), projectID)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(project)
}

type updateMembersPayload struct {
	MemberIDs []string `json:"memberIds"`
	Append    bool     `json:"append"`
}

func (h *ProjectHandler) UpdateMembersHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	projectID := vars["id"]
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	var payload updateMembersPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid members data", http.StatusBadRequest)
		return
	}

	var memberIDs []primitive.ObjectID
	for _, raw := range payload.MemberIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid member ID: %s", raw), http.StatusBadRequest)
			return
		}
		memberIDs = append(memberIDs, id)
	}

	project, err := h.Service.UpdateMembers(r.Context(), projectID, memberIDs, payload.Append)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "project": project})
}

func (h *ProjectHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	projectID := vars["id"]
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	err := h.Service.DeleteProject(r.Context(), projectID)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "Project deleted successfully"})
}

func (h *ProjectHandler) GetAllEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	employees, err := h.Service.GetAllEmployees(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: EMPLOYEE_LIST_FAILED, Description: %v", err)
		http.Error(w, "Failed to retrieve employees", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(employees)
}
