package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "Not Started"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectOnHold     ProjectStatus = "On Hold"
)

// Project is the aggregate root. Tasks live embedded inside it; every task
// mutation loads the whole document, changes it in memory and writes the
// whole document back.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Status      ProjectStatus        `bson:"status" json:"status"`
	Priority    Priority             `bson:"priority" json:"priority"`
	StartDate   *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Progress    int                  `bson:"progress" json:"progress"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Tasks       []Task               `bson:"tasks" json:"tasks"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// TaskView is a task with its assignee resolved for display.
type TaskView struct {
	Task
	Assignee *Member `json:"assignee,omitempty"`
}

// ProjectView is a project with creator, members and task assignees
// resolved to employee summaries.
type ProjectView struct {
	Project
	Creator       *Member    `json:"creator,omitempty"`
	MemberDetails []Member   `json:"memberDetails"`
	Tasks         []TaskView `json:"tasks"`
}

// FindTask returns a pointer into the embedded task list, or nil if the id
// is not present.
func (p *Project) FindTask(taskID primitive.ObjectID) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return &p.Tasks[i]
		}
	}
	return nil
}

// RemoveTask deletes exactly one task by id and returns the removed task.
// Sibling tasks are untouched.
func (p *Project) RemoveTask(taskID primitive.ObjectID) (Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			removed := p.Tasks[i]
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return removed, true
		}
	}
	return Task{}, false
}

// HasMember reports whether the employee id is already in the member list.
func (p *Project) HasMember(id primitive.ObjectID) bool {
	for _, m := range p.Members {
		if m == id {
			return true
		}
	}
	return false
}
