package services

import (
	"testing"

	"workforce-project/projects-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestBuildInitialTasksPreservesOrder(t *testing.T) {
	assignee := primitive.NewObjectID()
	inputs := []models.TaskFields{
		{Title: strPtr("Collect requirements")},
		{Title: strPtr("Draft schedule"), AssignedTo: strPtr(assignee.Hex())},
		{Title: strPtr("Review budget"), AssignedTo: strPtr("not-a-hex-id")},
	}

	tasks := buildInitialTasks(inputs)

	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(tasks))
	}
	for i, want := range []string{"Collect requirements", "Draft schedule", "Review budget"} {
		if tasks[i].Title != want {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, want)
		}
	}

	if tasks[0].Status != models.StatusNotStarted || tasks[0].Priority != models.PriorityMedium {
		t.Errorf("defaults not applied: %+v", tasks[0])
	}
	if tasks[1].AssignedTo == nil || *tasks[1].AssignedTo != assignee {
		t.Errorf("valid assignee was not applied")
	}
	if tasks[2].AssignedTo != nil {
		t.Errorf("malformed assignee id was not coerced to nil")
	}

	ids := map[primitive.ObjectID]bool{}
	for _, task := range tasks {
		if task.ID.IsZero() {
			t.Errorf("task %q has no id", task.Title)
		}
		if ids[task.ID] {
			t.Errorf("duplicate task id %s", task.ID.Hex())
		}
		ids[task.ID] = true
	}
}

func TestBuildInitialTasksEmptyInput(t *testing.T) {
	if tasks := buildInitialTasks(nil); len(tasks) != 0 {
		t.Errorf("tasks = %d, want 0", len(tasks))
	}
}
