package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClampProgress(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{150, 100},
	}
	for _, c := range cases {
		if got := ClampProgress(c.in); got != c.want {
			t.Errorf("ClampProgress(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseProgress(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"150", 100, true},
		{"-5", 0, true},
		{"42", 42, true},
		{" 7 ", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"12.5", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseProgress(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseProgress(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCoerceAssignee(t *testing.T) {
	valid := primitive.NewObjectID()
	if got := CoerceAssignee(valid.Hex()); got == nil || *got != valid {
		t.Errorf("CoerceAssignee(%q) did not return the id", valid.Hex())
	}
	for _, raw := range []string{"", "   ", "not-hex", "abc123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if got := CoerceAssignee(raw); got != nil {
			t.Errorf("CoerceAssignee(%q) = %v, want nil", raw, got)
		}
	}
}

func TestApplyProgressUpdateClampsProgress(t *testing.T) {
	task := Task{Progress: 30}

	task.ApplyProgressUpdate(ProgressUpdate{Progress: "150"}, nil)
	if task.Progress != 100 {
		t.Errorf("progress = %d, want 100", task.Progress)
	}

	task.ApplyProgressUpdate(ProgressUpdate{Progress: "-5"}, nil)
	if task.Progress != 0 {
		t.Errorf("progress = %d, want 0", task.Progress)
	}

	task.Progress = 55
	task.ApplyProgressUpdate(ProgressUpdate{Progress: "abc"}, nil)
	if task.Progress != 55 {
		t.Errorf("non-numeric input changed progress to %d, want 55", task.Progress)
	}
}

func TestApplyProgressUpdateHoursAccumulate(t *testing.T) {
	task := Task{}

	task.ApplyProgressUpdate(ProgressUpdate{HoursWorked: "2.5"}, nil)
	task.ApplyProgressUpdate(ProgressUpdate{HoursWorked: "1.0"}, nil)
	if task.HoursWorked != 3.5 {
		t.Errorf("hoursWorked = %v, want 3.5", task.HoursWorked)
	}

	task.ApplyProgressUpdate(ProgressUpdate{HoursWorked: "-4"}, nil)
	task.ApplyProgressUpdate(ProgressUpdate{HoursWorked: "oops"}, nil)
	if task.HoursWorked != 3.5 {
		t.Errorf("invalid input changed hoursWorked to %v, want 3.5", task.HoursWorked)
	}
}

func TestApplyProgressUpdateRemarksOverwrite(t *testing.T) {
	task := Task{Remarks: "first note"}

	task.ApplyProgressUpdate(ProgressUpdate{Remarks: "second note"}, nil)
	if task.Remarks != "second note" {
		t.Errorf("remarks = %q, want %q", task.Remarks, "second note")
	}

	task.ApplyProgressUpdate(ProgressUpdate{Remarks: "   "}, nil)
	if task.Remarks != "second note" {
		t.Errorf("blank remarks overwrote the previous value")
	}
}

func TestApplyProgressUpdateStatus(t *testing.T) {
	task := Task{Status: StatusNotStarted}

	task.ApplyProgressUpdate(ProgressUpdate{Status: "In Progress"}, nil)
	if task.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", task.Status, StatusInProgress)
	}

	task.ApplyProgressUpdate(ProgressUpdate{Status: "Nonsense"}, nil)
	if task.Status != StatusInProgress {
		t.Errorf("invalid status overwrote the previous value")
	}

	// Status and progress may diverge; Completed does not force 100.
	task.Progress = 40
	task.ApplyProgressUpdate(ProgressUpdate{Status: "Completed"}, nil)
	if task.Status != StatusCompleted || task.Progress != 40 {
		t.Errorf("status/progress = %q/%d, want Completed/40", task.Status, task.Progress)
	}
}

func TestApplyProgressUpdateAppendsFiles(t *testing.T) {
	task := Task{Files: []TaskFile{{Name: "a.pdf"}}}

	task.ApplyProgressUpdate(ProgressUpdate{}, []TaskFile{{Name: "b.pdf", Type: "progress"}})
	if len(task.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(task.Files))
	}
	if task.Files[0].Name != "a.pdf" || task.Files[1].Name != "b.pdf" {
		t.Errorf("existing attachments were not preserved: %+v", task.Files)
	}
}

func TestApplyFieldsPartialUpdate(t *testing.T) {
	due := time.Now().Add(48 * time.Hour)
	task := Task{
		Title:       "Write report",
		Description: "quarterly numbers",
		Priority:    PriorityLow,
	}

	title := "Write Q3 report"
	changed := task.ApplyFields(TaskFields{Title: &title, DueDate: &due}, nil)
	if changed {
		t.Errorf("no assignee change expected")
	}
	if task.Title != "Write Q3 report" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Description != "quarterly numbers" || task.Priority != PriorityLow {
		t.Errorf("absent fields were overwritten: %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("dueDate not applied")
	}
}

func TestApplyFieldsAssigneeChange(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	task := Task{}

	raw := first.Hex()
	if changed := task.ApplyFields(TaskFields{AssignedTo: &raw}, nil); !changed {
		t.Errorf("initial assignment should report a change")
	}

	same := first.Hex()
	if changed := task.ApplyFields(TaskFields{AssignedTo: &same}, nil); changed {
		t.Errorf("re-assigning the same employee should not report a change")
	}

	next := second.Hex()
	if changed := task.ApplyFields(TaskFields{AssignedTo: &next}, nil); !changed {
		t.Errorf("assignee change was not reported")
	}

	// Malformed id coerces to nil, which is an unassignment, not an error.
	bad := "not-a-hex-id"
	if changed := task.ApplyFields(TaskFields{AssignedTo: &bad}, nil); changed {
		t.Errorf("coercion to nil should not report a new assignment")
	}
	if task.AssignedTo != nil {
		t.Errorf("malformed assignee id was not coerced to nil")
	}
}

func TestRemoveTask(t *testing.T) {
	a := Task{ID: primitive.NewObjectID(), Title: "a", Progress: 10}
	b := Task{ID: primitive.NewObjectID(), Title: "b", Progress: 20}
	c := Task{ID: primitive.NewObjectID(), Title: "c", Progress: 30}
	project := Project{Tasks: []Task{a, b, c}}

	removed, ok := project.RemoveTask(b.ID)
	if !ok || removed.Title != "b" {
		t.Fatalf("RemoveTask returned (%+v, %v)", removed, ok)
	}
	if len(project.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(project.Tasks))
	}
	if project.Tasks[0].Title != "a" || project.Tasks[0].Progress != 10 ||
		project.Tasks[1].Title != "c" || project.Tasks[1].Progress != 30 {
		t.Errorf("sibling tasks were affected: %+v", project.Tasks)
	}

	if _, ok := project.RemoveTask(b.ID); ok {
		t.Errorf("removing an absent task reported success")
	}
}

func TestFindTask(t *testing.T) {
	a := Task{ID: primitive.NewObjectID(), Title: "a"}
	project := Project{Tasks: []Task{a}}

	if got := project.FindTask(a.ID); got == nil || got.Title != "a" {
		t.Errorf("FindTask did not locate the task")
	}
	if got := project.FindTask(primitive.NewObjectID()); got != nil {
		t.Errorf("FindTask located a non-existent task")
	}

	// The returned pointer aliases the embedded list.
	project.FindTask(a.ID).Progress = 80
	if project.Tasks[0].Progress != 80 {
		t.Errorf("FindTask returned a copy instead of a pointer")
	}
}

func TestHasMember(t *testing.T) {
	id := primitive.NewObjectID()
	project := Project{Members: []primitive.ObjectID{id}}
	if !project.HasMember(id) {
		t.Errorf("HasMember missed an existing member")
	}
	if project.HasMember(primitive.NewObjectID()) {
		t.Errorf("HasMember matched an absent member")
	}
}
