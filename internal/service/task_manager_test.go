package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/clock"
	"github.com/juaneliascabrera/task-manager/internal/model"
	"github.com/juaneliascabrera/task-manager/internal/repository"
)

var testStart = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*TaskManager, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(testStart)
	store, err := repository.NewSQLite(filepath.Join(t.TempDir(), "tasks.db"), clk)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return NewTaskManager(store), clk
}

func addUser(t *testing.T, m *TaskManager, username string) uint {
	t.Helper()
	id, err := m.AddUser(context.Background(), username)
	if err != nil {
		t.Fatalf("AddUser(%q): %v", username, err)
	}
	return id
}

func addTask(t *testing.T, m *TaskManager, input repository.TaskInput) uint {
	t.Helper()
	id, err := m.AddTaskForUser(context.Background(), input)
	if err != nil {
		t.Fatalf("AddTaskForUser(%+v): %v", input, err)
	}
	return id
}

func TestAddUserThenLookupRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	id := addUser(t, m, "alice")

	got, err := m.GetUserIDByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserIDByUsername: %v", err)
	}
	if got != id {
		t.Errorf("GetUserIDByUsername = %d, want %d", got, id)
	}

	_, err = m.AddUser(ctx, "alice")
	var taken *model.UsernameAlreadyExistsError
	if !errors.As(err, &taken) {
		t.Fatalf("second AddUser = %v, want UsernameAlreadyExistsError", err)
	}
	if taken.Username != "alice" {
		t.Errorf("error carries username %q, want %q", taken.Username, "alice")
	}
}

func TestGetUserIDByUsernameUnknown(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.GetUserIDByUsername(context.Background(), "ghost")
	var missing *model.UsernameNotFoundError
	if !errors.As(err, &missing) {
		t.Fatalf("GetUserIDByUsername = %v, want UsernameNotFoundError", err)
	}
}

func TestAddTaskForUserChecksOwnerExists(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddTaskForUser(ctx, repository.TaskInput{Description: "orphan", UserID: 77})
	var missing *model.UserIDNotFoundError
	if !errors.As(err, &missing) {
		t.Fatalf("AddTaskForUser = %v, want UserIDNotFoundError", err)
	}
	if missing.UserID != 77 {
		t.Errorf("error carries user id %d, want 77", missing.UserID)
	}
}

func TestCreatedTaskBelongsOnlyToOwner(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	bob := addUser(t, m, "bob")
	taskID := addTask(t, m, repository.TaskInput{Description: "mine", UserID: alice})

	if ok, err := m.ContainsTask(ctx, taskID, &alice); err != nil || !ok {
		t.Errorf("ContainsTask(task, alice) = %v, %v, want true", ok, err)
	}
	if ok, err := m.ContainsTask(ctx, taskID, &bob); err != nil || ok {
		t.Errorf("ContainsTask(task, bob) = %v, %v, want false", ok, err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	bob := addUser(t, m, "bob")

	due := testStart.Add(24 * time.Hour)
	taskID := addTask(t, m, repository.TaskInput{Description: "alice's task", UserID: alice, DueDate: &due})

	otherDue := testStart.Add(48 * time.Hour)
	mutators := []struct {
		name string
		call func() error
	}{
		{"CompleteTaskForUser", func() error { return m.CompleteTaskForUser(ctx, taskID, bob) }},
		{"DeleteTaskForUser", func() error { return m.DeleteTaskForUser(ctx, taskID, bob) }},
		{"UpdateTaskDescriptionForUser", func() error { return m.UpdateTaskDescriptionForUser(ctx, taskID, "hacked", bob) }},
		{"UpdateTaskDueDateForUser", func() error { return m.UpdateTaskDueDateForUser(ctx, taskID, &otherDue, bob) }},
		{"ToggleTaskPriorityForUser", func() error { return m.ToggleTaskPriorityForUser(ctx, taskID, bob) }},
		{"ToggleTaskRecurrenceForUser", func() error { return m.ToggleTaskRecurrenceForUser(ctx, taskID, bob) }},
	}

	for _, tc := range mutators {
		err := tc.call()
		var authErr *model.AuthenticationError
		if !errors.As(err, &authErr) {
			t.Errorf("%s as bob = %v, want AuthenticationError", tc.name, err)
			continue
		}
		if authErr.UserID != bob {
			t.Errorf("%s error carries user id %d, want %d", tc.name, authErr.UserID, bob)
		}
	}

	// The task is untouched after every denied attempt.
	task, err := m.GetTaskByID(ctx, taskID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if task.Description != "alice's task" {
		t.Errorf("Description = %q, want unchanged", task.Description)
	}
	if task.Completed {
		t.Error("task completed despite denied mutation")
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want unchanged %v", task.DueDate, due)
	}
	if task.Priority || task.Recurring {
		t.Error("flags toggled despite denied mutation")
	}
}

func TestForUserTierOnMissingTask(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")

	err := m.CompleteTaskForUser(ctx, 404, alice)
	var authErr *model.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("CompleteTaskForUser(missing) = %v, want AuthenticationError", err)
	}
}

func TestGlobalTierOnMissingTask(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	var notFound *model.TaskNotFoundError
	if err := m.CompleteTask(ctx, 404); !errors.As(err, &notFound) {
		t.Errorf("CompleteTask(missing) = %v, want TaskNotFoundError", err)
	}
	if err := m.DeleteTask(ctx, 404); !errors.As(err, &notFound) {
		t.Errorf("DeleteTask(missing) = %v, want TaskNotFoundError", err)
	}
	if _, err := m.TaskIsCompleted(ctx, 404); !errors.As(err, &notFound) {
		t.Errorf("TaskIsCompleted(missing) = %v, want TaskNotFoundError", err)
	}
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	taskID := addTask(t, m, repository.TaskInput{Description: "one shot", UserID: alice})

	if err := m.CompleteTaskForUser(ctx, taskID, alice); err != nil {
		t.Fatalf("CompleteTaskForUser: %v", err)
	}
	if err := m.CompleteTask(ctx, taskID); err != nil {
		t.Fatalf("second CompleteTask: %v", err)
	}

	done, err := m.TaskIsCompleted(ctx, taskID)
	if err != nil {
		t.Fatalf("TaskIsCompleted: %v", err)
	}
	if !done {
		t.Error("task must stay completed")
	}
}

func TestDeletedTaskIsGone(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	taskID := addTask(t, m, repository.TaskInput{Description: "short lived", UserID: alice})

	if err := m.DeleteTaskForUser(ctx, taskID, alice); err != nil {
		t.Fatalf("DeleteTaskForUser: %v", err)
	}

	var notFound *model.TaskNotFoundError
	if err := m.CompleteTask(ctx, taskID); !errors.As(err, &notFound) {
		t.Errorf("CompleteTask after delete = %v, want TaskNotFoundError", err)
	}
	if err := m.DeleteTask(ctx, taskID); !errors.As(err, &notFound) {
		t.Errorf("DeleteTask after delete = %v, want TaskNotFoundError", err)
	}
}

func TestOverdueScenario(t *testing.T) {
	m, clk := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	due := clk.Now().Add(3 * 24 * time.Hour)
	taskID := addTask(t, m, repository.TaskInput{Description: "buy milk", UserID: alice, DueDate: &due})

	clk.Advance(4 * 24 * time.Hour)

	overdue, err := m.GetOverdueTasksForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetOverdueTasksForUser: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != taskID {
		t.Fatalf("overdue tasks = %d entries, want exactly the milk task", len(overdue))
	}

	if err := m.CompleteTaskForUser(ctx, taskID, alice); err != nil {
		t.Fatalf("CompleteTaskForUser: %v", err)
	}

	overdue, err = m.GetOverdueTasksForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetOverdueTasksForUser: %v", err)
	}
	if len(overdue) != 0 {
		t.Errorf("overdue after completion = %d entries, want none", len(overdue))
	}
}

func TestDeleteAsOtherUserLeavesTask(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	bob := addUser(t, m, "bob")
	taskID := addTask(t, m, repository.TaskInput{Description: "alice only", UserID: alice})

	err := m.DeleteTaskForUser(ctx, taskID, bob)
	var authErr *model.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("DeleteTaskForUser as bob = %v, want AuthenticationError", err)
	}

	if ok, err := m.ContainsTask(ctx, taskID, &alice); err != nil || !ok {
		t.Errorf("ContainsTask(task, alice) after denied delete = %v, %v, want true", ok, err)
	}
}

func TestPerUserReadsCheckUserExists(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	var missing *model.UserIDNotFoundError
	if _, err := m.GetPendingTasksForUser(ctx, 9); !errors.As(err, &missing) {
		t.Errorf("GetPendingTasksForUser(missing) = %v, want UserIDNotFoundError", err)
	}
	if _, err := m.GetOverdueTasksForUser(ctx, 9); !errors.As(err, &missing) {
		t.Errorf("GetOverdueTasksForUser(missing) = %v, want UserIDNotFoundError", err)
	}
	if _, err := m.GetPriorityTasksForUser(ctx, 9); !errors.As(err, &missing) {
		t.Errorf("GetPriorityTasksForUser(missing) = %v, want UserIDNotFoundError", err)
	}
	if _, err := m.TasksCountForUser(ctx, 9); !errors.As(err, &missing) {
		t.Errorf("TasksCountForUser(missing) = %v, want UserIDNotFoundError", err)
	}
}

func TestGetTaskForUser(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	alice := addUser(t, m, "alice")
	bob := addUser(t, m, "bob")
	taskID := addTask(t, m, repository.TaskInput{Description: "readable", UserID: alice})

	task, err := m.GetTaskForUser(ctx, taskID, alice)
	if err != nil {
		t.Fatalf("GetTaskForUser as owner: %v", err)
	}
	if task.ID != taskID {
		t.Errorf("GetTaskForUser id = %d, want %d", task.ID, taskID)
	}

	var authErr *model.AuthenticationError
	if _, err := m.GetTaskForUser(ctx, taskID, bob); !errors.As(err, &authErr) {
		t.Errorf("GetTaskForUser as bob = %v, want AuthenticationError", err)
	}
}
