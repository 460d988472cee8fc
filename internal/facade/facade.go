// Package facade keys every operation by username instead of user id. It
// translates a username to its internal id and forwards to the domain
// layer; it owns no invariants of its own.
package facade

import (
	"context"
	"errors"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/model"
	"github.com/juaneliascabrera/task-manager/internal/repository"
	"github.com/juaneliascabrera/task-manager/internal/service"
)

type Facade struct {
	manager *service.TaskManager
}

func New(manager *service.TaskManager) *Facade {
	return &Facade{manager: manager}
}

// CreateUser registers a new username and returns the assigned user id.
func (f *Facade) CreateUser(ctx context.Context, username string) (uint, error) {
	return f.manager.AddUser(ctx, username)
}

// UserExists reports whether the username is registered.
func (f *Facade) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		var notFound *model.UsernameNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateTask adds a task for the named user and returns the task id.
func (f *Facade) CreateTask(ctx context.Context, username, description string, due *time.Time) (uint, error) {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return f.manager.AddTaskForUser(ctx, repository.TaskInput{
		Description: description,
		UserID:      userID,
		DueDate:     due,
	})
}

func (f *Facade) DeleteTask(ctx context.Context, username string, taskID uint) error {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return f.manager.DeleteTaskForUser(ctx, taskID, userID)
}

func (f *Facade) CompleteTask(ctx context.Context, username string, taskID uint) error {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return f.manager.CompleteTaskForUser(ctx, taskID, userID)
}

func (f *Facade) ListPendingTasks(ctx context.Context, username string) ([]model.Task, error) {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return f.manager.GetPendingTasksForUser(ctx, userID)
}

func (f *Facade) ListOverdueTasks(ctx context.Context, username string) ([]model.Task, error) {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return f.manager.GetOverdueTasksForUser(ctx, userID)
}

func (f *Facade) ListPriorityTasks(ctx context.Context, username string) ([]model.Task, error) {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return f.manager.GetPriorityTasksForUser(ctx, userID)
}

func (f *Facade) UpdateTaskDescription(ctx context.Context, username string, taskID uint, description string) error {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return f.manager.UpdateTaskDescriptionForUser(ctx, taskID, description, userID)
}

// UpdateTaskDueDate sets the task's due date; a nil due clears it.
func (f *Facade) UpdateTaskDueDate(ctx context.Context, username string, taskID uint, due *time.Time) error {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return f.manager.UpdateTaskDueDateForUser(ctx, taskID, due, userID)
}

func (f *Facade) ToggleTaskPriority(ctx context.Context, username string, taskID uint) error {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return f.manager.ToggleTaskPriorityForUser(ctx, taskID, userID)
}

func (f *Facade) ToggleTaskRecurrence(ctx context.Context, username string, taskID uint) error {
	userID, err := f.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return f.manager.ToggleTaskRecurrenceForUser(ctx, taskID, userID)
}
