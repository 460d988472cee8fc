package service

import (
	"context"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/model"
	"github.com/juaneliascabrera/task-manager/internal/repository"
)

// TaskManager is the authorization and validation layer over Storage. It is
// the single place where "does this id exist" and "does this id belong to
// this caller" are enforced. It holds one storage reference and no other
// state; every read goes to storage fresh.
//
// Mutators come in two families. The bare methods (CompleteTask, DeleteTask,
// ...) only assert the task exists and are meant for trusted internal
// callers. The ForUser methods additionally assert ownership and are the
// only tier front ends should reach.
type TaskManager struct {
	store repository.Storage
}

func NewTaskManager(store repository.Storage) *TaskManager {
	return &TaskManager{store: store}
}

// assertTaskExists fails with TaskNotFoundError unless the id is present.
func (m *TaskManager) assertTaskExists(ctx context.Context, taskID uint) error {
	ok, err := m.store.ContainsTask(ctx, taskID, nil)
	if err != nil {
		return err
	}
	if !ok {
		return &model.TaskNotFoundError{TaskID: taskID}
	}
	return nil
}

// assertTaskOwned fails with AuthenticationError unless the id exists and
// belongs to userID. The joint check means a forged id owned by another
// user fails here; the delegated bare method then re-checks bare existence.
func (m *TaskManager) assertTaskOwned(ctx context.Context, taskID, userID uint) error {
	ok, err := m.store.ContainsTask(ctx, taskID, &userID)
	if err != nil {
		return err
	}
	if !ok {
		return &model.AuthenticationError{UserID: userID, TaskID: taskID}
	}
	return nil
}

// assertUserExists fails with UserIDNotFoundError unless the id is present.
func (m *TaskManager) assertUserExists(ctx context.Context, userID uint) error {
	ok, err := m.store.ContainsUser(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return &model.UserIDNotFoundError{UserID: userID}
	}
	return nil
}

// AddUser registers a username and returns the new user id. A taken
// username fails with UsernameAlreadyExistsError.
func (m *TaskManager) AddUser(ctx context.Context, username string) (uint, error) {
	taken, err := m.store.ContainsUserByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, &model.UsernameAlreadyExistsError{Username: username}
	}
	return m.store.AddUser(ctx, username)
}

// GetUserIDByUsername resolves a username, failing with
// UsernameNotFoundError when absent.
func (m *TaskManager) GetUserIDByUsername(ctx context.Context, username string) (uint, error) {
	known, err := m.store.ContainsUserByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if !known {
		return 0, &model.UsernameNotFoundError{Username: username}
	}
	return m.store.GetUserIDByUsername(ctx, username)
}

func (m *TaskManager) GetUsernameByID(ctx context.Context, userID uint) (string, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return "", err
	}
	return m.store.GetUsernameByID(ctx, userID)
}

func (m *TaskManager) UsersCount(ctx context.Context) (int64, error) {
	return m.store.UsersCount(ctx)
}

// AddTaskForUser creates a task after asserting the owner exists.
func (m *TaskManager) AddTaskForUser(ctx context.Context, input repository.TaskInput) (uint, error) {
	if err := m.assertUserExists(ctx, input.UserID); err != nil {
		return 0, err
	}
	return m.store.AddTask(ctx, input)
}

// Bare (trusted) tier: existence check, then delegate.

func (m *TaskManager) GetTaskByID(ctx context.Context, taskID uint) (*model.Task, error) {
	return m.store.GetTaskByID(ctx, taskID)
}

// CompleteTask marks a task done. Completing an already-completed task is a
// no-op success.
func (m *TaskManager) CompleteTask(ctx context.Context, taskID uint) error {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return err
	}
	return m.store.CompleteTask(ctx, taskID)
}

func (m *TaskManager) DeleteTask(ctx context.Context, taskID uint) error {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return err
	}
	return m.store.DeleteTask(ctx, taskID)
}

func (m *TaskManager) UpdateTaskDescription(ctx context.Context, taskID uint, description string) error {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return err
	}
	return m.store.UpdateTaskDescription(ctx, taskID, description)
}

func (m *TaskManager) UpdateTaskDueDate(ctx context.Context, taskID uint, due *time.Time) error {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return err
	}
	return m.store.UpdateTaskDueDate(ctx, taskID, due)
}

func (m *TaskManager) ToggleTaskPriority(ctx context.Context, taskID uint) error {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return err
	}
	return m.store.ToggleTaskPriority(ctx, taskID)
}

func (m *TaskManager) ToggleTaskRecurrence(ctx context.Context, taskID uint) error {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return err
	}
	return m.store.ToggleTaskRecurrence(ctx, taskID)
}

func (m *TaskManager) TaskIsCompleted(ctx context.Context, taskID uint) (bool, error) {
	if err := m.assertTaskExists(ctx, taskID); err != nil {
		return false, err
	}
	return m.store.TaskIsCompleted(ctx, taskID)
}

// GetPendingTasks lists pending tasks across all users.
func (m *TaskManager) GetPendingTasks(ctx context.Context) ([]model.Task, error) {
	return m.store.GetPendingTasks(ctx, nil)
}

func (m *TaskManager) ContainsTask(ctx context.Context, taskID uint, userID *uint) (bool, error) {
	return m.store.ContainsTask(ctx, taskID, userID)
}

func (m *TaskManager) TasksCountForUser(ctx context.Context, userID uint) (int64, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return 0, err
	}
	return m.store.TasksCountForUser(ctx, userID)
}

// ForUser (checked) tier: ownership check, then delegate to the bare tier.

func (m *TaskManager) GetTaskForUser(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return m.GetTaskByID(ctx, taskID)
}

func (m *TaskManager) CompleteTaskForUser(ctx context.Context, taskID, userID uint) error {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return err
	}
	return m.CompleteTask(ctx, taskID)
}

func (m *TaskManager) DeleteTaskForUser(ctx context.Context, taskID, userID uint) error {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return err
	}
	return m.DeleteTask(ctx, taskID)
}

func (m *TaskManager) UpdateTaskDescriptionForUser(ctx context.Context, taskID uint, description string, userID uint) error {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return err
	}
	return m.UpdateTaskDescription(ctx, taskID, description)
}

func (m *TaskManager) UpdateTaskDueDateForUser(ctx context.Context, taskID uint, due *time.Time, userID uint) error {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return err
	}
	return m.UpdateTaskDueDate(ctx, taskID, due)
}

func (m *TaskManager) ToggleTaskPriorityForUser(ctx context.Context, taskID, userID uint) error {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return err
	}
	return m.ToggleTaskPriority(ctx, taskID)
}

func (m *TaskManager) ToggleTaskRecurrenceForUser(ctx context.Context, taskID, userID uint) error {
	if err := m.assertTaskOwned(ctx, taskID, userID); err != nil {
		return err
	}
	return m.ToggleTaskRecurrence(ctx, taskID)
}

func (m *TaskManager) GetPendingTasksForUser(ctx context.Context, userID uint) ([]model.Task, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return nil, err
	}
	return m.store.GetPendingTasks(ctx, &userID)
}

func (m *TaskManager) GetOverdueTasksForUser(ctx context.Context, userID uint) ([]model.Task, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return nil, err
	}
	return m.store.GetOverdueTasks(ctx, userID)
}

func (m *TaskManager) GetPriorityTasksForUser(ctx context.Context, userID uint) ([]model.Task, error) {
	if err := m.assertUserExists(ctx, userID); err != nil {
		return nil, err
	}
	return m.store.GetPriorityTasks(ctx, userID)
}
