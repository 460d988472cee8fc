package repository

import (
	"context"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/model"
)

// TaskInput carries the fields needed to create a task.
type TaskInput struct {
	Description    string
	UserID         uint
	DueDate        *time.Time
	Priority       bool
	Recurring      bool
	RecurrenceDays int
}

// Storage is the unchecked persistence contract for users and tasks. It
// trusts the caller to have validated ownership and existence; the domain
// layer (service.TaskManager) is the single place those checks happen.
//
// Any engine keeping the two tables, the username uniqueness constraint and
// the nullability of due dates satisfies this interface. Due dates survive a
// round trip at second precision.
type Storage interface {
	// Users.
	AddUser(ctx context.Context, username string) (uint, error)
	ContainsUser(ctx context.Context, userID uint) (bool, error)
	ContainsUserByUsername(ctx context.Context, username string) (bool, error)
	UsersCount(ctx context.Context) (int64, error)
	GetUsernameByID(ctx context.Context, userID uint) (string, error)
	GetUserIDByUsername(ctx context.Context, username string) (uint, error)

	// Tasks. GetPendingTasks and ContainsTask take an optional owner: nil
	// means "any user". Listings are returned in ascending id order.
	AddTask(ctx context.Context, input TaskInput) (uint, error)
	GetTaskByID(ctx context.Context, taskID uint) (*model.Task, error)
	GetPendingTasks(ctx context.Context, userID *uint) ([]model.Task, error)
	GetOverdueTasks(ctx context.Context, userID uint) ([]model.Task, error)
	GetPriorityTasks(ctx context.Context, userID uint) ([]model.Task, error)
	CompleteTask(ctx context.Context, taskID uint) error
	UpdateTaskDueDate(ctx context.Context, taskID uint, due *time.Time) error
	UpdateTaskDescription(ctx context.Context, taskID uint, description string) error
	ToggleTaskPriority(ctx context.Context, taskID uint) error
	ToggleTaskRecurrence(ctx context.Context, taskID uint) error
	DeleteTask(ctx context.Context, taskID uint) error
	ContainsTask(ctx context.Context, taskID uint, userID *uint) (bool, error)
	TaskIsCompleted(ctx context.Context, taskID uint) (bool, error)
	TasksCountForUser(ctx context.Context, userID uint) (int64, error)

	// Close releases the backing handle. The handle is never reacquired.
	Close() error
}
