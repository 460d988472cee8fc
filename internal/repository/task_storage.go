package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/juaneliascabrera/task-manager/internal/model"
)

// AddTask persists a new pending task and returns its storage-assigned id.
// The owner id is trusted; the domain layer has already checked it.
func (s *SQLite) AddTask(ctx context.Context, input TaskInput) (uint, error) {
	if input.Description == "" {
		return 0, fmt.Errorf("task description must not be empty")
	}

	task := model.Task{
		UserID:         input.UserID,
		Description:    input.Description,
		DueDate:        normalizeDue(input.DueDate),
		Priority:       input.Priority,
		Recurring:      input.Recurring,
		RecurrenceDays: input.RecurrenceDays,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	return task.ID, nil
}

func (s *SQLite) GetTaskByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).First(&task, taskID).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &model.TaskNotFoundError{TaskID: taskID}
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// GetPendingTasks lists tasks with completed = false in ascending id order.
// A nil userID lists across all users.
func (s *SQLite) GetPendingTasks(ctx context.Context, userID *uint) ([]model.Task, error) {
	q := s.db.WithContext(ctx).Where("completed = ?", false)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var tasks []model.Task
	if err := q.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return tasks, nil
}

// GetOverdueTasks lists the user's pending tasks whose due date is strictly
// before the injected clock's now. A task due exactly at this instant is not
// overdue. Now is truncated to the second to match the stored precision,
// otherwise a task due at the current second would count as overdue.
func (s *SQLite) GetOverdueTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	now := s.clock.Now().Truncate(time.Second)
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND due_date IS NOT NULL AND due_date < ?", userID, false, now).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}

// GetPriorityTasks lists the user's pending tasks flagged as priority.
func (s *SQLite) GetPriorityTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND priority = ?", userID, false, true).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list priority tasks: %w", err)
	}
	return tasks, nil
}

// CompleteTask marks the task done. Completing an already-completed task
// rewrites the same value and succeeds.
func (s *SQLite) CompleteTask(ctx context.Context, taskID uint) error {
	err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("completed", true).Error
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// UpdateTaskDueDate sets the due date, or clears it when due is nil.
func (s *SQLite) UpdateTaskDueDate(ctx context.Context, taskID uint, due *time.Time) error {
	var value interface{}
	if d := normalizeDue(due); d != nil {
		value = *d
	}
	err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("due_date", value).Error
	if err != nil {
		return fmt.Errorf("update task due date: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateTaskDescription(ctx context.Context, taskID uint, description string) error {
	if description == "" {
		return fmt.Errorf("task description must not be empty")
	}
	err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("description", description).Error
	if err != nil {
		return fmt.Errorf("update task description: %w", err)
	}
	return nil
}

func (s *SQLite) ToggleTaskPriority(ctx context.Context, taskID uint) error {
	err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("priority", gorm.Expr("NOT priority")).Error
	if err != nil {
		return fmt.Errorf("toggle task priority: %w", err)
	}
	return nil
}

func (s *SQLite) ToggleTaskRecurrence(ctx context.Context, taskID uint) error {
	err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("recurring", gorm.Expr("NOT recurring")).Error
	if err != nil {
		return fmt.Errorf("toggle task recurrence: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteTask(ctx context.Context, taskID uint) error {
	if err := s.db.WithContext(ctx).Delete(&model.Task{}, taskID).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ContainsTask checks a task id exists; with a non-nil userID it checks id
// and ownership jointly. This is the predicate every authorization check in
// the domain layer rests on.
func (s *SQLite) ContainsTask(ctx context.Context, taskID uint, userID *uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count tasks: %w", err)
	}
	return count > 0, nil
}

func (s *SQLite) TaskIsCompleted(ctx context.Context, taskID uint) (bool, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	return task.Completed, nil
}

func (s *SQLite) TasksCountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// normalizeDue truncates due dates to second precision so a stored date
// round-trips exactly on every engine.
func normalizeDue(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	d := due.Truncate(time.Second)
	return &d
}
