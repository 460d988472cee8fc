// Package postgres implements the repository.Storage contract on
// PostgreSQL via pgx. Only the row mapping and SQL differ from the SQLite
// engine; the semantics are identical.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juaneliascabrera/task-manager/internal/clock"
	"github.com/juaneliascabrera/task-manager/internal/model"
	"github.com/juaneliascabrera/task-manager/internal/repository"
)

// Storage holds the connection pool and the injected clock.
type Storage struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

var _ repository.Storage = (*Storage)(nil)

// New connects to the database and ensures the schema exists.
func New(ctx context.Context, connString string, clk clock.Clock) (*Storage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := &Storage{pool: pool, clock: clk}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			description TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			due_date TIMESTAMPTZ NULL,
			priority BOOLEAN NOT NULL DEFAULT FALSE,
			recurring BOOLEAN NOT NULL DEFAULT FALSE,
			recurrence_days INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

const taskColumns = `id, user_id, description, completed, due_date, priority, recurring, recurrence_days, created_at, updated_at`

// scanTask is the single row-to-entity seam for tasks.
func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Description,
		&t.Completed,
		&t.DueDate,
		&t.Priority,
		&t.Recurring,
		&t.RecurrenceDays,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (s *Storage) scanTasks(rows pgx.Rows) ([]model.Task, error) {
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Storage) AddUser(ctx context.Context, username string) (uint, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1);
	`, username).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return 0, &model.UsernameAlreadyExistsError{Username: username}
	}

	var id uint
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (username) VALUES ($1) RETURNING id;
	`, username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *Storage) ContainsUser(ctx context.Context, userID uint) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);
	`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (s *Storage) ContainsUserByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1);
	`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (s *Storage) UsersCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *Storage) GetUsernameByID(ctx context.Context, userID uint) (string, error) {
	var username string
	err := s.pool.QueryRow(ctx, `
		SELECT username FROM users WHERE id = $1;
	`, userID).Scan(&username)
	switch {
	case err == nil:
		return username, nil
	case errors.Is(err, pgx.ErrNoRows):
		return "", &model.UserIDNotFoundError{UserID: userID}
	default:
		return "", fmt.Errorf("find user: %w", err)
	}
}

func (s *Storage) GetUserIDByUsername(ctx context.Context, username string) (uint, error) {
	var id uint
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM users WHERE username = $1;
	`, username).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, &model.UsernameNotFoundError{Username: username}
	default:
		return 0, fmt.Errorf("find user: %w", err)
	}
}

func (s *Storage) AddTask(ctx context.Context, input repository.TaskInput) (uint, error) {
	if input.Description == "" {
		return 0, fmt.Errorf("task description must not be empty")
	}

	var due *time.Time
	if input.DueDate != nil {
		d := input.DueDate.Truncate(time.Second)
		due = &d
	}

	var id uint
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, description, due_date, priority, recurring, recurrence_days)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;
	`,
		input.UserID,
		input.Description,
		due,
		input.Priority,
		input.Recurring,
		input.RecurrenceDays,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, taskID uint) (*model.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1;
	`, taskID)
	t, err := scanTask(row)
	switch {
	case err == nil:
		return &t, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, &model.TaskNotFoundError{TaskID: taskID}
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

func (s *Storage) GetPendingTasks(ctx context.Context, userID *uint) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = FALSE`
	args := []interface{}{}
	if userID != nil {
		query += ` AND user_id = $1`
		args = append(args, *userID)
	}
	query += `
		ORDER BY id;`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return s.scanTasks(rows)
}

// GetOverdueTasks truncates now to the second to match the stored due-date
// precision; a task due exactly at the current second is not overdue.
func (s *Storage) GetOverdueTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		  AND completed = FALSE
		  AND due_date IS NOT NULL
		  AND due_date < $2
		ORDER BY id;
	`, userID, s.clock.Now().Truncate(time.Second))
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return s.scanTasks(rows)
}

func (s *Storage) GetPriorityTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		  AND completed = FALSE
		  AND priority = TRUE
		ORDER BY id;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list priority tasks: %w", err)
	}
	return s.scanTasks(rows)
}

func (s *Storage) CompleteTask(ctx context.Context, taskID uint) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET completed = TRUE, updated_at = now() WHERE id = $1;
	`, taskID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

func (s *Storage) UpdateTaskDueDate(ctx context.Context, taskID uint, due *time.Time) error {
	var value *time.Time
	if due != nil {
		d := due.Truncate(time.Second)
		value = &d
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET due_date = $2, updated_at = now() WHERE id = $1;
	`, taskID, value)
	if err != nil {
		return fmt.Errorf("update task due date: %w", err)
	}
	return nil
}

func (s *Storage) UpdateTaskDescription(ctx context.Context, taskID uint, description string) error {
	if description == "" {
		return fmt.Errorf("task description must not be empty")
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET description = $2, updated_at = now() WHERE id = $1;
	`, taskID, description)
	if err != nil {
		return fmt.Errorf("update task description: %w", err)
	}
	return nil
}

func (s *Storage) ToggleTaskPriority(ctx context.Context, taskID uint) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET priority = NOT priority, updated_at = now() WHERE id = $1;
	`, taskID)
	if err != nil {
		return fmt.Errorf("toggle task priority: %w", err)
	}
	return nil
}

func (s *Storage) ToggleTaskRecurrence(ctx context.Context, taskID uint) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET recurring = NOT recurring, updated_at = now() WHERE id = $1;
	`, taskID)
	if err != nil {
		return fmt.Errorf("toggle task recurrence: %w", err)
	}
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, taskID uint) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1;
	`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Storage) ContainsTask(ctx context.Context, taskID uint, userID *uint) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1`
	args := []interface{}{taskID}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	query += `);`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check task: %w", err)
	}
	return exists, nil
}

func (s *Storage) TaskIsCompleted(ctx context.Context, taskID uint) (bool, error) {
	var completed bool
	err := s.pool.QueryRow(ctx, `
		SELECT completed FROM tasks WHERE id = $1;
	`, taskID).Scan(&completed)
	switch {
	case err == nil:
		return completed, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, &model.TaskNotFoundError{TaskID: taskID}
	default:
		return false, fmt.Errorf("find task: %w", err)
	}
}

func (s *Storage) TasksCountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks WHERE user_id = $1;
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}
