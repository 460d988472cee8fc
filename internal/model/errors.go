package model

import "fmt"

// Domain errors carry the offending id or username rather than a canned
// message, so front ends can phrase their own UX around them. Match with
// errors.As.

// TaskNotFoundError reports an operation against a task id absent from
// storage.
type TaskNotFoundError struct {
	TaskID uint
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.TaskID)
}

// UserIDNotFoundError reports an operation against a user id absent from
// storage.
type UserIDNotFoundError struct {
	UserID uint
}

func (e *UserIDNotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.UserID)
}

// UsernameNotFoundError reports a failed username lookup.
type UsernameNotFoundError struct {
	Username string
}

func (e *UsernameNotFoundError) Error() string {
	return fmt.Sprintf("username %q not found", e.Username)
}

// UsernameAlreadyExistsError reports an attempt to register a taken
// username.
type UsernameAlreadyExistsError struct {
	Username string
}

func (e *UsernameAlreadyExistsError) Error() string {
	return fmt.Sprintf("username %q already exists", e.Username)
}

// AuthenticationError reports a task that exists but does not belong to the
// calling user.
type AuthenticationError struct {
	UserID uint
	TaskID uint
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("task %d does not belong to user %d", e.TaskID, e.UserID)
}
