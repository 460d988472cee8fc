// Package cli is the interactive text front end. It translates raw user
// input into facade calls and renders domain errors; it holds no invariants.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/facade"
	"github.com/juaneliascabrera/task-manager/internal/model"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// CLI runs a menu session against the facade.
type CLI struct {
	facade *facade.Facade
	in     *bufio.Scanner
	out    io.Writer
}

func New(f *facade.Facade, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		facade: f,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run loops login sessions until the user quits or input ends.
func (c *CLI) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		username, ok := c.login(ctx)
		if !ok {
			return nil
		}

		if done := c.session(ctx, username); done {
			return nil
		}
	}
}

// login asks for a username, offering to register it if unknown. Returns
// false when the user quits or stdin is exhausted.
func (c *CLI) login(ctx context.Context) (string, bool) {
	for {
		username, ok := c.prompt("\nUsername (empty to quit): ")
		if !ok || username == "" {
			return "", false
		}

		exists, err := c.facade.UserExists(ctx, username)
		if err != nil {
			c.printf("Error: %v\n", err)
			continue
		}
		if exists {
			return username, true
		}

		answer, ok := c.prompt("User %q does not exist. Create it? (y/n): ", username)
		if !ok {
			return "", false
		}
		if strings.EqualFold(answer, "y") {
			id, err := c.facade.CreateUser(ctx, username)
			if err != nil {
				c.printf("Error creating user: %v\n", err)
				continue
			}
			c.printf("User %q created with id %d.\n", username, id)
			return username, true
		}
	}
}

// session serves the menu for one logged-in user. Returns true when the
// whole program should exit.
func (c *CLI) session(ctx context.Context, username string) bool {
	for {
		c.printf("\n--- MAIN MENU ---\n")
		c.printf("Active session: %s\n", username)
		c.printf("1. Create task\n")
		c.printf("2. List pending tasks\n")
		c.printf("3. List overdue tasks\n")
		c.printf("4. List priority tasks\n")
		c.printf("5. Complete task\n")
		c.printf("6. Delete task\n")
		c.printf("7. Edit description / due date\n")
		c.printf("8. Toggle priority / recurrence\n")
		c.printf("9. Switch user\n")
		c.printf("0. Quit\n")

		choice, ok := c.prompt("Choose an option (0-9): ")
		if !ok {
			return true
		}

		switch choice {
		case "1":
			c.handleCreateTask(ctx, username)
		case "2":
			c.handleList(ctx, username, "pending", c.facade.ListPendingTasks)
		case "3":
			c.handleList(ctx, username, "overdue", c.facade.ListOverdueTasks)
		case "4":
			c.handleList(ctx, username, "priority", c.facade.ListPriorityTasks)
		case "5":
			c.handleTaskAction(ctx, username, "complete", c.facade.CompleteTask)
		case "6":
			c.handleTaskAction(ctx, username, "delete", c.facade.DeleteTask)
		case "7":
			c.handleEditTask(ctx, username)
		case "8":
			c.handleToggle(ctx, username)
		case "9":
			return false
		case "0":
			return true
		default:
			c.printf("Unknown option %q.\n", choice)
		}
	}
}

func (c *CLI) handleCreateTask(ctx context.Context, username string) {
	description, ok := c.prompt("Task description: ")
	if !ok {
		return
	}

	var due *time.Time
	raw, ok := c.prompt("Due date (YYYY-MM-DD HH:MM:SS, empty for none): ")
	if !ok {
		return
	}
	if raw != "" {
		parsed, err := time.ParseInLocation(dateTimeLayout, raw, time.Local)
		if err != nil {
			c.printf("Invalid date format, creating the task without a due date.\n")
		} else {
			due = &parsed
		}
	}

	id, err := c.facade.CreateTask(ctx, username, description, due)
	if err != nil {
		c.printf("Error creating task: %s\n", describeError(err))
		return
	}
	c.printf("Task created with id %d.\n", id)
}

func (c *CLI) handleList(ctx context.Context, username, kind string, list func(context.Context, string) ([]model.Task, error)) {
	tasks, err := list(ctx, username)
	if err != nil {
		c.printf("Error listing tasks: %s\n", describeError(err))
		return
	}
	if len(tasks) == 0 {
		c.printf("No %s tasks.\n", kind)
		return
	}
	for _, task := range tasks {
		dueStr := "n/a"
		if task.DueDate != nil {
			dueStr = task.DueDate.Format(dateTimeLayout)
		}
		flags := ""
		if task.Priority {
			flags += " [priority]"
		}
		if task.Recurring {
			flags += fmt.Sprintf(" [recurs every %d days]", task.RecurrenceDays)
		}
		c.printf("[ID: %d] due: %s | %s%s\n", task.ID, dueStr, task.Description, flags)
	}
}

func (c *CLI) handleTaskAction(ctx context.Context, username, verb string, action func(context.Context, string, uint) error) {
	taskID, ok := c.promptTaskID(fmt.Sprintf("Task id to %s: ", verb))
	if !ok {
		return
	}
	if err := action(ctx, username, taskID); err != nil {
		c.printf("Error: %s\n", describeError(err))
		return
	}
	c.printf("Task %d: %s done.\n", taskID, verb)
}

func (c *CLI) handleEditTask(ctx context.Context, username string) {
	taskID, ok := c.promptTaskID("Task id to edit: ")
	if !ok {
		return
	}

	choice, ok := c.prompt("Edit (1) description or (2) due date? ")
	if !ok {
		return
	}

	switch choice {
	case "1":
		description, ok := c.prompt("New description: ")
		if !ok {
			return
		}
		if err := c.facade.UpdateTaskDescription(ctx, username, taskID, description); err != nil {
			c.printf("Error: %s\n", describeError(err))
			return
		}
		c.printf("Description updated.\n")
	case "2":
		raw, ok := c.prompt("New due date (YYYY-MM-DD HH:MM:SS, empty to clear): ")
		if !ok {
			return
		}
		var due *time.Time
		if raw != "" {
			parsed, err := time.ParseInLocation(dateTimeLayout, raw, time.Local)
			if err != nil {
				c.printf("Invalid date format.\n")
				return
			}
			due = &parsed
		}
		if err := c.facade.UpdateTaskDueDate(ctx, username, taskID, due); err != nil {
			c.printf("Error: %s\n", describeError(err))
			return
		}
		c.printf("Due date updated.\n")
	default:
		c.printf("Unknown option %q.\n", choice)
	}
}

func (c *CLI) handleToggle(ctx context.Context, username string) {
	taskID, ok := c.promptTaskID("Task id to toggle: ")
	if !ok {
		return
	}

	choice, ok := c.prompt("Toggle (1) priority or (2) recurrence? ")
	if !ok {
		return
	}

	var err error
	switch choice {
	case "1":
		err = c.facade.ToggleTaskPriority(ctx, username, taskID)
	case "2":
		err = c.facade.ToggleTaskRecurrence(ctx, username, taskID)
	default:
		c.printf("Unknown option %q.\n", choice)
		return
	}
	if err != nil {
		c.printf("Error: %s\n", describeError(err))
		return
	}
	c.printf("Toggled.\n")
}

func (c *CLI) promptTaskID(label string) (uint, bool) {
	raw, ok := c.prompt("%s", label)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.printf("Invalid task id %q.\n", raw)
		return 0, false
	}
	return uint(id), true
}

func (c *CLI) prompt(format string, args ...interface{}) (string, bool) {
	c.printf(format, args...)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *CLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// describeError turns domain errors into the front end's own wording.
func describeError(err error) string {
	var (
		authErr         *model.AuthenticationError
		taskNotFound    *model.TaskNotFoundError
		usernameMissing *model.UsernameNotFoundError
		usernameTaken   *model.UsernameAlreadyExistsError
	)
	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("task %d is not yours", authErr.TaskID)
	case errors.As(err, &taskNotFound):
		return fmt.Sprintf("task %d does not exist", taskNotFound.TaskID)
	case errors.As(err, &usernameMissing):
		return fmt.Sprintf("user %q does not exist", usernameMissing.Username)
	case errors.As(err, &usernameTaken):
		return fmt.Sprintf("username %q is already taken", usernameTaken.Username)
	default:
		return err.Error()
	}
}
