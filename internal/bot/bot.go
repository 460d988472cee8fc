// Package bot is the Telegram front end. Like the CLI it only translates
// messages into facade calls; ownership checks live in the domain layer.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/juaneliascabrera/task-manager/internal/facade"
	"github.com/juaneliascabrera/task-manager/internal/model"
	"github.com/juaneliascabrera/task-manager/internal/service"
)

const dateLayout = "2006-01-02"

// Bot serves task commands over Telegram. Each Telegram account maps to a
// task-manager username; the chats map remembers where to deliver digests.
type Bot struct {
	api         *tgbotapi.BotAPI
	facade      *facade.Facade
	reminderSvc *service.ReminderService
	manager     *service.TaskManager

	mu    sync.Mutex
	chats map[string]int64 // username -> chat id
}

func New(token string, f *facade.Facade, manager *service.TaskManager, reminderSvc *service.ReminderService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		facade:      f,
		manager:     manager,
		reminderSvc: reminderSvc,
		chats:       make(map[string]int64),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. See /help.")
	}

	log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())

	username := usernameFor(msg.From)
	b.rememberChat(username, msg.Chat.ID)

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg, username)
	case "help":
		return b.handleHelp(msg)
	case "add":
		return b.handleAdd(ctx, msg, username)
	case "tasks":
		return b.handleList(ctx, msg, username, "pending", b.facade.ListPendingTasks)
	case "overdue":
		return b.handleList(ctx, msg, username, "overdue", b.facade.ListOverdueTasks)
	case "priority":
		return b.handleList(ctx, msg, username, "priority", b.facade.ListPriorityTasks)
	case "done":
		return b.handleTaskAction(ctx, msg, username, "completed", b.facade.CompleteTask)
	case "delete":
		return b.handleTaskAction(ctx, msg, username, "deleted", b.facade.DeleteTask)
	case "flag":
		return b.handleTaskAction(ctx, msg, username, "priority toggled", b.facade.ToggleTaskPriority)
	case "due":
		return b.handleDue(ctx, msg, username)
	case "report":
		return b.handleReport(ctx, msg, username)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

// handleStart registers the Telegram username as a task-manager user on
// first contact.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, username string) error {
	exists, err := b.facade.UserExists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := b.facade.CreateUser(ctx, username); err != nil {
			return err
		}
		log.Printf("[info] registered user %q", username)
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I track your tasks.</b>\n\nCommands:\n"+
			"• /add &lt;description&gt; | &lt;YYYY-MM-DD&gt; — new task (date optional)\n"+
			"• /tasks — pending tasks\n"+
			"• /overdue — overdue tasks\n"+
			"• /priority — priority tasks\n"+
			"• /done &lt;id&gt; — complete a task\n"+
			"• /delete &lt;id&gt; — delete a task\n"+
			"• /flag &lt;id&gt; — toggle priority\n"+
			"• /due &lt;id&gt; &lt;YYYY-MM-DD|clear&gt; — change due date\n"+
			"• /report — task digest",
		escape(username),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /add buy milk | 2026-09-15\n" +
		"• /tasks, /overdue, /priority — listings\n" +
		"• /done 3, /delete 3, /flag 3 — act on task 3\n" +
		"• /due 3 2026-09-20 or /due 3 clear\n" +
		"• /report — digest of overdue and pending tasks"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, username string) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Usage: /add description | YYYY-MM-DD")
	}

	description := args
	var due *time.Time
	if idx := strings.LastIndex(args, "|"); idx >= 0 {
		description = strings.TrimSpace(args[:idx])
		rawDate := strings.TrimSpace(args[idx+1:])
		if rawDate != "" {
			parsed, err := time.ParseInLocation(dateLayout, rawDate, time.Local)
			if err != nil {
				return b.sendText(msg.Chat.ID, "Date must look like <code>2026-09-15</code>.")
			}
			due = &parsed
		}
	}

	id, err := b.facade.CreateTask(ctx, username, description, due)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ "+escape(describeError(err)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Task created with id %d.", id))
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message, username, kind string, list func(context.Context, string) ([]model.Task, error)) error {
	tasks, err := list(ctx, username)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ "+escape(describeError(err)))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🎉 No %s tasks.", kind))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>Your %s tasks</b>\n", kind))
	for _, task := range tasks {
		sb.WriteString(fmt.Sprintf("• [%d] %s", task.ID, escape(task.Description)))
		if task.Priority {
			sb.WriteString(" ❗")
		}
		if task.DueDate != nil {
			sb.WriteString(fmt.Sprintf(" — due %s", task.DueDate.Format(dateLayout)))
		}
		sb.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleTaskAction(ctx context.Context, msg *tgbotapi.Message, username, verb string, action func(context.Context, string, uint) error) error {
	taskID, err := parseTaskID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /"+msg.Command()+" <id>")
	}
	if err := action(ctx, username, taskID); err != nil {
		return b.sendText(msg.Chat.ID, "❌ "+escape(describeError(err)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Task %d %s.", taskID, verb))
}

func (b *Bot) handleDue(ctx context.Context, msg *tgbotapi.Message, username string) error {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /due <id> <YYYY-MM-DD|clear>")
	}

	taskID, err := parseTaskID(parts[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Task id must be a number.")
	}

	var due *time.Time
	if !strings.EqualFold(parts[1], "clear") {
		parsed, err := time.ParseInLocation(dateLayout, parts[1], time.Local)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Date must look like <code>2026-09-15</code> or be <code>clear</code>.")
		}
		due = &parsed
	}

	if err := b.facade.UpdateTaskDueDate(ctx, username, taskID, due); err != nil {
		return b.sendText(msg.Chat.ID, "❌ "+escape(describeError(err)))
	}
	if due == nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Task %d due date cleared.", taskID))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Task %d due %s.", taskID, due.Format(dateLayout)))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message, username string) error {
	userID, err := b.manager.GetUserIDByUsername(ctx, username)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ "+escape(describeError(err)))
	}
	text, err := b.reminderSvc.Digest(ctx, userID, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the digest: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDigests delivers the task digest to every chat the bot has seen this
// run. Driven by the scheduler.
func (b *Bot) SendDigests(ctx context.Context) error {
	b.mu.Lock()
	targets := make(map[string]int64, len(b.chats))
	for username, chatID := range b.chats {
		targets[username] = chatID
	}
	b.mu.Unlock()

	for username, chatID := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		userID, err := b.manager.GetUserIDByUsername(ctx, username)
		if err != nil {
			log.Printf("digest for %q: %v", username, err)
			continue
		}
		text, err := b.reminderSvc.Digest(ctx, userID, time.Now())
		if err != nil {
			log.Printf("digest for %q: %v", username, err)
			continue
		}
		if err := b.sendText(chatID, text); err != nil {
			log.Printf("send digest to %q: %v", username, err)
		}
	}
	return nil
}

func (b *Bot) rememberChat(username string, chatID int64) {
	b.mu.Lock()
	b.chats[username] = chatID
	b.mu.Unlock()
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// usernameFor maps a Telegram account to a task-manager username. Accounts
// without a public username get a stable synthetic one.
func usernameFor(from *tgbotapi.User) string {
	if from.UserName != "" {
		return from.UserName
	}
	return "tg" + strconv.FormatInt(from.ID, 10)
}

func parseTaskID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse task id: %w", err)
	}
	return uint(id), nil
}

func escape(s string) string {
	return html.EscapeString(s)
}

// describeError phrases domain errors for chat messages.
func describeError(err error) string {
	var (
		authErr      *model.AuthenticationError
		taskNotFound *model.TaskNotFoundError
		nameMissing  *model.UsernameNotFoundError
	)
	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("task %d is not yours", authErr.TaskID)
	case errors.As(err, &taskNotFound):
		return fmt.Sprintf("task %d does not exist", taskNotFound.TaskID)
	case errors.As(err, &nameMissing):
		return "you are not registered yet, send /start first"
	default:
		return err.Error()
	}
}
