package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/model"
)

// ReminderService builds human-readable task digests for notifications.
type ReminderService struct {
	manager *TaskManager
}

func NewReminderService(manager *TaskManager) *ReminderService {
	return &ReminderService{manager: manager}
}

// Digest renders a user's overdue and pending tasks as HTML-formatted text.
func (s *ReminderService) Digest(ctx context.Context, userID uint, now time.Time) (string, error) {
	pending, err := s.manager.GetPendingTasksForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	overdue, err := s.manager.GetOverdueTasksForUser(ctx, userID)
	if err != nil {
		return "", err
	}

	overdueIDs := make(map[uint]bool, len(overdue))
	for _, task := range overdue {
		overdueIDs[task.ID] = true
	}

	var upcoming []model.Task
	for _, task := range pending {
		if !overdueIDs[task.ID] {
			upcoming = append(upcoming, task)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		switch {
		case upcoming[i].DueDate == nil && upcoming[j].DueDate == nil:
			return upcoming[i].ID < upcoming[j].ID
		case upcoming[i].DueDate == nil:
			return false
		case upcoming[j].DueDate == nil:
			return true
		default:
			return upcoming[i].DueDate.Before(*upcoming[j].DueDate)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Task digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	builder.WriteString("⚠️ <b>Overdue</b>\n")
	if len(overdue) == 0 {
		builder.WriteString("— nothing overdue\n")
	} else {
		for _, task := range overdue {
			builder.WriteString(formatDigestTask(task, now))
		}
	}

	builder.WriteString("\n🔥 <b>Pending</b>\n")
	if len(upcoming) == 0 {
		builder.WriteString("— no open tasks\n")
	} else {
		for _, task := range upcoming {
			builder.WriteString(formatDigestTask(task, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatDigestTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case task.OverdueAt(now):
		icon = "⚠️"
	case task.Priority:
		icon = "❗"
	}

	sb.WriteString(fmt.Sprintf("%s [%d] %s", icon, task.ID, html.EscapeString(strings.TrimSpace(task.Description))))

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if task.OverdueAt(now) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", d.Format("2006-01-02 15:04")))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}
