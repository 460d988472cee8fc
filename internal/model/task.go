package model

import "time"

// Task is a single to-do item. It always belongs to exactly one user; the
// owner is set at creation and never changes.
type Task struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index;not null"`
	Description    string `gorm:"not null"`
	Completed      bool   `gorm:"default:false"`
	DueDate        *time.Time
	Priority       bool `gorm:"default:false"`
	Recurring      bool `gorm:"default:false"`
	RecurrenceDays int  `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OverdueAt reports whether the task is pending with a due date strictly
// before the given instant. A task due exactly at now is not overdue.
func (t Task) OverdueAt(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}
