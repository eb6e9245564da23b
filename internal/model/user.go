package model

import "time"

// NotificationState mirrors the notification permission model: reminders are
// delivered only while the user is in NotificationGranted.
type NotificationState string

const (
	NotificationDefault NotificationState = "default"
	NotificationGranted NotificationState = "granted"
	NotificationDenied  NotificationState = "denied"
)

// User stores Telegram user metadata and the reminder opt-in state.
type User struct {
	ID            uint  `gorm:"primaryKey"`
	TelegramID    int64 `gorm:"uniqueIndex"`
	FirstName     string
	LastName      string
	Username      string
	Notifications NotificationState `gorm:"default:default"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
