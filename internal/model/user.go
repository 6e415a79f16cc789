package model

import (
	"fmt"
	"strings"
	"time"
)

// User is a Telegram account known to the planner. Every user owns one
// personal workspace and may be a member of others.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName picks the friendliest non-empty label for the user.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return fmt.Sprintf("user %d", u.TelegramID)
}
