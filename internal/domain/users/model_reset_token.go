package users

import "time"

// PasswordResetToken is a one-shot token mailed to the user. Consumed
// (deleted) on a successful reset.
type PasswordResetToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Token     string `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
