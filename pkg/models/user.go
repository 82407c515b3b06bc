package models

import "time"

// User represents a Telegram user using the bot
type User struct {
	ID        int64     `json:"id" db:"user_id"` // Telegram user ID
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"first_name" db:"first_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
