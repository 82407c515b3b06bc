package models

import "time"

// Phrase represents an English phrase with its Russian translation
type Phrase struct {
	ID        int64     `json:"id" db:"phrase_id"`
	English   string    `json:"english_phrase" db:"english_phrase"`
	Russian   string    `json:"russian_translation" db:"russian_translation"`
	Category  string    `json:"category" db:"category"`
	Level     string    `json:"level" db:"level"` // CEFR level, e.g. "A2"
	Example   string    `json:"example" db:"example"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
