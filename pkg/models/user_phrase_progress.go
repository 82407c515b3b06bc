package models

import "time"

// MasteryThreshold is the number of net correct answers after which a
// phrase counts as learned.
const MasteryThreshold = 3

// UserPhraseProgress tracks a user's mastery of a single phrase.
// IsLearned is always recomputed from the streak, never set independently.
type UserPhraseProgress struct {
	UserID        int64     `json:"user_id" db:"user_id"`
	PhraseID      int64     `json:"phrase_id" db:"phrase_id"`
	CorrectStreak int       `json:"correct_streak" db:"correct_streak"`
	IsLearned     bool      `json:"is_learned" db:"is_learned"`
	AddedAt       time.Time `json:"added_at" db:"added_at"`
}

// Apply records one answer and returns the updated record. A correct
// answer increments the streak, a wrong one decrements it floored at
// zero. IsLearned is recomputed from the new streak on every call.
func (p UserPhraseProgress) Apply(correct bool) UserPhraseProgress {
	if correct {
		p.CorrectStreak++
	} else if p.CorrectStreak > 0 {
		p.CorrectStreak--
	}
	p.IsLearned = p.CorrectStreak >= MasteryThreshold
	return p
}
