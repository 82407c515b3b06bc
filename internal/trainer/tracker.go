package trainer

import (
	"context"
	"fmt"
	"log"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

// answerStore applies one answer to a (user, phrase) pair atomically.
// Satisfied by database.ProgressRepository.
type answerStore interface {
	ApplyAnswer(ctx context.Context, userID, phraseID int64, correct bool) (models.UserPhraseProgress, error)
}

// Tracker updates per-user mastery state from observed answers
type Tracker struct {
	store answerStore
}

// NewTracker creates a tracker over the given store
func NewTracker(store answerStore) *Tracker {
	return &Tracker{store: store}
}

// RecordAnswer applies the answer and returns the updated record. The
// streak never goes negative and IsLearned always equals
// streak >= MasteryThreshold; a record violating that is a store bug and
// is reported as an error rather than passed through.
func (t *Tracker) RecordAnswer(ctx context.Context, userID, phraseID int64, correct bool) (models.UserPhraseProgress, error) {
	progress, err := t.store.ApplyAnswer(ctx, userID, phraseID, correct)
	if err != nil {
		return models.UserPhraseProgress{}, err
	}

	if progress.CorrectStreak < 0 || progress.IsLearned != (progress.CorrectStreak >= models.MasteryThreshold) {
		return models.UserPhraseProgress{}, fmt.Errorf(
			"inconsistent progress state for user %d phrase %d: streak=%d learned=%v",
			userID, phraseID, progress.CorrectStreak, progress.IsLearned)
	}

	log.Printf("progress updated: user_id=%d phrase_id=%d correct_streak=%d is_learned=%v",
		userID, phraseID, progress.CorrectStreak, progress.IsLearned)
	return progress, nil
}
