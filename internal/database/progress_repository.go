package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

// ProgressRepository handles database operations for per-user phrase progress
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// UserPhraseInfo is a row of a user's phrase list joined with catalog texts
type UserPhraseInfo struct {
	PhraseID      int64  `db:"phrase_id"`
	English       string `db:"english_phrase"`
	Russian       string `db:"russian_translation"`
	CorrectStreak int    `db:"correct_streak"`
	IsLearned     bool   `db:"is_learned"`
}

// ProgressRecords returns the user's progress records. With onlyUnlearned
// set, only records below the mastery threshold are returned.
func (r *ProgressRepository) ProgressRecords(ctx context.Context, userID int64, onlyUnlearned bool) ([]models.UserPhraseProgress, error) {
	query := `
		SELECT user_id, phrase_id, correct_streak, is_learned, added_at
		FROM user_phrases
		WHERE user_id = ?
	`
	if onlyUnlearned {
		query += " AND is_learned = FALSE"
	}

	var records []models.UserPhraseProgress
	if err := DB.SelectContext(ctx, &records, rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to get progress records: %v", err)
	}
	return records, nil
}

// Get returns progress for a specific user and phrase, or nil when the
// user has never answered this phrase.
func (r *ProgressRepository) Get(ctx context.Context, userID, phraseID int64) (*models.UserPhraseProgress, error) {
	var progress models.UserPhraseProgress
	err := DB.GetContext(ctx, &progress, rebind(`
		SELECT user_id, phrase_id, correct_streak, is_learned, added_at
		FROM user_phrases
		WHERE user_id = ? AND phrase_id = ?
	`), userID, phraseID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %v", err)
	}
	return &progress, nil
}

// Upsert writes a progress record keyed by (user_id, phrase_id). The
// statement is a single atomic merge, so retrying with the same arguments
// is a no-op.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, phraseID int64, correctStreak int, isLearned bool) error {
	query := rebind(`
		INSERT INTO user_phrases (user_id, phrase_id, correct_streak, is_learned)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, phrase_id) DO UPDATE SET
			correct_streak = excluded.correct_streak,
			is_learned = excluded.is_learned
	`)
	if _, err := DB.ExecContext(ctx, query, userID, phraseID, correctStreak, isLearned); err != nil {
		return fmt.Errorf("failed to upsert progress: %v", err)
	}
	return nil
}

// ApplyAnswer records one answer for the pair inside a transaction. The
// row is locked for the read-modify-write on postgres; sqlite serializes
// writers on its own.
func (r *ProgressRepository) ApplyAnswer(ctx context.Context, userID, phraseID int64, correct bool) (models.UserPhraseProgress, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.UserPhraseProgress{}, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT user_id, phrase_id, correct_streak, is_learned, added_at
		FROM user_phrases
		WHERE user_id = ? AND phrase_id = ?
	`
	if DB.DriverName() == "postgres" {
		selectQuery += " FOR UPDATE"
	}

	progress := models.UserPhraseProgress{UserID: userID, PhraseID: phraseID}
	err = tx.GetContext(ctx, &progress, rebind(selectQuery), userID, phraseID)
	if err != nil && err != sql.ErrNoRows {
		return models.UserPhraseProgress{}, fmt.Errorf("failed to read progress: %v", err)
	}

	progress = progress.Apply(correct)

	_, err = tx.ExecContext(ctx, rebind(`
		INSERT INTO user_phrases (user_id, phrase_id, correct_streak, is_learned)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, phrase_id) DO UPDATE SET
			correct_streak = excluded.correct_streak,
			is_learned = excluded.is_learned
	`), userID, phraseID, progress.CorrectStreak, progress.IsLearned)
	if err != nil {
		return models.UserPhraseProgress{}, fmt.Errorf("failed to write progress: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return models.UserPhraseProgress{}, fmt.Errorf("failed to commit progress: %v", err)
	}
	return progress, nil
}

// Link attaches a catalog phrase to the user's set. Safe to call twice.
func (r *ProgressRepository) Link(ctx context.Context, userID, phraseID int64) error {
	query := rebind(`
		INSERT INTO user_phrases (user_id, phrase_id)
		VALUES (?, ?)
		ON CONFLICT (user_id, phrase_id) DO NOTHING
	`)
	if _, err := DB.ExecContext(ctx, query, userID, phraseID); err != nil {
		return fmt.Errorf("failed to link phrase: %v", err)
	}
	return nil
}

// DeleteLink removes a phrase from the user's set
func (r *ProgressRepository) DeleteLink(ctx context.Context, userID, phraseID int64) error {
	query := rebind("DELETE FROM user_phrases WHERE user_id = ? AND phrase_id = ?")
	if _, err := DB.ExecContext(ctx, query, userID, phraseID); err != nil {
		return fmt.Errorf("failed to delete phrase link: %v", err)
	}
	return nil
}

// UserPhrases returns the user's phrase list, newest first, for the
// delete menu.
func (r *ProgressRepository) UserPhrases(ctx context.Context, userID int64, limit int) ([]UserPhraseInfo, error) {
	var phrases []UserPhraseInfo
	err := DB.SelectContext(ctx, &phrases, rebind(`
		SELECT p.phrase_id, p.english_phrase, p.russian_translation,
		       up.correct_streak, up.is_learned
		FROM user_phrases up
		JOIN phrases p ON up.phrase_id = p.phrase_id
		WHERE up.user_id = ?
		ORDER BY up.added_at DESC
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user phrases: %v", err)
	}
	return phrases, nil
}

// CountUserPhrases returns how many phrases the user has in their set
func (r *ProgressRepository) CountUserPhrases(ctx context.Context, userID int64) (int, error) {
	var count int
	query := rebind("SELECT COUNT(*) FROM user_phrases WHERE user_id = ?")
	if err := DB.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count user phrases: %v", err)
	}
	return count, nil
}

// CountLearned returns how many of the user's phrases are learned
func (r *ProgressRepository) CountLearned(ctx context.Context, userID int64) (int, error) {
	var count int
	query := rebind("SELECT COUNT(*) FROM user_phrases WHERE user_id = ? AND is_learned = TRUE")
	if err := DB.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count learned phrases: %v", err)
	}
	return count, nil
}

// LastShownPhrase returns the phrase last posed to the user, or 0 if the
// user has not been shown anything yet.
func (r *ProgressRepository) LastShownPhrase(ctx context.Context, userID int64) (int64, error) {
	var phraseID int64
	query := rebind("SELECT phrase_id FROM shown_phrases WHERE user_id = ?")
	err := DB.GetContext(ctx, &phraseID, query, userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last shown phrase: %v", err)
	}
	return phraseID, nil
}

// MarkShown records the phrase as the user's last shown one
func (r *ProgressRepository) MarkShown(ctx context.Context, userID, phraseID int64) error {
	query := rebind(`
		INSERT INTO shown_phrases (user_id, phrase_id)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			phrase_id = excluded.phrase_id,
			shown_at = CURRENT_TIMESTAMP
	`)
	if _, err := DB.ExecContext(ctx, query, userID, phraseID); err != nil {
		return fmt.Errorf("failed to mark phrase as shown: %v", err)
	}
	return nil
}
