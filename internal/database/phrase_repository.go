package database

import (
	"context"
	"fmt"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

// PhraseRepository handles database operations for the phrase catalog
type PhraseRepository struct{}

// NewPhraseRepository creates a new repository instance
func NewPhraseRepository() *PhraseRepository {
	return &PhraseRepository{}
}

// Add inserts a phrase into the catalog. The (english, russian) pair is
// unique catalog-wide; on conflict the existing phrase's ID is returned
// and created is false.
func (r *PhraseRepository) Add(ctx context.Context, english, russian, category, level string) (id int64, created bool, err error) {
	query := rebind(`
		INSERT INTO phrases (english_phrase, russian_translation, category, level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (english_phrase, russian_translation) DO NOTHING
	`)
	result, err := DB.ExecContext(ctx, query, english, russian, category, level)
	if err != nil {
		return 0, false, fmt.Errorf("failed to add phrase: %v", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		created = true
	}

	err = DB.GetContext(ctx, &id, rebind(`
		SELECT phrase_id FROM phrases
		WHERE english_phrase = ? AND russian_translation = ?
	`), english, russian)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get phrase ID: %v", err)
	}
	return id, created, nil
}

// GetByID returns a phrase by ID
func (r *PhraseRepository) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	var phrase models.Phrase
	err := DB.GetContext(ctx, &phrase, rebind(`
		SELECT phrase_id, english_phrase, russian_translation,
		       COALESCE(category, '') AS category,
		       COALESCE(level, '') AS level,
		       COALESCE(example, '') AS example,
		       created_at
		FROM phrases WHERE phrase_id = ?
	`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase by ID: %v", err)
	}
	return &phrase, nil
}

// RandomExcluding returns up to limit catalog phrases excluding the given
// one, in store-side random order. The caller is responsible for
// deduplication; the random order here is only a sampling convenience.
func (r *PhraseRepository) RandomExcluding(ctx context.Context, phraseID int64, limit int) ([]models.Phrase, error) {
	var phrases []models.Phrase
	err := DB.SelectContext(ctx, &phrases, rebind(`
		SELECT phrase_id, english_phrase, russian_translation,
		       COALESCE(category, '') AS category,
		       COALESCE(level, '') AS level,
		       COALESCE(example, '') AS example,
		       created_at
		FROM phrases
		WHERE phrase_id != ?
		ORDER BY RANDOM()
		LIMIT ?
	`), phraseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get distractor candidates: %v", err)
	}
	return phrases, nil
}

// WithoutProgress returns catalog phrases the user has no progress record
// for, in random order.
func (r *PhraseRepository) WithoutProgress(ctx context.Context, userID int64, limit int) ([]models.Phrase, error) {
	var phrases []models.Phrase
	err := DB.SelectContext(ctx, &phrases, rebind(`
		SELECT p.phrase_id, p.english_phrase, p.russian_translation,
		       COALESCE(p.category, '') AS category,
		       COALESCE(p.level, '') AS level,
		       COALESCE(p.example, '') AS example,
		       p.created_at
		FROM phrases p
		WHERE p.phrase_id NOT IN (
			SELECT phrase_id FROM user_phrases WHERE user_id = ?
		)
		ORDER BY RANDOM()
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get fresh phrases: %v", err)
	}
	return phrases, nil
}

// RandomAny returns up to limit random catalog phrases (review mode).
func (r *PhraseRepository) RandomAny(ctx context.Context, limit int) ([]models.Phrase, error) {
	var phrases []models.Phrase
	err := DB.SelectContext(ctx, &phrases, rebind(`
		SELECT phrase_id, english_phrase, russian_translation,
		       COALESCE(category, '') AS category,
		       COALESCE(level, '') AS level,
		       COALESCE(example, '') AS example,
		       created_at
		FROM phrases
		ORDER BY RANDOM()
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get random phrases: %v", err)
	}
	return phrases, nil
}

// Count returns the catalog size
func (r *PhraseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM phrases"); err != nil {
		return 0, fmt.Errorf("failed to count phrases: %v", err)
	}
	return count, nil
}

// initialPhrases are loaded on first start so a fresh install has
// something to train on.
var initialPhrases = []models.Phrase{
	{English: "How are you doing?", Russian: "Как твои дела?", Category: "greetings", Level: "A2"},
	{English: "What's up?", Russian: "Как дела? (неформально)", Category: "greetings", Level: "A2"},
	{English: "Long time no see.", Russian: "Давно не виделись.", Category: "greetings", Level: "A2"},
	{English: "I don't understand.", Russian: "Я не понимаю.", Category: "communication", Level: "A2"},
	{English: "Could you repeat that?", Russian: "Не могли бы вы повторить?", Category: "communication", Level: "A2"},
	{English: "What does this word mean?", Russian: "Что означает это слово?", Category: "communication", Level: "A2"},
	{English: "I agree with you.", Russian: "Я согласен с тобой.", Category: "communication", Level: "A2"},
	{English: "Let me think about it.", Russian: "Дай мне подумать об этом.", Category: "communication", Level: "A2"},
	{English: "In my opinion...", Russian: "По моему мнению...", Category: "opinions", Level: "A2"},
	{English: "That's a good idea.", Russian: "Это хорошая идея.", Category: "opinions", Level: "A2"},
}

// SeedInitial loads the starter phrases, skipping ones already present.
// Returns the number of phrases actually inserted.
func (r *PhraseRepository) SeedInitial(ctx context.Context) (int, error) {
	loaded := 0
	for _, p := range initialPhrases {
		query := rebind(`
			INSERT INTO phrases (english_phrase, russian_translation, category, level)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (english_phrase, russian_translation) DO NOTHING
		`)
		result, err := DB.ExecContext(ctx, query, p.English, p.Russian, p.Category, p.Level)
		if err != nil {
			return loaded, fmt.Errorf("failed to seed phrase %q: %v", p.English, err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			loaded++
		}
	}
	return loaded, nil
}
