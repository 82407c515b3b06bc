// Package trainer implements the phrase selection, answer option and
// mastery tracking engine behind the flashcard flow.
package trainer

import (
	"context"
	"math/rand"
	"time"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

// phraseSource is the slice of the catalog the engine reads from.
// Satisfied by database.PhraseRepository.
type phraseSource interface {
	GetByID(ctx context.Context, id int64) (*models.Phrase, error)
	RandomExcluding(ctx context.Context, phraseID int64, limit int) ([]models.Phrase, error)
	WithoutProgress(ctx context.Context, userID int64, limit int) ([]models.Phrase, error)
	RandomAny(ctx context.Context, limit int) ([]models.Phrase, error)
}

// progressSource exposes the user's progress records to the selector.
// Satisfied by database.ProgressRepository.
type progressSource interface {
	ProgressRecords(ctx context.Context, userID int64, onlyUnlearned bool) ([]models.UserPhraseProgress, error)
}

// maxRepeatRetries bounds the repeat-avoidance loop. A catalog of one
// phrase makes avoidance impossible, so after this many attempts the
// repeat is accepted.
const maxRepeatRetries = 5

// Selector picks the next phrase to pose to a user: weakly-known phrases
// first, then unseen catalog material, then random review.
type Selector struct {
	phrases  phraseSource
	progress progressSource
	rnd      *rand.Rand
}

// NewSelector creates a selector over the given stores
func NewSelector(phrases phraseSource, progress progressSource) *Selector {
	return &Selector{
		phrases:  phrases,
		progress: progress,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the phrase to pose, avoiding lastShownID when any
// alternative exists. Returns (nil, nil) only on an empty catalog; the
// caller should then offer the add-a-phrase affordance.
func (s *Selector) Next(ctx context.Context, userID, lastShownID int64) (*models.Phrase, error) {
	var fallback *models.Phrase
	for attempt := 0; attempt < maxRepeatRetries; attempt++ {
		candidate, err := s.pick(ctx, userID)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}
		if candidate.ID != lastShownID {
			return candidate, nil
		}
		fallback = candidate
	}
	return fallback, nil
}

// pick implements the priority tiers without repeat avoidance
func (s *Selector) pick(ctx context.Context, userID int64) (*models.Phrase, error) {
	// Tier 1: phrases the user is actively learning, weakest streak first
	records, err := s.progress.ProgressRecords(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return s.phrases.GetByID(ctx, s.weakestPhraseID(records))
	}

	// Tier 2: catalog phrases the user has never seen
	fresh, err := s.phrases.WithoutProgress(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(fresh) > 0 {
		return &fresh[0], nil
	}

	// Tier 3: everything is learned, review the whole catalog
	any, err := s.phrases.RandomAny(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(any) == 0 {
		return nil, nil
	}
	return &any[0], nil
}

// weakestPhraseID returns the phrase with the lowest streak, breaking
// ties uniformly at random.
func (s *Selector) weakestPhraseID(records []models.UserPhraseProgress) int64 {
	minStreak := records[0].CorrectStreak
	for _, rec := range records[1:] {
		if rec.CorrectStreak < minStreak {
			minStreak = rec.CorrectStreak
		}
	}

	var weakest []int64
	for _, rec := range records {
		if rec.CorrectStreak == minStreak {
			weakest = append(weakest, rec.PhraseID)
		}
	}
	return weakest[s.rnd.Intn(len(weakest))]
}
