package trainer

import (
	"context"
	"testing"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnswerStore applies the transition rule in memory, mirroring what
// the SQL transaction does in production.
type fakeAnswerStore struct {
	records map[int64]models.UserPhraseProgress // by phrase ID, one user
}

func (f *fakeAnswerStore) ApplyAnswer(_ context.Context, userID, phraseID int64, correct bool) (models.UserPhraseProgress, error) {
	progress, ok := f.records[phraseID]
	if !ok {
		progress = models.UserPhraseProgress{UserID: userID, PhraseID: phraseID}
	}
	progress = progress.Apply(correct)
	f.records[phraseID] = progress
	return progress, nil
}

// brokenStore returns an internally inconsistent record
type brokenStore struct{}

func (brokenStore) ApplyAnswer(_ context.Context, userID, phraseID int64, _ bool) (models.UserPhraseProgress, error) {
	return models.UserPhraseProgress{UserID: userID, PhraseID: phraseID, CorrectStreak: 1, IsLearned: true}, nil
}

func TestRecordAnswerCountsTowardMastery(t *testing.T) {
	store := &fakeAnswerStore{records: map[int64]models.UserPhraseProgress{}}
	tracker := NewTracker(store)
	ctx := context.Background()

	for i := 1; i < models.MasteryThreshold; i++ {
		progress, err := tracker.RecordAnswer(ctx, 7, 1, true)
		require.NoError(t, err)
		assert.Equal(t, i, progress.CorrectStreak)
		assert.False(t, progress.IsLearned)
	}

	progress, err := tracker.RecordAnswer(ctx, 7, 1, true)
	require.NoError(t, err)
	assert.Equal(t, models.MasteryThreshold, progress.CorrectStreak)
	assert.True(t, progress.IsLearned)
}

func TestRecordAnswerWrongDropsStreakAndMastery(t *testing.T) {
	store := &fakeAnswerStore{records: map[int64]models.UserPhraseProgress{
		1: {UserID: 7, PhraseID: 1, CorrectStreak: 3, IsLearned: true},
	}}
	tracker := NewTracker(store)

	progress, err := tracker.RecordAnswer(context.Background(), 7, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.CorrectStreak)
	assert.False(t, progress.IsLearned, "mastery tracks the live streak")
}

func TestRecordAnswerStreakNeverGoesNegative(t *testing.T) {
	store := &fakeAnswerStore{records: map[int64]models.UserPhraseProgress{}}
	tracker := NewTracker(store)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		progress, err := tracker.RecordAnswer(ctx, 7, 1, false)
		require.NoError(t, err)
		assert.Equal(t, 0, progress.CorrectStreak)
		assert.False(t, progress.IsLearned)
	}
}

func TestRecordAnswerRejectsInconsistentStore(t *testing.T) {
	tracker := NewTracker(brokenStore{})

	_, err := tracker.RecordAnswer(context.Background(), 7, 1, true)
	assert.Error(t, err)
}
