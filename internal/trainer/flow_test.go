package trainer

import (
	"context"
	"testing"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ApplyAnswer makes fakeStore usable as the tracker's store too, so a
// whole training round trip can run against one in-memory state.
func (f *fakeStore) ApplyAnswer(_ context.Context, userID, phraseID int64, correct bool) (models.UserPhraseProgress, error) {
	recs := f.records[userID]
	for i := range recs {
		if recs[i].PhraseID == phraseID {
			recs[i] = recs[i].Apply(correct)
			return recs[i], nil
		}
	}
	progress := models.UserPhraseProgress{UserID: userID, PhraseID: phraseID}.Apply(correct)
	f.records[userID] = append(recs, progress)
	return progress, nil
}

// TestTrainingRoundTrip drives a user through a small catalog: answering
// one phrase correctly three times masters it and selection moves on to
// the remaining material.
func TestTrainingRoundTrip(t *testing.T) {
	hello := phraseFixture(1, "Hello", "Привет")
	bye := phraseFixture(2, "Bye", "Пока")
	store := &fakeStore{
		phrases: []models.Phrase{hello, bye},
		records: map[int64][]models.UserPhraseProgress{
			7: {
				{UserID: 7, PhraseID: hello.ID, CorrectStreak: 0},
			},
		},
	}
	selector := NewSelector(store, store)
	builder := NewDistractorBuilder(store)
	tracker := NewTracker(store)
	ctx := context.Background()
	const userID = 7

	// While Hello is unlearned it keeps being selected over unseen Bye
	for round := 0; round < models.MasteryThreshold; round++ {
		phrase, err := selector.Next(ctx, userID, 0)
		require.NoError(t, err)
		require.NotNil(t, phrase)
		assert.Equal(t, hello.ID, phrase.ID)

		options, err := builder.Build(ctx, phrase)
		require.NoError(t, err)
		require.Len(t, options, 4)

		session := &Session{PhraseID: phrase.ID, English: phrase.English, Russian: phrase.Russian, Options: options}
		require.True(t, session.CheckAnswer(hello.English))

		progress, err := tracker.RecordAnswer(ctx, userID, phrase.ID, true)
		require.NoError(t, err)
		assert.Equal(t, round+1, progress.CorrectStreak)
	}

	// Hello is mastered, next selection falls through to unseen Bye
	phrase, err := selector.Next(ctx, userID, hello.ID)
	require.NoError(t, err)
	require.NotNil(t, phrase)
	assert.Equal(t, bye.ID, phrase.ID)

	// A wrong answer on Bye keeps it in rotation
	progress, err := tracker.RecordAnswer(ctx, userID, bye.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CorrectStreak)
	assert.False(t, progress.IsLearned)

	phrase, err = selector.Next(ctx, userID, 0)
	require.NoError(t, err)
	require.NotNil(t, phrase)
	assert.Equal(t, bye.ID, phrase.ID)
}
