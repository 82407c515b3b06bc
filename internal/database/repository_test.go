package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects the package-level DB to a throwaway sqlite file.
// Tests in this package share the global connection and must not run in
// parallel.
func setupTestDB(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Connect("sqlite", dbPath))
	t.Cleanup(func() {
		require.NoError(t, Close())
		DB = nil
	})
}

func mustAddUser(t *testing.T, ctx context.Context, userID int64) {
	t.Helper()
	user := &models.User{ID: userID, Username: "tester", FirstName: "Test"}
	require.NoError(t, NewUserRepository().Upsert(ctx, user))
}

func mustAddPhrase(t *testing.T, ctx context.Context, english, russian string) int64 {
	t.Helper()
	id, _, err := NewPhraseRepository().Add(ctx, english, russian, "test", "A2")
	require.NoError(t, err)
	return id
}

func TestAddPhraseIsIdempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewPhraseRepository()

	id1, created1, err := repo.Add(ctx, "Hello", "Привет", "greetings", "A1")
	require.NoError(t, err)
	assert.True(t, created1)

	id2, created2, err := repo.Add(ctx, "Hello", "Привет", "greetings", "A1")
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, id1, id2)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyAnswerLifecycle(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	phraseID := mustAddPhrase(t, ctx, "Hello", "Привет")
	require.NoError(t, repo.Link(ctx, 7, phraseID))

	// Three correct answers in a row master the phrase
	var progress models.UserPhraseProgress
	var err error
	for i := 1; i <= models.MasteryThreshold; i++ {
		progress, err = repo.ApplyAnswer(ctx, 7, phraseID, true)
		require.NoError(t, err)
		assert.Equal(t, i, progress.CorrectStreak)
	}
	assert.True(t, progress.IsLearned)

	// One wrong answer drops the streak below the threshold
	progress, err = repo.ApplyAnswer(ctx, 7, phraseID, false)
	require.NoError(t, err)
	assert.Equal(t, models.MasteryThreshold-1, progress.CorrectStreak)
	assert.False(t, progress.IsLearned)

	// The streak bottoms out at zero
	for i := 0; i < models.MasteryThreshold+1; i++ {
		progress, err = repo.ApplyAnswer(ctx, 7, phraseID, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, progress.CorrectStreak)
}

func TestApplyAnswerCreatesMissingRecord(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	phraseID := mustAddPhrase(t, ctx, "Hello", "Привет")

	progress, err := repo.ApplyAnswer(ctx, 7, phraseID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CorrectStreak)

	count, err := repo.CountUserPhrases(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertRetryIsNoOp(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	phraseID := mustAddPhrase(t, ctx, "Hello", "Привет")

	require.NoError(t, repo.Upsert(ctx, 7, phraseID, 2, false))
	require.NoError(t, repo.Upsert(ctx, 7, phraseID, 2, false))

	got, err := repo.Get(ctx, 7, phraseID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.CorrectStreak)

	count, err := repo.CountUserPhrases(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLinkAndDeleteLink(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	phraseID := mustAddPhrase(t, ctx, "Hello", "Привет")

	require.NoError(t, repo.Link(ctx, 7, phraseID))
	require.NoError(t, repo.Link(ctx, 7, phraseID))

	phrases, err := repo.UserPhrases(ctx, 7, 20)
	require.NoError(t, err)
	require.Len(t, phrases, 1)
	assert.Equal(t, "Hello", phrases[0].English)
	assert.Equal(t, "Привет", phrases[0].Russian)

	require.NoError(t, repo.DeleteLink(ctx, 7, phraseID))

	count, err := repo.CountUserPhrases(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkShownTracksOnlyTheLatest(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	first := mustAddPhrase(t, ctx, "Hello", "Привет")
	second := mustAddPhrase(t, ctx, "Bye", "Пока")

	last, err := repo.LastShownPhrase(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	require.NoError(t, repo.MarkShown(ctx, 7, first))
	require.NoError(t, repo.MarkShown(ctx, 7, second))

	last, err = repo.LastShownPhrase(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, second, last)
}

func TestProgressRecordsFiltersLearned(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	learned := mustAddPhrase(t, ctx, "Hello", "Привет")
	inProgress := mustAddPhrase(t, ctx, "Bye", "Пока")
	require.NoError(t, repo.Upsert(ctx, 7, learned, 3, true))
	require.NoError(t, repo.Upsert(ctx, 7, inProgress, 1, false))

	all, err := repo.ProgressRecords(ctx, 7, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unlearned, err := repo.ProgressRecords(ctx, 7, true)
	require.NoError(t, err)
	require.Len(t, unlearned, 1)
	assert.Equal(t, inProgress, unlearned[0].PhraseID)
}

func TestWithoutProgressExcludesUserPhrases(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	phraseRepo := NewPhraseRepository()
	progressRepo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	linked := mustAddPhrase(t, ctx, "Hello", "Привет")
	fresh := mustAddPhrase(t, ctx, "Bye", "Пока")
	require.NoError(t, progressRepo.Link(ctx, 7, linked))

	phrases, err := phraseRepo.WithoutProgress(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, phrases, 1)
	assert.Equal(t, fresh, phrases[0].ID)
}

func TestRandomExcludingNeverReturnsTheExcluded(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewPhraseRepository()

	excluded := mustAddPhrase(t, ctx, "Hello", "Привет")
	mustAddPhrase(t, ctx, "Bye", "Пока")
	mustAddPhrase(t, ctx, "Thanks", "Спасибо")

	phrases, err := repo.RandomExcluding(ctx, excluded, 10)
	require.NoError(t, err)
	assert.Len(t, phrases, 2)
	for _, p := range phrases {
		assert.NotEqual(t, excluded, p.ID)
	}
}

func TestUserUpsertAndCounts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	userRepo := NewUserRepository()
	progressRepo := NewProgressRepository()

	mustAddUser(t, ctx, 7)
	mustAddUser(t, ctx, 7)
	mustAddUser(t, ctx, 8)

	count, err := userRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	active, err := userRepo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, active)

	phraseID := mustAddPhrase(t, ctx, "Hello", "Привет")
	_, err = progressRepo.ApplyAnswer(ctx, 7, phraseID, true)
	require.NoError(t, err)

	active, err = userRepo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	ids, err := userRepo.AllIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{7, 8}, ids)
}

func TestSeedInitialRunsOnce(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewPhraseRepository()

	seeded, err := repo.SeedInitial(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(initialPhrases), seeded)

	again, err := repo.SeedInitial(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
}
