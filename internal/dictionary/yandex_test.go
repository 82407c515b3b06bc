package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentWord(t *testing.T) {
	cases := []struct {
		phrase string
		want   string
	}{
		{"How are you doing?", "How"},
		{"a big house", "big"},
		{"go on, mate!", "mate"},
		// No word longer than two characters: fall back to the first
		{"in on at", "in"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ContentWord(tc.phrase), "phrase %q", tc.phrase)
	}
}

const lookupFixture = `{
	"def": [
		{
			"pos": "noun",
			"ts": "taɪm",
			"tr": [
				{
					"text": "время",
					"ex": [
						{"text": "time flies", "tr": [{"text": "время летит"}]},
						{"text": "take your time", "tr": [{"text": "не торопись"}]},
						{"text": "a third example", "tr": [{"text": "третий пример"}]}
					],
					"syn": [
						{"text": "пора"},
						{"text": "срок"},
						{"text": "эпоха"}
					]
				}
			]
		},
		{
			"pos": "verb",
			"ts": "taɪm",
			"tr": [
				{"text": "рассчитывать"}
			]
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New("test-key")
	client.apiURL = server.URL
	return client
}

func TestLookupParsesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "time", r.URL.Query().Get("text"))
		assert.Equal(t, "en-ru", r.URL.Query().Get("lang"))
		w.Write([]byte(lookupFixture))
	})

	info, err := client.Lookup(context.Background(), "Time")
	require.NoError(t, err)

	assert.Equal(t, "time", info.Word)
	assert.Equal(t, "taɪm", info.Transcription)
	assert.Equal(t, []string{"noun", "verb"}, info.PartsOfSpeech)

	// At most two examples per translation make it through
	require.Len(t, info.Examples, 2)
	assert.Equal(t, "time flies", info.Examples[0].English)
	assert.Equal(t, "время летит", info.Examples[0].Russian)

	// Translations first, then at most two synonyms
	require.True(t, len(info.Definitions) <= 5)
	assert.Contains(t, info.Definitions, "время")
	assert.Contains(t, info.Definitions, "(син.) пора")
	assert.NotContains(t, info.Definitions, "(син.) эпоха")
}

func TestLookupUnknownWord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"def": []}`))
	})

	_, err := client.Lookup(context.Background(), "qwertyuiop")
	assert.Error(t, err)
}

func TestLookupServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Lookup(context.Background(), "time")
	assert.Error(t, err)
}

func TestLookupWithoutAPIKey(t *testing.T) {
	client := New("")
	_, err := client.Lookup(context.Background(), "time")
	assert.Error(t, err)
}

func TestPhraseExamplesDegradesToNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	text := client.PhraseExamples(context.Background(), "take your time")
	assert.Contains(t, text, "не найдена")
	assert.Contains(t, text, "take")
}

func TestPhraseExamplesFormatsLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(lookupFixture))
	})

	text := client.PhraseExamples(context.Background(), "take your time")
	assert.Contains(t, text, "Примеры использования")
	assert.Contains(t, text, "time flies")
	assert.Contains(t, text, "Транскрипция")
}

func TestFormatWordInfoEmpty(t *testing.T) {
	text := FormatWordInfo(&WordInfo{Word: "time"})
	assert.Contains(t, text, "не найдено")
}
