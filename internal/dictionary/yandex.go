// Package dictionary looks up word definitions and usage examples in the
// Yandex Dictionary API. The API is treated as unreliable: every failure
// degrades to a user-visible "not found" message instead of an error.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIURL = "https://dictionary.yandex.net/api/v1/dicservice.json/lookup"

// Client is a Yandex Dictionary API client
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// New creates a client. With an empty API key every lookup reports
// "not found" without touching the network.
func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Response types mirror the API's JSON shape

type lookupResponse struct {
	Def []definition `json:"def"`
}

type definition struct {
	Pos string        `json:"pos"`
	Ts  string        `json:"ts"`
	Tr  []translation `json:"tr"`
}

type translation struct {
	Text string    `json:"text"`
	Ex   []example `json:"ex"`
	Syn  []synonym `json:"syn"`
}

type example struct {
	Text string `json:"text"`
	Tr   []struct {
		Text string `json:"text"`
	} `json:"tr"`
}

type synonym struct {
	Text string `json:"text"`
}

// ExamplePair is one usage example with its translation
type ExamplePair struct {
	English string
	Russian string
}

// WordInfo is the distilled lookup result
type WordInfo struct {
	Word          string
	Definitions   []string
	Examples      []ExamplePair
	Transcription string
	PartsOfSpeech []string
}

// Lookup fetches and parses the dictionary entry for a single word
func (c *Client) Lookup(ctx context.Context, word string) (*WordInfo, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("dictionary API key is not configured")
	}

	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, fmt.Errorf("empty word")
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("lang", "en-ru")
	params.Set("text", word)
	params.Set("ui", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary API returned status %d", resp.StatusCode)
	}

	var data lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if len(data.Def) == 0 {
		return nil, fmt.Errorf("word %q not found in dictionary", word)
	}

	return parseLookup(&data, word), nil
}

// parseLookup flattens the API's nested shape into WordInfo, keeping at
// most 5 definitions, 4 examples and one transcription.
func parseLookup(data *lookupResponse, word string) *WordInfo {
	info := &WordInfo{Word: word}
	seenPos := make(map[string]struct{})

	for _, def := range data.Def {
		if def.Pos != "" {
			if _, ok := seenPos[def.Pos]; !ok {
				seenPos[def.Pos] = struct{}{}
				info.PartsOfSpeech = append(info.PartsOfSpeech, def.Pos)
			}
		}
		if info.Transcription == "" && def.Ts != "" {
			info.Transcription = def.Ts
		}

		for _, tr := range def.Tr {
			text := strings.TrimSpace(tr.Text)
			if text != "" && !containsString(info.Definitions, text) {
				info.Definitions = append(info.Definitions, text)
			}

			for i, ex := range tr.Ex {
				if i >= 2 {
					break
				}
				english := strings.TrimSpace(ex.Text)
				russian := ""
				if len(ex.Tr) > 0 {
					russian = strings.TrimSpace(ex.Tr[0].Text)
				}
				if english != "" && russian != "" {
					info.Examples = append(info.Examples, ExamplePair{English: english, Russian: russian})
				}
			}

			for i, syn := range tr.Syn {
				if i >= 2 {
					break
				}
				text := strings.TrimSpace(syn.Text)
				if text != "" && !containsString(info.Definitions, "(син.) "+text) {
					info.Definitions = append(info.Definitions, "(син.) "+text)
				}
			}
		}
	}

	if len(info.Definitions) > 5 {
		info.Definitions = info.Definitions[:5]
	}
	if len(info.Examples) > 4 {
		info.Examples = info.Examples[:4]
	}
	return info
}

// ContentWord extracts the first content word of a phrase: the first
// word longer than two characters after stripping punctuation, skipping
// articles and short prepositions. Falls back to the first word.
func ContentWord(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return ""
	}

	search := words[0]
	for _, word := range words {
		clean := strings.Trim(word, ",.!?;:\"'")
		if len(clean) > 2 {
			search = clean
			break
		}
	}
	return search
}

// PhraseExamples returns user-ready example text for the posed phrase.
// Lookup failures never abort the posing flow: the result is always a
// displayable string.
func (c *Client) PhraseExamples(ctx context.Context, phrase string) string {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return "❌ Пустая фраза"
	}

	word := ContentWord(phrase)
	if word == "" {
		return "❌ Не удалось извлечь слова из фразы"
	}

	info, err := c.Lookup(ctx, word)
	if err != nil {
		log.Printf("dictionary lookup failed for %q: %v", word, err)
		return fmt.Sprintf("❌ Информация для слова '%s' не найдена", word)
	}

	return FormatWordInfo(info)
}

// FormatWordInfo renders a lookup result as Markdown for Telegram
func FormatWordInfo(info *WordInfo) string {
	var parts []string

	if len(info.Definitions) > 0 {
		parts = append(parts, "📖 *Определения:*")
		limit := len(info.Definitions)
		if limit > 3 {
			limit = 3
		}
		for i := 0; i < limit; i++ {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, info.Definitions[i]))
		}
	}

	if len(info.Examples) > 0 {
		parts = append(parts, "\n💡 *Примеры использования:*")
		for i, ex := range info.Examples {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, ex.English))
			parts = append(parts, fmt.Sprintf("   → %s", ex.Russian))
		}
	}

	if info.Transcription != "" {
		parts = append(parts, fmt.Sprintf("\n🔊 *Транскрипция:* `%s`", info.Transcription))
	}

	if len(info.PartsOfSpeech) > 0 {
		parts = append(parts, fmt.Sprintf("\n🏷️ *Часть речи:* %s", strings.Join(info.PartsOfSpeech, ", ")))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("❌ Для слова '%s' не найдено полезной информации", info.Word)
	}
	return strings.Join(parts, "\n")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
