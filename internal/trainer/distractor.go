package trainer

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

// Option is a single answer button: a phrase ID and its display text.
// Synthesized placeholders carry negative IDs.
type Option struct {
	ID   int64
	Text string
}

const (
	// distractorCount is the number of wrong options per question
	distractorCount = 3
	// defaultPoolSize oversamples the candidate pool so dedup can drop
	// surface-text collisions without starving the option set
	defaultPoolSize = distractorCount * 2
)

// DistractorBuilder assembles the four answer options for a posed phrase:
// the correct one plus three unique wrong ones.
type DistractorBuilder struct {
	phrases  phraseSource
	poolSize int
	rnd      *rand.Rand
}

// NewDistractorBuilder creates a builder over the given catalog source
func NewDistractorBuilder(phrases phraseSource) *DistractorBuilder {
	return &DistractorBuilder{
		phrases:  phrases,
		poolSize: defaultPoolSize,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build returns exactly four options in random order, exactly one of
// which carries the correct phrase's ID. The wrong options have pairwise
// distinct normalized texts, none colliding with the correct text. When
// the catalog is too small, placeholder options fill the gap so the
// keyboard shape stays stable.
func (b *DistractorBuilder) Build(ctx context.Context, correct *models.Phrase) ([]Option, error) {
	candidates, err := b.phrases.RandomExcluding(ctx, correct.ID, b.poolSize)
	if err != nil {
		return nil, err
	}

	// The store's random order is only a sampling convenience; uniqueness
	// is enforced here.
	seen := map[string]struct{}{normalizeText(correct.English): {}}
	wrong := make([]Option, 0, distractorCount)
	for _, candidate := range candidates {
		key := normalizeText(candidate.English)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		wrong = append(wrong, Option{ID: candidate.ID, Text: candidate.English})
		if len(wrong) == distractorCount {
			break
		}
	}

	if len(wrong) < distractorCount {
		log.Printf("distractor shortfall for phrase %d: only %d real candidates, padding with placeholders",
			correct.ID, len(wrong))
	}
	for len(wrong) < distractorCount {
		wrong = append(wrong, Option{
			ID:   -int64(len(wrong) + 1),
			Text: fmt.Sprintf("Вариант %d", len(wrong)+1),
		})
	}

	options := append(wrong, Option{ID: correct.ID, Text: correct.English})
	b.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, nil
}

// normalizeText is the dedup key: case-folded and trimmed
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
