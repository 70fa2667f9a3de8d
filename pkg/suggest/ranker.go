// Package suggest merges the four suggestion sources into one ranked,
// de-duplicated list. Bigram matches outrank plain frequency matches
// because they carry context, and learned data outranks bundled data at
// equal tier, so personalisation wins over generic corpus frequency.
package suggest

import (
	"strings"

	"github.com/bastiangx/chordserve/internal/utils"
)

// WordSource answers prefix queries with frequency-ordered words.
type WordSource interface {
	Suggest(prefix string, max int) []string
}

// BigramSource answers (context, prefix) queries with frequency-ordered
// follower words.
type BigramSource interface {
	Followers(contextWord, prefix string, max int) []string
}

// DefaultMax is the suggestion strip width.
const DefaultMax = 3

// Ranker queries the four sources in priority order and merges the
// results. Any source may be nil and is then skipped.
type Ranker struct {
	userBigrams    BigramSource
	bundledBigrams BigramSource
	userWords      WordSource
	bundledWords   WordSource
	max            int
}

// NewRanker wires the four sources, highest priority first.
func NewRanker(userBigrams, bundledBigrams BigramSource, userWords, bundledWords WordSource, max int) *Ranker {
	if max <= 0 {
		max = DefaultMax
	}
	return &Ranker{
		userBigrams:    userBigrams,
		bundledBigrams: bundledBigrams,
		userWords:      userWords,
		bundledWords:   bundledWords,
		max:            max,
	}
}

// Rank returns up to max suggestions for the prefix. previousWord enables
// the bigram tiers and may be empty. When sentenceStart is set, a
// suggestion starting with a lowercase letter has its first character
// capitalised. The result is never nil.
func (r *Ranker) Rank(prefix, previousWord string, sentenceStart bool) []string {
	if prefix == "" {
		return []string{}
	}
	lower := strings.ToLower(prefix)

	var tiers [][]string
	if previousWord != "" {
		if r.userBigrams != nil {
			tiers = append(tiers, r.userBigrams.Followers(previousWord, lower, r.max))
		}
		if r.bundledBigrams != nil {
			tiers = append(tiers, r.bundledBigrams.Followers(previousWord, lower, r.max))
		}
	}
	if r.userWords != nil {
		tiers = append(tiers, r.userWords.Suggest(lower, r.max))
	}
	if r.bundledWords != nil {
		tiers = append(tiers, r.bundledWords.Suggest(lower, r.max))
	}

	// De-duplicate case-insensitively; the first source to produce a word
	// decides its casing.
	seen := make(map[string]bool)
	result := make([]string, 0, r.max)
	for _, tier := range tiers {
		for _, word := range tier {
			key := strings.ToLower(word)
			if seen[key] {
				continue
			}
			seen[key] = true
			if sentenceStart {
				word = utils.CapitalizeFirst(word)
			}
			result = append(result, word)
			if len(result) >= r.max {
				return result
			}
		}
	}
	return result
}

// Max returns the configured suggestion bound.
func (r *Ranker) Max() int { return r.max }
