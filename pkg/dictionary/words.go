// Package dictionary provides the bundled, read-only suggestion sources:
// per-language word lists and bigram tables shipped with the keyboard.
// Both load on a background goroutine and swap their in-memory table in
// with a single atomic pointer update, so readers only ever observe the
// pre-load empty state or a fully built table.
package dictionary

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// wordTable is an immutable snapshot of one language's word list. Words
// are keyed in a patricia trie with their rank as value (1 = most
// frequent), preserving the file's pre-established frequency order.
type wordTable struct {
	trie *patricia.Trie
	size int
}

// WordSource is the bundled word dictionary for the active language.
// Queries before loading completes return empty results.
type WordSource struct {
	table  atomic.Pointer[wordTable]
	gen    atomic.Uint64
	loaded atomic.Bool
}

// NewWordSource returns an empty, unloaded source.
func NewWordSource() *WordSource {
	return &WordSource{}
}

// Load starts loading wordlists/{lang}.txt under dataDir on a background
// goroutine. Starting a newer load supersedes this one: a stale build is
// discarded before the swap.
func (s *WordSource) Load(dataDir, lang string) {
	s.loaded.Store(false)
	gen := s.gen.Add(1)
	path := filepath.Join(dataDir, "wordlists", lang+".txt")

	go func() {
		table := buildWordTable(path, lang)
		if s.gen.Load() != gen {
			log.Debugf("Discarding stale word list load for %q", lang)
			return
		}
		s.table.Store(table)
		s.loaded.Store(true)
		log.Infof("Loaded %d words for %q", table.size, lang)
	}()
}

// buildWordTable reads "word frequency" lines, pre-sorted most frequent
// first, keeping only the lowercased word. Rank is the line position.
func buildWordTable(path, lang string) *wordTable {
	table := &wordTable{trie: patricia.NewTrie()}
	file, err := os.Open(path)
	if err != nil {
		log.Warnf("Failed to load word list for %q: %v", lang, err)
		return table
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, ' ')
		if sep <= 0 {
			continue
		}
		word := strings.ToLower(line[:sep])
		// Insert refuses duplicates, keeping the first (best) rank.
		if table.trie.Insert(patricia.Prefix(word), table.size+1) {
			table.size++
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warnf("Error reading word list for %q: %v", lang, err)
	}
	return table
}

// IsLoaded reports whether the current load has completed.
func (s *WordSource) IsLoaded() bool {
	return s.loaded.Load()
}

// Size returns the number of distinct words in the current table.
func (s *WordSource) Size() int {
	table := s.table.Load()
	if table == nil {
		return 0
	}
	return table.size
}

// Suggest returns up to max words starting with prefix (but not equal to
// it), most frequent first. Never nil; empty before loading completes,
// for an empty prefix, or for max <= 0.
func (s *WordSource) Suggest(prefix string, max int) []string {
	table := s.table.Load()
	if table == nil || prefix == "" || max <= 0 {
		return []string{}
	}
	lower := strings.ToLower(prefix)

	type ranked struct {
		word string
		rank int
	}
	var matches []ranked
	table.trie.VisitSubtree(patricia.Prefix(lower), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == lower {
			return nil
		}
		matches = append(matches, ranked{word, item.(int)})
		return nil
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})
	if len(matches) > max {
		matches = matches[:max]
	}
	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = m.word
	}
	return result
}
