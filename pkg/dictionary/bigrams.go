package dictionary

import (
	"bufio"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// BigramSource is the bundled bigram dictionary for the active language:
// context word -> followers in corpus frequency order. Many languages ship
// without bigram data; a missing file just leaves the source empty.
type BigramSource struct {
	table  atomic.Pointer[map[string][]string]
	gen    atomic.Uint64
	loaded atomic.Bool
}

// NewBigramSource returns an empty, unloaded source.
func NewBigramSource() *BigramSource {
	return &BigramSource{}
}

// Load starts loading bigrams/{lang}.gz under dataDir on a background
// goroutine. The file is gzip-compressed text, one line per context word:
// contextWord<TAB>follower1,follower2,... with followers pre-ranked.
func (s *BigramSource) Load(dataDir, lang string) {
	s.loaded.Store(false)
	gen := s.gen.Add(1)
	path := filepath.Join(dataDir, "bigrams", lang+".gz")

	go func() {
		table := buildBigramTable(path, lang)
		if s.gen.Load() != gen {
			log.Debugf("Discarding stale bigram load for %q", lang)
			return
		}
		s.table.Store(&table)
		s.loaded.Store(true)
	}()
}

func buildBigramTable(path, lang string) map[string][]string {
	table := make(map[string][]string)
	file, err := os.Open(path)
	if err != nil {
		log.Infof("No bundled bigrams for %q (this is normal)", lang)
		return table
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		log.Warnf("Failed to read bundled bigrams for %q: %v", lang, err)
		return table
	}
	defer gz.Close()

	total := 0
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, '\t')
		if sep <= 0 || sep >= len(line)-1 {
			continue
		}
		context := line[:sep]
		followers := strings.Split(line[sep+1:], ",")
		table[context] = followers
		total += len(followers)
	}
	if err := scanner.Err(); err != nil {
		log.Warnf("Error reading bundled bigrams for %q: %v", lang, err)
	}
	log.Infof("Loaded %d bundled bigrams for %q", total, lang)
	return table
}

// IsLoaded reports whether the current load has completed.
func (s *BigramSource) IsLoaded() bool {
	return s.loaded.Load()
}

// Followers returns words that follow contextWord and start with prefix
// (but do not equal it), in corpus frequency order, capped at max. The
// context is looked up case-insensitively. Never nil.
func (s *BigramSource) Followers(contextWord, prefix string, max int) []string {
	tablePtr := s.table.Load()
	if tablePtr == nil || contextWord == "" || prefix == "" || max <= 0 {
		return []string{}
	}
	followers, ok := (*tablePtr)[strings.ToLower(contextWord)]
	if !ok {
		return []string{}
	}

	lower := strings.ToLower(prefix)
	result := make([]string, 0, max)
	for _, word := range followers {
		if strings.HasPrefix(word, lower) && word != lower {
			result = append(result, word)
			if len(result) >= max {
				break
			}
		}
	}
	return result
}
