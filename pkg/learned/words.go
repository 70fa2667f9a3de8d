package learned

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/chordserve/internal/utils"
	"github.com/charmbracelet/log"
)

// DefaultSaveDelay is how long a mutated store waits before persisting.
const DefaultSaveDelay = 30 * time.Second

// DefaultMinWordLength is the shortest word worth learning.
const DefaultMinWordLength = 2

type wordEntry struct {
	count int
	seq   int // insertion order, breaks count ties
}

// WordStore tracks words the user types, persisted per language to
// user_dict_{lang}.txt as word<TAB>count lines. Stored keys are in
// canonical case: an uppercase-initial form wins once observed.
type WordStore struct {
	mu      sync.Mutex
	entries map[string]wordEntry
	nextSeq int
	minLen  int
	path    string
	saver   *saver
}

// NewWordStore returns an empty store. Call Load before recording so the
// store knows where to persist.
func NewWordStore(minWordLen int, saveDelay time.Duration) *WordStore {
	if minWordLen <= 0 {
		minWordLen = DefaultMinWordLength
	}
	if saveDelay <= 0 {
		saveDelay = DefaultSaveDelay
	}
	s := &WordStore{
		entries: make(map[string]wordEntry),
		minLen:  minWordLen,
	}
	s.saver = newSaver(&s.mu, saveDelay, s.writeLocked)
	return s
}

// Load flushes any pending writes for the previous language, clears the
// table, and reads the persisted entries for lang from dataDir. A missing
// file means "start empty"; malformed lines are skipped individually.
func (s *WordStore) Load(dataDir, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saver.flushLocked()
	s.entries = make(map[string]wordEntry)
	s.nextSeq = 0
	s.path = filepath.Join(dataDir, "user_dict_"+lang+".txt")

	file, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to load user dictionary for %q: %v", lang, err)
		}
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, '\t')
		if sep <= 0 {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(line[sep+1:]))
		if err != nil {
			continue
		}
		s.entries[line[:sep]] = wordEntry{count: count, seq: s.nextSeq}
		s.nextSeq++
	}
	log.Infof("Loaded %d user words for %q", len(s.entries), lang)
}

// Record increments the word's count and arms a debounced save. Words
// shorter than the minimum length are ignored. sentenceStart marks a word
// whose initial capital is positional, not intrinsic: it is lowercased
// before recording so sentence starts don't masquerade as proper nouns.
func (s *WordStore) Record(word string, sentenceStart bool) {
	if utf8.RuneCountInString(word) < s.minLen {
		return
	}
	if sentenceStart {
		word = strings.ToLower(word)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.findKeyLocked(word)
	switch {
	case key == "":
		s.entries[word] = wordEntry{count: 1, seq: s.nextSeq}
		s.nextSeq++
	case key != word && utils.HasUpperInitial(word) && utils.HasLowerInitial(key):
		// Promote to proper-noun form, keeping count and age.
		e := s.entries[key]
		delete(s.entries, key)
		e.count++
		s.entries[word] = e
	default:
		e := s.entries[key]
		e.count++
		s.entries[key] = e
	}
	s.saver.markDirty()
}

// Suggest returns up to max stored words whose lowercase form starts with
// prefix (but does not equal it), ordered by descending count with ties
// broken by insertion order. Never nil.
func (s *WordStore) Suggest(prefix string, max int) []string {
	if prefix == "" || max <= 0 {
		return []string{}
	}
	lower := strings.ToLower(prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	type match struct {
		word string
		wordEntry
	}
	var matches []match
	for word, e := range s.entries {
		if utils.HasPrefixIgnoreCase(word, lower) && !strings.EqualFold(word, lower) {
			matches = append(matches, match{word, e})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].seq < matches[j].seq
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

// Flush cancels any pending save timer and writes unsaved changes now.
func (s *WordStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver.flushLocked()
}

// Close flushes pending changes. The store remains usable afterwards.
func (s *WordStore) Close() {
	s.Flush()
}

// findKeyLocked returns the stored key matching word case-insensitively,
// or "".
func (s *WordStore) findKeyLocked(word string) string {
	if _, ok := s.entries[word]; ok {
		return word
	}
	lower := strings.ToLower(word)
	for key := range s.entries {
		if strings.ToLower(key) == lower {
			return key
		}
	}
	return ""
}

func (s *WordStore) writeLocked() error {
	if s.path == "" {
		return nil
	}
	file, err := os.Create(s.path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	for word, e := range s.entries {
		w.WriteString(word)
		w.WriteByte('\t')
		w.WriteString(strconv.Itoa(e.count))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Debugf("Saved %d user words", len(s.entries))
	return nil
}
