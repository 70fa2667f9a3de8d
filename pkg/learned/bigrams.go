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

// BigramStore tracks word-pair frequencies from the user's typing:
// context word -> (follower word -> count). Persisted per language to
// user_bigrams_{lang}.txt as contextWord<TAB>followerWord<TAB>count lines.
//
// Both context and follower keys are kept in canonical case. When a word
// arrives with an uppercase initial while the stored key has a lowercase
// one, the stored key is renamed to the capitalised form. The reverse
// never happens. Lookups are case-insensitive throughout; the stored keys
// here are scanned linearly, which is fine at personal-dictionary sizes.
type BigramStore struct {
	mu      sync.Mutex
	entries map[string]map[string]int
	path    string
	saver   *saver
}

// NewBigramStore returns an empty store. Call Load before recording.
func NewBigramStore(saveDelay time.Duration) *BigramStore {
	if saveDelay <= 0 {
		saveDelay = DefaultSaveDelay
	}
	s := &BigramStore{
		entries: make(map[string]map[string]int),
	}
	s.saver = newSaver(&s.mu, saveDelay, s.writeLocked)
	return s
}

// Load flushes pending writes for the previous language, clears the
// table, and reads the persisted bigrams for lang from dataDir. Missing
// file means "start empty"; malformed lines are skipped.
func (s *BigramStore) Load(dataDir, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saver.flushLocked()
	s.entries = make(map[string]map[string]int)
	s.path = filepath.Join(dataDir, "user_bigrams_"+lang+".txt")

	file, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to load user bigrams for %q: %v", lang, err)
		}
		return
	}
	defer file.Close()

	total := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		sep1 := strings.IndexByte(line, '\t')
		if sep1 <= 0 {
			continue
		}
		sep2 := strings.IndexByte(line[sep1+1:], '\t')
		if sep2 < 1 {
			continue
		}
		sep2 += sep1 + 1
		count, err := strconv.Atoi(strings.TrimSpace(line[sep2+1:]))
		if err != nil {
			continue
		}
		context := line[:sep1]
		follower := line[sep1+1 : sep2]
		followers := s.entries[context]
		if followers == nil {
			followers = make(map[string]int)
			s.entries[context] = followers
		}
		followers[follower] = count
		total++
	}
	log.Infof("Loaded %d user bigrams for %q", total, lang)
}

// Record notes that followerWord was typed after contextWord, upgrading
// stored casing to proper-noun form where the caller's casing warrants it.
func (s *BigramStore) Record(contextWord, followerWord string) {
	if contextWord == "" || utf8.RuneCountInString(followerWord) < DefaultMinWordLength {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contextKey := findKey(s.entries, contextWord)
	if contextKey == "" {
		contextKey = contextWord
		s.entries[contextKey] = make(map[string]int)
	} else if contextKey != contextWord &&
		utils.HasUpperInitial(contextWord) && utils.HasLowerInitial(contextKey) {
		followers := s.entries[contextKey]
		delete(s.entries, contextKey)
		s.entries[contextWord] = followers
		contextKey = contextWord
	}

	followers := s.entries[contextKey]
	followerKey := findKey(followers, followerWord)
	switch {
	case followerKey == "":
		followers[followerWord] = 1
	case followerKey != followerWord &&
		utils.HasUpperInitial(followerWord) && utils.HasLowerInitial(followerKey):
		count := followers[followerKey]
		delete(followers, followerKey)
		followers[followerWord] = count + 1
	default:
		followers[followerKey]++
	}
	s.saver.markDirty()
}

// Followers returns stored-case follower words of contextWord whose
// lowercase form starts with prefix (but does not equal it), ordered by
// descending count. Context lookup is case-insensitive. Never nil.
func (s *BigramStore) Followers(contextWord, prefix string, max int) []string {
	if contextWord == "" || prefix == "" || max <= 0 {
		return []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contextKey := findKey(s.entries, contextWord)
	if contextKey == "" {
		return []string{}
	}
	followers := s.entries[contextKey]
	if len(followers) == 0 {
		return []string{}
	}

	lower := strings.ToLower(prefix)
	type match struct {
		word  string
		count int
	}
	var matches []match
	for word, count := range followers {
		if utils.HasPrefixIgnoreCase(word, lower) && !strings.EqualFold(word, lower) {
			matches = append(matches, match{word, count})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].word < matches[j].word
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
func (s *BigramStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver.flushLocked()
}

// Close flushes pending changes.
func (s *BigramStore) Close() {
	s.Flush()
}

// findKey returns the key of m matching word case-insensitively, or "".
func findKey[V any](m map[string]V, word string) string {
	if _, ok := m[word]; ok {
		return word
	}
	lower := strings.ToLower(word)
	for key := range m {
		if strings.ToLower(key) == lower {
			return key
		}
	}
	return ""
}

func (s *BigramStore) writeLocked() error {
	if s.path == "" {
		return nil
	}
	file, err := os.Create(s.path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	total := 0
	for context, followers := range s.entries {
		for follower, count := range followers {
			w.WriteString(context)
			w.WriteByte('\t')
			w.WriteString(follower)
			w.WriteByte('\t')
			w.WriteString(strconv.Itoa(count))
			w.WriteByte('\n')
			total++
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Debugf("Saved %d user bigrams", total)
	return nil
}
