package learned

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBigramStore(t *testing.T) (*BigramStore, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewBigramStore(time.Hour)
	s.Load(dir, "en")
	return s, dir
}

func TestRecordAndFollowers(t *testing.T) {
	s, _ := newTestBigramStore(t)
	s.Record("the", "quick")
	s.Record("the", "quick")
	s.Record("the", "quiet")

	got := s.Followers("the", "qu", 5)
	require.Equal(t, []string{"quick", "quiet"}, got)
}

func TestFollowersContextCaseInsensitive(t *testing.T) {
	s, _ := newTestBigramStore(t)
	s.Record("new", "york")

	assert.Equal(t, []string{"york"}, s.Followers("New", "yo", 5))
	assert.Equal(t, []string{"york"}, s.Followers("NEW", "yo", 5))
}

func TestFollowersExcludesExactPrefix(t *testing.T) {
	s, _ := newTestBigramStore(t)
	s.Record("in", "fact")
	s.Record("in", "facts")

	got := s.Followers("in", "fact", 5)
	assert.Equal(t, []string{"facts"}, got)
}

func TestRecordGuards(t *testing.T) {
	s, _ := newTestBigramStore(t)
	s.Record("", "word")
	s.Record("context", "a") // follower below minimum length
	s.Record("context", "")

	assert.Empty(t, s.Followers("context", "a", 5))
	assert.Empty(t, s.Followers("", "w", 5))
}

func TestFollowerMinLengthCountsRunes(t *testing.T) {
	s, dir := newTestBigramStore(t)
	s.Record("dónde", "é")  // one rune, two bytes: below minimum
	s.Record("dónde", "él") // two runes: long enough
	s.Flush()

	data, err := os.ReadFile(filepath.Join(dir, "user_bigrams_en.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "dónde\tél\t1", lines[0])
	assert.Equal(t, []string{"él"}, s.Followers("dónde", "é", 5))
}

func TestContextKeyPromotion(t *testing.T) {
	s, _ := newTestBigramStore(t)
	s.Record("paris", "metro")
	s.Record("Paris", "metro")

	// Context key renamed to proper-noun form; counts preserved.
	got := s.Followers("paris", "me", 5)
	require.Equal(t, []string{"metro"}, got)

	// Re-recording with lowercase must not demote the stored key.
	s.Record("paris", "metro")
	assert.Equal(t, []string{"metro"}, s.Followers("PARIS", "me", 5))
}

func TestFollowerKeyPromotion(t *testing.T) {
	s, _ := newTestBigramStore(t)
	s.Record("visit", "london")
	s.Record("visit", "London")

	got := s.Followers("visit", "lo", 5)
	require.Equal(t, []string{"London"}, got, "stored case upgrades to capitalised form")

	s.Record("visit", "london")
	got = s.Followers("visit", "lo", 5)
	require.Equal(t, []string{"London"}, got)
}

func TestBigramPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewBigramStore(time.Hour)
	s.Load(dir, "en")
	s.Record("the", "quick")
	s.Record("the", "quick")
	s.Record("new", "york")
	s.Close()

	fresh := NewBigramStore(time.Hour)
	fresh.Load(dir, "en")
	assert.Equal(t, []string{"quick"}, fresh.Followers("the", "qu", 5))
	assert.Equal(t, []string{"york"}, fresh.Followers("new", "yo", 5))
}

func TestBigramLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user_bigrams_en.txt")
	content := "the\tquick\t2\nbroken\nonly\tone\nbad\tcount\tx\nnew\tyork\t1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s := NewBigramStore(time.Hour)
	s.Load(dir, "en")
	assert.Equal(t, []string{"quick"}, s.Followers("the", "q", 5))
	assert.Equal(t, []string{"york"}, s.Followers("new", "y", 5))
	assert.Empty(t, s.Followers("only", "o", 5))
}

func TestBigramDebouncedSave(t *testing.T) {
	dir := t.TempDir()
	s := NewBigramStore(20 * time.Millisecond)
	s.Load(dir, "en")
	s.Record("the", "quick")

	path := filepath.Join(dir, "user_bigrams_en.txt")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0
	}, 2*time.Second, 5*time.Millisecond)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "the\tquick\t1")
}
