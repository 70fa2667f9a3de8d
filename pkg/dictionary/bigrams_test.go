package dictionary

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBigrams(t *testing.T, dir, lang, content string) {
	t.Helper()
	bgDir := filepath.Join(dir, "bigrams")
	require.NoError(t, os.MkdirAll(bgDir, 0755))
	f, err := os.Create(filepath.Join(bgDir, lang+".gz"))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestBigramFollowers(t *testing.T) {
	dir := t.TempDir()
	writeBigrams(t, dir, "en", "the\tquick,quiet,queen\nnew\tyork,year\n")

	s := NewBigramSource()
	s.Load(dir, "en")
	waitLoaded(t, s.IsLoaded)

	got := s.Followers("the", "qu", 3)
	assert.Equal(t, []string{"quick", "quiet", "queen"}, got)

	// context lookup is case-insensitive
	got = s.Followers("The", "qu", 2)
	assert.Equal(t, []string{"quick", "quiet"}, got)

	// exact prefix match is excluded
	writeBigrams(t, dir, "en2", "a\tbe,b\n")
	s2 := NewBigramSource()
	s2.Load(dir, "en2")
	waitLoaded(t, s2.IsLoaded)
	assert.Equal(t, []string{"be"}, s2.Followers("a", "b", 3))
}

func TestBigramStaleLoadDiscarded(t *testing.T) {
	dir := t.TempDir()
	var big strings.Builder
	big.WriteString("stalectx\tstaleone,staletwo\n")
	for i := 0; i < 50000; i++ {
		fmt.Fprintf(&big, "filler%05d\tone,two\n", i)
	}
	writeBigrams(t, dir, "aa", big.String())
	writeBigrams(t, dir, "bb", "freshctx\tfreshone\n")

	s := NewBigramSource()
	s.Load(dir, "aa")
	s.Load(dir, "bb") // supersedes before the big build can finish

	waitLoaded(t, s.IsLoaded)
	assert.Equal(t, []string{"freshone"}, s.Followers("freshctx", "fr", 3))
	assert.Empty(t, s.Followers("stalectx", "st", 3))

	// Let the superseded build run to completion; its table must never
	// swap in behind the newer one.
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, s.Followers("stalectx", "st", 3))
	assert.Equal(t, []string{"freshone"}, s.Followers("freshctx", "fr", 3))
}

func TestBigramMissingFileIsEmpty(t *testing.T) {
	s := NewBigramSource()
	s.Load(t.TempDir(), "fi")
	waitLoaded(t, s.IsLoaded)
	got := s.Followers("the", "qu", 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBigramEdgeInputs(t *testing.T) {
	dir := t.TempDir()
	writeBigrams(t, dir, "en", "the\tquick\n")
	s := NewBigramSource()
	s.Load(dir, "en")
	waitLoaded(t, s.IsLoaded)

	assert.Empty(t, s.Followers("", "qu", 3))
	assert.Empty(t, s.Followers("the", "", 3))
	assert.Empty(t, s.Followers("the", "qu", 0))
	assert.Empty(t, s.Followers("unknown", "qu", 3))
}

func TestBigramSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeBigrams(t, dir, "en", "nofollowers\nthe\tquick\n\tleadingtab\n")
	s := NewBigramSource()
	s.Load(dir, "en")
	waitLoaded(t, s.IsLoaded)

	assert.Equal(t, []string{"quick"}, s.Followers("the", "q", 3))
	assert.Empty(t, s.Followers("nofollowers", "x", 3))
}
