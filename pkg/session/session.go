// Package session drives a typing session: it feeds chords through the
// engine, tracks the word being composed, keeps the learned stores
// updated on word boundaries, and pushes ranked suggestions to the host.
//
// The host is whatever owns the text field. The session never touches
// text directly; it asks the host to commit or delete and reads back the
// text before the cursor when it needs context the buffer cannot supply
// (after cursor movement, or when attaching to existing text).
package session

import (
	"strings"
	"unicode"

	"github.com/bastiangx/chordserve/internal/utils"
	"github.com/bastiangx/chordserve/pkg/dictionary"
	"github.com/bastiangx/chordserve/pkg/engine"
	"github.com/bastiangx/chordserve/pkg/layout"
	"github.com/bastiangx/chordserve/pkg/learned"
	"github.com/bastiangx/chordserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Host is the capability contract a text-field owner implements. All
// counts are in runes, not bytes.
type Host interface {
	// CommitText inserts text at the cursor.
	CommitText(text string)
	// DeleteSurrounding removes runes around the cursor.
	DeleteSurrounding(before, after int)
	// TextBeforeCursor returns up to n runes preceding the cursor.
	TextBeforeCursor(n int) string
	// SetSuggestions replaces the suggestion strip. nil clears it.
	SetSuggestions(words []string)
	// StateChanged reports a mode state change (shift, symb, ABC/NUM).
	StateChanged(state engine.State)
}

// Sources bundles the four suggestion sources plus the learned stores
// that need flushing and reloading on language switches.
type Sources struct {
	UserWords   *learned.WordStore
	UserBigrams *learned.BigramStore
	Words       *dictionary.WordSource
	Bigrams     *dictionary.BigramSource
}

// Session owns per-connection typing state. Not safe for concurrent use;
// the server serializes requests onto it.
type Session struct {
	eng     *engine.Engine
	ranker  *suggest.Ranker
	sources Sources
	host    Host

	currentWord []rune
	// previousWord is the canonical form of the last completed word,
	// empty when unknown (fresh session, after cursor movement).
	previousWord string

	lang string
}

// minRecordLength matches the learned stores: shorter words are noise.
const minRecordLength = 2

// New wires a session. The engine must already carry a layout.
func New(eng *engine.Engine, ranker *suggest.Ranker, sources Sources, host Host) *Session {
	return &Session{
		eng:     eng,
		ranker:  ranker,
		sources: sources,
		host:    host,
	}
}

// Engine exposes the underlying engine for state queries.
func (s *Session) Engine() *engine.Engine { return s.eng }

// State returns the current mode state.
func (s *Session) State() engine.State { return s.eng.State() }

// CurrentWord returns the word being composed.
func (s *Session) CurrentWord() string { return string(s.currentWord) }

// Language returns the active language id, empty before the first
// SwitchLanguage.
func (s *Session) Language() string { return s.lang }

// HandleChord resolves a chord bitmask and applies its effect: literal
// text is committed through the host, actions are performed. Returns
// false when the chord resolves to nothing under the current state.
func (s *Session) HandleChord(bitmask int) bool {
	result, ok := s.eng.Resolve(bitmask)
	if !ok {
		return false
	}
	if result.IsAction() {
		s.performAction(result.Action)
	} else {
		s.commitOutput(result.Text)
	}
	return true
}

// commitOutput commits resolved text and keeps the word buffer in sync.
// Letter output extends the current word; anything else is a boundary.
func (s *Session) commitOutput(text string) {
	if text == "" {
		return
	}
	s.host.CommitText(text)
	if isAllLetters(text) {
		s.currentWord = append(s.currentWord, []rune(text)...)
		s.updateSuggestions()
	} else {
		s.finishCurrentWord()
	}
}

func (s *Session) performAction(a layout.Action) {
	switch a {
	case layout.ActionBackspace:
		s.host.DeleteSurrounding(1, 0)
		if len(s.currentWord) > 0 {
			s.currentWord = s.currentWord[:len(s.currentWord)-1]
			if len(s.currentWord) > 0 {
				s.updateSuggestions()
			} else {
				s.host.SetSuggestions(nil)
			}
		}
	case layout.ActionEnter:
		s.finishCurrentWord()
		s.host.CommitText("\n")
	case layout.ActionSpace:
		s.finishCurrentWord()
		s.host.CommitText(" ")
	case layout.ActionTab:
		s.host.CommitText("\t")
	case layout.ActionDelete:
		s.host.DeleteSurrounding(0, 1)
	case layout.ActionModeToggle, layout.ActionShift, layout.ActionSymb:
		s.eng.Perform(a)
		s.host.StateChanged(s.eng.State())
	default:
		// Navigation, pickers and modifiers belong to the host UI.
		log.Debugf("Unhandled action %q", a)
	}
}

// AcceptSuggestion replaces the current word with the chosen suggestion,
// commits it with a trailing space, and records it in the learned stores.
func (s *Session) AcceptSuggestion(word string) {
	if word == "" {
		return
	}
	firstInSentence := s.isFirstWordInSentence()
	if len(s.currentWord) > 0 {
		s.host.DeleteSurrounding(len(s.currentWord), 0)
	}
	s.host.CommitText(word + " ")

	if s.sources.UserWords != nil {
		s.sources.UserWords.Record(word, firstInSentence)
	}
	canonical := word
	if firstInSentence {
		canonical = strings.ToLower(word)
	}
	if s.previousWord != "" && s.sources.UserBigrams != nil {
		s.sources.UserBigrams.Record(s.previousWord, canonical)
	}
	s.previousWord = canonical
	s.currentWord = s.currentWord[:0]
	s.host.SetSuggestions(nil)
}

// Reset clears composition state, as when the host moves to a new text
// field. Learned and static tables are untouched.
func (s *Session) Reset() {
	s.currentWord = s.currentWord[:0]
	s.previousWord = ""
	s.host.SetSuggestions(nil)
}

// SwitchLanguage flushes the learned stores for the old language and
// loads all four sources for the new one. Static loads run in the
// background; learned loads are synchronous.
func (s *Session) SwitchLanguage(dataDir, lang string) {
	s.lang = lang
	if s.sources.UserWords != nil {
		s.sources.UserWords.Load(dataDir, lang)
	}
	if s.sources.UserBigrams != nil {
		s.sources.UserBigrams.Load(dataDir, lang)
	}
	if s.sources.Words != nil {
		s.sources.Words.Load(dataDir, lang)
	}
	if s.sources.Bigrams != nil {
		s.sources.Bigrams.Load(dataDir, lang)
	}
	s.Reset()
	log.Infof("Switched to language %q", lang)
}

// Close flushes the learned stores. Pending debounced saves are written
// synchronously.
func (s *Session) Close() {
	s.finishCurrentWord()
	if s.sources.UserWords != nil {
		s.sources.UserWords.Close()
	}
	if s.sources.UserBigrams != nil {
		s.sources.UserBigrams.Close()
	}
}

// updateSuggestions pushes ranked completions for the current prefix.
func (s *Session) updateSuggestions() {
	prefix := string(s.currentWord)
	if prefix == "" {
		s.host.SetSuggestions(nil)
		return
	}
	prev := s.effectivePreviousWord()
	words := s.ranker.Rank(prefix, prev, s.isFirstWordInSentence())
	if len(words) == 0 {
		s.host.SetSuggestions(nil)
		return
	}
	s.host.SetSuggestions(words)
}

// finishCurrentWord records the composed word and its bigram, then
// clears the buffer. Words below the minimum length are not recorded but
// still end the composition.
func (s *Session) finishCurrentWord() {
	if len(s.currentWord) >= minRecordLength {
		firstInSentence := s.isFirstWordInSentence()
		word := string(s.currentWord)
		canonical := word
		if firstInSentence {
			canonical = strings.ToLower(word)
		}
		if s.sources.UserWords != nil {
			s.sources.UserWords.Record(word, firstInSentence)
		}
		if s.previousWord != "" && s.sources.UserBigrams != nil {
			s.sources.UserBigrams.Record(s.previousWord, canonical)
		}
		s.previousWord = canonical
	}
	s.currentWord = s.currentWord[:0]
	s.host.SetSuggestions(nil)
}

// effectivePreviousWord falls back to the host's text when the tracked
// previous word was lost, walking backwards past whitespace and then
// through letters to recover the last complete word before the cursor.
func (s *Session) effectivePreviousWord() string {
	if s.previousWord != "" {
		return s.previousWord
	}
	before := []rune(s.host.TextBeforeCursor(len(s.currentWord) + 50))
	preceding := len(before) - len(s.currentWord)
	if preceding <= 0 {
		return ""
	}

	end := preceding
	for end > 0 && unicode.IsSpace(before[end-1]) {
		end--
	}
	if end == 0 {
		return ""
	}
	start := end
	for start > 0 && unicode.IsLetter(before[start-1]) {
		start--
	}
	if start == end {
		return ""
	}
	return string(before[start:end])
}

// isFirstWordInSentence reports whether the word being composed starts a
// sentence: nothing before it, or the nearest non-whitespace character
// before it ends a sentence.
func (s *Session) isFirstWordInSentence() bool {
	before := []rune(s.host.TextBeforeCursor(len(s.currentWord) + 20))
	preceding := len(before) - len(s.currentWord)
	if preceding <= 0 {
		return true
	}
	for i := preceding - 1; i >= 0; i-- {
		if !unicode.IsSpace(before[i]) {
			return utils.IsSentenceEnd(before[i])
		}
	}
	return true
}

func isAllLetters(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
