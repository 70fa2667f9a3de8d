// Package learned holds the mutable, persisted frequency tables that grow
// from the user's typing: a word store and a bigram store per language.
// Mutations arm a debounced save; an explicit flush runs synchronously on
// close and on language switch so no learned data is lost.
package learned

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// saver debounces writes behind a store's own mutex. markDirty re-arms the
// timer on every mutation instead of stacking writes; the timer callback
// takes the same mutex, so a save never runs concurrently with a mutation.
type saver struct {
	mu    *sync.Mutex
	delay time.Duration
	timer *time.Timer
	dirty bool
	write func() error
}

func newSaver(mu *sync.Mutex, delay time.Duration, write func() error) *saver {
	return &saver{mu: mu, delay: delay, write: write}
}

// markDirty must be called with the store mutex held.
func (s *saver) markDirty() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.onTimer)
}

func (s *saver) onTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

// flushLocked must be called with the store mutex held. It cancels any
// pending timer and writes if there are unsaved changes. The dirty flag
// survives a failed write so the next cycle retries.
func (s *saver) flushLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		return
	}
	if err := s.write(); err != nil {
		log.Warnf("Failed to save learned data: %v", err)
		return
	}
	s.dirty = false
}
