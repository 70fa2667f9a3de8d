// Package cli handles cmd line input for DBG and testing: type a prefix
// to see ranked suggestions, or resolve chords against the active layout.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/chordserve/pkg/engine"
	"github.com/bastiangx/chordserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler processes user input from stdin. A plain line is treated
// as a completion prefix; ":chord N" resolves the bitmask N under the
// current mode state; ":prev WORD" sets the bigram context for later
// prefixes; ":state" prints the mode state.
type InputHandler struct {
	ranker          *suggest.Ranker
	eng             *engine.Engine
	minPrefixLength int
	maxPrefixLength int
	prevWord        string
}

// NewInputHandler handles initialization with basic parameters.
func NewInputHandler(ranker *suggest.Ranker, eng *engine.Engine, minLength, maxLength int) *InputHandler {
	return &InputHandler{
		ranker:          ranker,
		eng:             eng,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
	}
}

// Start begins the interface loop. It reads lines from stdin until EOF
// or a read error.
func (h *InputHandler) Start() error {
	log.Print("ChordServe CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a prefix and press Enter to see suggestions (Ctrl+C to exit)")
	log.Print("commands: :chord N | :prev WORD | :state")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handlePrefix(line)
	}
}

func (h *InputHandler) handleCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":chord":
		if len(fields) < 2 {
			log.Error("usage: :chord N (bitmask 1-63)")
			return
		}
		bitmask, err := strconv.Atoi(fields[1])
		if err != nil {
			log.Errorf("Not a number: %s", fields[1])
			return
		}
		h.handleChord(bitmask)
	case ":prev":
		if len(fields) < 2 {
			h.prevWord = ""
			log.Print("previous word cleared")
			return
		}
		h.prevWord = fields[1]
		log.Printf("previous word: %q", h.prevWord)
	case ":state":
		st := h.eng.State()
		log.Printf("mode=%s shift=%v symb=%v", st.Mode, st.Shift, st.Symb)
	default:
		log.Errorf("Unknown command: %s", fields[0])
	}
}

// handleChord resolves a bitmask and applies state actions, so chord
// sequences like shift-then-letter behave as they would in a session.
func (h *InputHandler) handleChord(bitmask int) {
	result, ok := h.eng.Resolve(bitmask)
	if !ok {
		log.Warnf("Chord %d resolves to nothing in the current state", bitmask)
		return
	}
	if result.IsAction() {
		if h.eng.Perform(result.Action) {
			st := h.eng.State()
			log.Printf("action %s -> mode=%s shift=%v symb=%v", result.Action, st.Mode, st.Shift, st.Symb)
		} else {
			log.Printf("action %s (host-side)", result.Action)
		}
		return
	}
	log.Printf("chord %d -> %q", bitmask, result.Text)
}

// handlePrefix asks the ranker for suggestions and prints them.
func (h *InputHandler) handlePrefix(prefix string) {
	if len(prefix) < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}

	start := time.Now()
	words := h.ranker.Rank(prefix, h.prevWord, false)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(words) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	log.Printf("Found %d suggestions for prefix '%s':", len(words), prefix)
	for i, w := range words {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", w)
		log.Printf("%2d. %s", i+1, clWord)
	}
}
