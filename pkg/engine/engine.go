// Package engine resolves chords against the active layout and the current
// mode state. Resolution is pure: it never mutates state. State only
// changes when a produced state action (mode toggle, shift, symb) is
// performed.
package engine

import (
	"github.com/bastiangx/chordserve/pkg/chord"
	"github.com/bastiangx/chordserve/pkg/layout"
)

// Mode is the primary layer: letters or numbers. The symbols overlay is a
// separate flag, not a third mode.
type Mode int

const (
	ModeABC Mode = iota
	ModeNUM
)

func (m Mode) String() string {
	if m == ModeNUM {
		return "NUM"
	}
	return "ABC"
}

// State is the full mode state of the engine.
type State struct {
	Mode  Mode
	Shift bool
	Symb  bool
}

// Result is the outcome of resolving a chord: either literal text to
// commit or an action identifier, never both.
type Result struct {
	Text   string
	Action layout.Action
}

// IsAction reports whether the result carries an action.
func (r Result) IsAction() bool { return r.Action != "" }

// Engine binds a layout to mode state.
type Engine struct {
	layout *layout.Layout
	state  State
}

// New returns an engine with no layout. Resolution fails until SetLayout
// is called.
func New() *Engine {
	return &Engine{}
}

// SetLayout replaces the active layout wholesale.
func (e *Engine) SetLayout(l *layout.Layout) { e.layout = l }

// Layout returns the active layout, or nil.
func (e *Engine) Layout() *layout.Layout { return e.layout }

// State returns the current mode state.
func (e *Engine) State() State { return e.state }

// SetState replaces the mode state.
func (e *Engine) SetState(s State) { e.state = s }

// Resolve maps a chord bitmask to text or an action under the current
// state. The second return is false when the chord is invalid, the layout
// has no entry for it, or the selected slot is empty.
func (e *Engine) Resolve(bitmask int) (Result, bool) {
	ref := chord.ToRef(bitmask)
	if ref == 0 || e.layout == nil {
		return Result{}, false
	}
	entry := e.layout.Entry(ref)
	if entry == nil {
		return Result{}, false
	}
	value := e.pickValue(entry)
	if value == "" {
		return Result{}, false
	}
	if layout.IsActionValue(value) {
		return Result{Action: layout.Action(value)}, true
	}
	return Result{Text: value}, true
}

// pickValue selects the slot for the current state. The symbols overlay
// takes precedence over the numbers mode; within a family, shift selects
// the shift slot when present. Letters mode falls back to its base slot;
// numbers and symbols produce nothing without an explicit slot.
func (e *Engine) pickValue(entry *layout.Entry) string {
	if e.state.Symb {
		if e.state.Shift && entry.SymbShift != "" {
			return entry.SymbShift
		}
		if entry.Symb != "" {
			return entry.Symb
		}
	}
	if e.state.Mode == ModeABC {
		if e.state.Shift && entry.AbcShift != "" {
			return entry.AbcShift
		}
		return entry.Abc
	}
	if e.state.Shift && entry.NumShift != "" {
		return entry.NumShift
	}
	return entry.Num
}

// Perform applies the state side effect of an action, if it has one, and
// reports whether the action was a state action. All other actions
// (backspace, navigation, pickers, ...) belong to the host.
func (e *Engine) Perform(a layout.Action) bool {
	switch a {
	case layout.ActionModeToggle:
		if e.state.Mode == ModeABC {
			e.state.Mode = ModeNUM
		} else {
			e.state.Mode = ModeABC
		}
	case layout.ActionShift:
		e.state.Shift = !e.state.Shift
	case layout.ActionSymb:
		e.state.Symb = !e.state.Symb
	default:
		return false
	}
	return true
}
