// Package layout holds per-language chord layouts: tables of up to 63
// entries, addressed by GKOS ref, each carrying six mode-dependent output
// slots. A slot value is either a literal string to commit or one of a
// closed set of action identifiers.
package layout

// Action identifies a non-literal outcome such as backspace or a mode
// toggle. The vocabulary is closed; layouts cannot define new actions.
type Action string

// The full action vocabulary.
const (
	ActionBackspace     Action = "backspace"
	ActionEnter         Action = "enter"
	ActionSpace         Action = "space"
	ActionModeToggle    Action = "mode_toggle"
	ActionShift         Action = "shift"
	ActionSymb          Action = "symb"
	ActionCtrl          Action = "ctrl"
	ActionAlt           Action = "alt"
	ActionTab           Action = "tab"
	ActionEsc           Action = "esc"
	ActionDelete        Action = "delete"
	ActionUpArrow       Action = "UpArrow"
	ActionDownArrow     Action = "DownArrow"
	ActionPageUp        Action = "PageUp"
	ActionPageDown      Action = "PageDown"
	ActionLeftArrow     Action = "LeftArrow"
	ActionWordLeft      Action = "WordLeft"
	ActionHome          Action = "Home"
	ActionRightArrow    Action = "RightArrow"
	ActionWordRight     Action = "WordRight"
	ActionEnd           Action = "End"
	ActionInsert        Action = "Insert"
	ActionScrollUp      Action = "ScrollUp"
	ActionScrollDown    Action = "ScrollDown"
	ActionPanLeft       Action = "PanLeft"
	ActionPanLeftHome   Action = "PanLeftHome"
	ActionPanRight      Action = "PanRight"
	ActionPanRightEnd   Action = "PanRightEnd"
	ActionEmoji         Action = "emoji"
	ActionUnicodePicker Action = "unicode_picker"
)

var actionSet = map[string]struct{}{
	string(ActionBackspace): {}, string(ActionEnter): {}, string(ActionSpace): {},
	string(ActionModeToggle): {}, string(ActionShift): {}, string(ActionSymb): {},
	string(ActionCtrl): {}, string(ActionAlt): {}, string(ActionTab): {},
	string(ActionEsc): {}, string(ActionDelete): {},
	string(ActionUpArrow): {}, string(ActionDownArrow): {},
	string(ActionPageUp): {}, string(ActionPageDown): {},
	string(ActionLeftArrow): {}, string(ActionWordLeft): {}, string(ActionHome): {},
	string(ActionRightArrow): {}, string(ActionWordRight): {}, string(ActionEnd): {},
	string(ActionInsert): {}, string(ActionScrollUp): {}, string(ActionScrollDown): {},
	string(ActionPanLeft): {}, string(ActionPanLeftHome): {},
	string(ActionPanRight): {}, string(ActionPanRightEnd): {},
	string(ActionEmoji): {}, string(ActionUnicodePicker): {},
}

// IsActionValue reports whether a slot value names a known action.
func IsActionValue(s string) bool {
	_, ok := actionSet[s]
	return ok
}

// Entry is a single layout entry: one ref with its six output slots.
// Empty slots mean "no value in this mode".
type Entry struct {
	Ref       int    `toml:"ref"`
	Abc       string `toml:"abc"`
	AbcShift  string `toml:"abc_shift"`
	Num       string `toml:"num"`
	NumShift  string `toml:"num_shift"`
	Symb      string `toml:"symb"`
	SymbShift string `toml:"symb_shift"`
}

// IsAction reports whether any of the entry's six slots is an action
// identifier.
func (e *Entry) IsAction() bool {
	return IsActionValue(e.Abc) || IsActionValue(e.AbcShift) ||
		IsActionValue(e.Num) || IsActionValue(e.NumShift) ||
		IsActionValue(e.Symb) || IsActionValue(e.SymbShift)
}
