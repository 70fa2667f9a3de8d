package layout

// Default returns the built-in English fallback layout, used when no
// layout file is found for the active language. Letters sit on refs 1-26,
// digits share the first ten refs in numbers mode, and the core editing
// actions occupy the refs above the alphabet.
func Default() *Layout {
	letters := "abcdefghijklmnopqrstuvwxyz"
	upper := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits := "1234567890"
	digitShift := []string{"!", "\"", "#", "$", "%", "&", "/", "(", ")", "="}
	symbols := []string{"@", "#", "$", "%", "&", "*", "-", "+", "(", ")",
		"!", "\"", "'", ":", ";", "/", "?", ",", ".", "_",
		"=", "<", ">", "[", "]", "~"}
	symbolShift := []string{"`", "^", "|", "\\", "{", "}", "§", "°", "«", "»"}

	entries := make([]Entry, 0, 36)
	for i := 0; i < 26; i++ {
		e := Entry{
			Ref:      i + 1,
			Abc:      string(letters[i]),
			AbcShift: string(upper[i]),
			Symb:     symbols[i],
		}
		if i < 10 {
			e.Num = string(digits[i])
			e.NumShift = digitShift[i]
			e.SymbShift = symbolShift[i]
		}
		entries = append(entries, e)
	}

	actions := []struct {
		ref int
		a   Action
	}{
		{27, ActionSpace},
		{28, ActionBackspace},
		{29, ActionEnter},
		{30, ActionShift},
		{31, ActionSymb},
		{32, ActionModeToggle},
		{33, ActionLeftArrow},
		{34, ActionRightArrow},
		{35, ActionUpArrow},
		{36, ActionDownArrow},
	}
	for _, ae := range actions {
		s := string(ae.a)
		entries = append(entries, Entry{
			Ref: ae.ref,
			Abc: s, AbcShift: s, Num: s, NumShift: s, Symb: s, SymbShift: s,
		})
	}

	return New("en_default", "English (built-in)", entries)
}
