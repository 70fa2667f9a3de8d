package layout

// Layout is a language/variant layout: id, display name, and 63 entries
// indexed by ref. Built once on load and treated as immutable afterwards;
// a language switch replaces the whole value.
type Layout struct {
	id      string
	name    string
	entries [63]*Entry // index 0 = ref 1 ... index 62 = ref 63
}

// New builds a layout from a set of entries. Entries with a ref outside
// 1-63 are dropped; a later entry for the same ref replaces an earlier one.
func New(id, name string, entries []Entry) *Layout {
	l := &Layout{id: id, name: name}
	for i := range entries {
		e := entries[i]
		if e.Ref >= 1 && e.Ref <= 63 {
			l.entries[e.Ref-1] = &e
		}
	}
	return l
}

// ID returns the layout identifier.
func (l *Layout) ID() string { return l.id }

// Name returns the layout display name.
func (l *Layout) Name() string { return l.name }

// Entry returns the entry for a ref, or nil when the ref is out of range
// or the layout has no entry there.
func (l *Layout) Entry(ref int) *Entry {
	if ref < 1 || ref > 63 {
		return nil
	}
	return l.entries[ref-1]
}

// Len returns the number of populated entries.
func (l *Layout) Len() int {
	n := 0
	for _, e := range l.entries {
		if e != nil {
			n++
		}
	}
	return n
}
