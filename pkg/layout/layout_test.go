package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	l, err := Parse(`
id = "en_test"
name = "Test"

[[entry]]
ref = 1
abc = "a"
abc_shift = "A"
num = "1"
num_shift = "!"
symb = "@"
symb_shift = "#"

[[entry]]
ref = 27
abc = "space"

[[entry]]
ref = 99
abc = "dropped"
`)
	require.NoError(t, err)
	assert.Equal(t, "en_test", l.ID())
	assert.Equal(t, "Test", l.Name())
	assert.Equal(t, 2, l.Len(), "ref 99 must be dropped")

	e := l.Entry(1)
	require.NotNil(t, e)
	assert.Equal(t, "a", e.Abc)
	assert.Equal(t, "#", e.SymbShift)
	assert.False(t, e.IsAction())

	space := l.Entry(27)
	require.NotNil(t, space)
	assert.True(t, space.IsAction())
}

func TestEntryOutOfRange(t *testing.T) {
	l := New("x", "x", []Entry{{Ref: 1, Abc: "a"}})
	assert.Nil(t, l.Entry(0))
	assert.Nil(t, l.Entry(64))
	assert.Nil(t, l.Entry(2))
	assert.NotNil(t, l.Entry(1))
}

func TestParseMissingHeader(t *testing.T) {
	l, err := Parse(`
[[entry]]
ref = 5
abc = "e"
`)
	require.NoError(t, err)
	assert.Equal(t, "unknown", l.ID())
	assert.Equal(t, "Unknown", l.Name())
}

func TestIsActionValue(t *testing.T) {
	assert.True(t, IsActionValue("backspace"))
	assert.True(t, IsActionValue("mode_toggle"))
	assert.True(t, IsActionValue("PanRightEnd"))
	assert.False(t, IsActionValue("a"))
	assert.False(t, IsActionValue(""))
	assert.False(t, IsActionValue("Backspace"), "vocabulary is case-sensitive")
}

func TestDefaultLayout(t *testing.T) {
	l := Default()
	require.NotNil(t, l.Entry(1))
	assert.Equal(t, "a", l.Entry(1).Abc)
	assert.Equal(t, "A", l.Entry(1).AbcShift)
	assert.Equal(t, "z", l.Entry(26).Abc)
	space := l.Entry(27)
	require.NotNil(t, space)
	assert.Equal(t, string(ActionSpace), space.Abc)
	assert.True(t, space.IsAction())
}
