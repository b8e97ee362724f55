package surface

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	k := DefaultKeyMap()

	note, ok := k.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "C", note)

	note, ok = k.Lookup("W")
	require.True(t, ok)
	assert.Equal(t, "Csharp", note)

	_, ok = k.Lookup("q")
	assert.False(t, ok)

	assert.Equal(t, scale, k.Notes())
	assert.True(t, k.HasNote("Asharp"))
	assert.False(t, k.HasNote("Bsharp"))

	key, ok := k.KeyFor("B")
	require.True(t, ok)
	assert.Equal(t, "j", key)
}

func TestKeyMap_NotesExtra(t *testing.T) {
	k := KeyMap{"z": "Drum", "x": "C", "c": "Bell"}
	assert.Equal(t, []string{"C", "Bell", "Drum"}, k.Notes())
}

func TestSoundPath(t *testing.T) {
	path, err := SoundPath("sounds", "Csharp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("sounds", "Csharp.mp3"), path)

	for _, bad := range []string{"", "../etc/passwd", "a/b", `a\b`, ".."} {
		_, err := SoundPath("sounds", bad)
		assert.ErrorIs(t, err, ErrBadNote, "note %q", bad)
	}
}

func TestCommandPlayer(t *testing.T) {
	_, err := NewCommandPlayer("  ", "sounds")
	assert.Error(t, err)

	p, err := NewCommandPlayer("mpg123 -q", "sounds")
	require.NoError(t, err)
	assert.Equal(t, "mpg123", p.Program)
	assert.Equal(t, []string{"-q"}, p.Args)

	missing := &CommandPlayer{Program: "definitely-not-a-real-player-binary", Dir: t.TempDir()}
	assert.Error(t, missing.Play("C"))
	assert.ErrorIs(t, missing.Play("../x"), ErrBadNote)
}

func TestActivityLog_Observer(t *testing.T) {
	var seen []Entry
	l := NewActivityLog(func(e Entry) { seen = append(seen, e) })

	l.Append(Self, "You played C")
	l.Append(Partner, "Partner played D")

	require.Len(t, seen, 2)
	assert.Equal(t, Partner, seen[1].Who)
	assert.Equal(t, "You played C", l.Entries()[0].Text)
	assert.False(t, seen[0].At.IsZero())
}
