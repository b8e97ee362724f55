package surface

import (
	"sort"
	"strings"
)

// KeyMap maps a keyboard key to a note identifier.
type KeyMap map[string]string

// scale fixes the display order of the default notes.
var scale = []string{"C", "Csharp", "D", "Dsharp", "E", "F", "Fsharp", "G", "Gsharp", "A", "Asharp", "B"}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		"a": "C",
		"w": "Csharp",
		"s": "D",
		"e": "Dsharp",
		"d": "E",
		"f": "F",
		"t": "Fsharp",
		"g": "G",
		"y": "Gsharp",
		"h": "A",
		"u": "Asharp",
		"j": "B",
	}
}

// Lookup is case-insensitive.
func (k KeyMap) Lookup(key string) (string, bool) {
	note, ok := k[strings.ToLower(key)]
	return note, ok
}

func (k KeyMap) HasNote(note string) bool {
	for _, n := range k {
		if n == note {
			return true
		}
	}
	return false
}

// KeyFor returns the key bound to note, if any.
func (k KeyMap) KeyFor(note string) (string, bool) {
	for key, n := range k {
		if n == note {
			return key, true
		}
	}
	return "", false
}

// Notes lists the mapped notes, chromatic order first, then anything
// else alphabetically.
func (k KeyMap) Notes() []string {
	seen := make(map[string]bool)
	for _, n := range k {
		seen[n] = true
	}

	var out []string
	for _, n := range scale {
		if seen[n] {
			out = append(out, n)
			delete(seen, n)
		}
	}
	var rest []string
	for n := range seen {
		rest = append(rest, n)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
