package command

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/pongsant/Assignment-4-Collaboration/surface"
)

// terminal renders the surface as colored lines on a writer. It is the
// Renderer for flashes, the status observer and the activity log observer.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
	lit map[string]surface.Who

	status  *color.Color
	self    *color.Color
	partner *color.Color
	dim     *color.Color
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{
		out:     out,
		lit:     make(map[string]surface.Who),
		status:  color.New(color.FgYellow),
		self:    color.New(color.FgGreen, color.Bold),
		partner: color.New(color.FgMagenta, color.Bold),
		dim:     color.New(color.FgHiBlack),
	}
}

func (t *terminal) Highlight(note string, who surface.Who) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lit[note] = who
}

func (t *terminal) Clear(note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lit, note)
}

// Lit returns the currently highlighted notes, sorted.
func (t *terminal) Lit() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.lit))
	for n := range t.lit {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (t *terminal) Status(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Fprintf(t.out, "* %s\n", text)
}

func (t *terminal) Entry(e surface.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.self
	if e.Who == surface.Partner {
		c = t.partner
	}
	c.Fprintf(t.out, "♪ %s\n", e.Text)
}

// Keyboard prints the key-to-note legend.
func (t *terminal) Keyboard(keys surface.KeyMap) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var parts []string
	for _, note := range keys.Notes() {
		key, _ := keys.KeyFor(note)
		parts = append(parts, fmt.Sprintf("%s=%s", key, note))
	}
	t.dim.Fprintf(t.out, "keys: %s\n", strings.Join(parts, " "))
}
