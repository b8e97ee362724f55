package surface

import (
	"sync"
	"time"
)

const DefaultFlashDuration = 200 * time.Millisecond

type Who string

const (
	Self    Who = "self"
	Partner Who = "partner"
)

// Renderer draws key highlights. Calls are serialized by the Flasher and
// must not call back into it.
type Renderer interface {
	Highlight(note string, who Who)
	Clear(note string)
}

type nopRenderer struct{}

func (nopRenderer) Highlight(string, Who) {}
func (nopRenderer) Clear(string)          {}

// Flasher lights a key and clears it after a fixed delay. Every flash
// schedules its own clear and a clear removes all highlights on the key,
// so rapid presses can shorten a highlight but never leave one behind.
type Flasher struct {
	delay    time.Duration
	renderer Renderer

	mu     sync.Mutex
	active map[string]map[Who]bool
	timers map[*time.Timer]struct{}
	closed bool
}

func NewFlasher(r Renderer, delay time.Duration) *Flasher {
	if r == nil {
		r = nopRenderer{}
	}
	if delay <= 0 {
		delay = DefaultFlashDuration
	}
	return &Flasher{
		delay:    delay,
		renderer: r,
		active:   make(map[string]map[Who]bool),
		timers:   make(map[*time.Timer]struct{}),
	}
}

func (f *Flasher) Flash(note string, who Who) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	if f.active[note] == nil {
		f.active[note] = make(map[Who]bool)
	}
	f.active[note][who] = true
	f.renderer.Highlight(note, who)

	var t *time.Timer
	t = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.timers, t)
		f.clearLocked(note)
	})
	f.timers[t] = struct{}{}
}

// Active reports who currently highlights note.
func (f *Flasher) Active(note string) []Who {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Who
	for _, who := range []Who{Self, Partner} {
		if f.active[note][who] {
			out = append(out, who)
		}
	}
	return out
}

// Close stops pending timers and clears every highlight.
func (f *Flasher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for t := range f.timers {
		t.Stop()
		delete(f.timers, t)
	}
	for note := range f.active {
		f.clearLocked(note)
	}
}

func (f *Flasher) clearLocked(note string) {
	if len(f.active[note]) == 0 {
		return
	}
	delete(f.active, note)
	f.renderer.Clear(note)
}
