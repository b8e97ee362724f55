package surface

import (
	"sync"
	"time"
)

type Entry struct {
	Who  Who
	Text string
	At   time.Time
}

// ActivityLog is an append-only record of played notes.
type ActivityLog struct {
	mu       sync.Mutex
	entries  []Entry
	onAppend func(Entry)
}

// NewActivityLog takes an optional observer invoked for each new entry.
func NewActivityLog(onAppend func(Entry)) *ActivityLog {
	return &ActivityLog{onAppend: onAppend}
}

func (l *ActivityLog) Append(who Who, text string) {
	e := Entry{Who: who, Text: text, At: time.Now()}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	if l.onAppend != nil {
		l.onAppend(e)
	}
}

func (l *ActivityLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
