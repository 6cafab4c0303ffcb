package session

import (
	"sync"
	"time"
)

const DefaultHistorySize = 20

// HistoryEntry is the locally known summary of a submitted recording,
// added before the server's own listing catches up.
type HistoryEntry struct {
	ID        string
	Title     string
	CreatedAt time.Time
	URL       string
	EditURL   string
	PDFURL    string
}

// History is a capped newest-first list.
type History struct {
	mu      sync.Mutex
	max     int
	entries []HistoryEntry
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

func (h *History) Prepend(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]HistoryEntry{e}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

// SetMax changes the cap, dropping the oldest entries if needed.
func (h *History) SetMax(max int) {
	if max <= 0 {
		max = DefaultHistorySize
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max
	if len(h.entries) > max {
		h.entries = h.entries[:max]
	}
}

// Entries returns a copy, newest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
