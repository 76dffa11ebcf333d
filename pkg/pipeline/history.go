package pipeline

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

func NewHistory() *History {
	return &History{max: 3}
}

// History keeps the last few conversions for the bot's /info command.
type History struct {
	l     sync.Mutex
	max   int
	items []*Entry
}

type Entry struct {
	Input  string
	Output string
	Width  int
	Height int
	When   time.Time
}

func (h *History) Add(input, output string, w, ht int) {
	h.l.Lock()
	defer h.l.Unlock()

	h.items = append(h.items, &Entry{
		Input:  input,
		Output: output,
		Width:  w,
		Height: ht,
		When:   time.Now(),
	})
	if len(h.items) > h.max {
		h.items = h.items[1:]
	}
}

func (h *History) Logs() []*Entry {
	h.l.Lock()
	defer h.l.Unlock()
	return append([]*Entry(nil), h.items...)
}

func (h *History) Curr() *Entry {
	h.l.Lock()
	defer h.l.Unlock()
	log, _ := lo.Last(h.items)
	return log
}

func (h *History) Prev() *Entry {
	h.l.Lock()
	defer h.l.Unlock()
	log, _ := lo.Nth(h.items, -2)
	return log
}
