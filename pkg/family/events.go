package family

import (
	"cmp"
	"slices"
	"strings"
)

// EraBC marks an event year counted backwards.
const EraBC = "b.c."

// Event is an entry on the house timeline.
type Event struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Year        int    `json:"year" yaml:"year"`
	Era         string `json:"era,omitempty" yaml:"era,omitempty"`
	Title       string `json:"title" yaml:"title"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// AbsoluteYear returns the signed year, negative for b.c. eras.
func (e Event) AbsoluteYear() int {
	if strings.EqualFold(strings.TrimSpace(e.Era), EraBC) {
		return -e.Year
	}
	return e.Year
}

// SortedEvents returns the timeline newest first. Events in the same year
// keep their input order.
func (t *Tree) SortedEvents() []Event {
	events := slices.Clone(t.TimelineEvents)
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(b.AbsoluteYear(), a.AbsoluteYear())
	})
	return events
}
