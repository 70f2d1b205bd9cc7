package overview

import "time"

// Mode selects whether the minimap stays expanded.
type Mode string

const (
	ModePinned Mode = "pinned"
	ModeAuto   Mode = "auto"
)

// AutoHide tracks whether the minimap is expanded. In auto mode it collapses
// HideDelay after the pointer leaves, unless a drag holds it open. The zero
// value is pinned.
type AutoHide struct {
	mode    Mode
	hovered bool
	hideAt  time.Time
}

// SetMode switches between pinned and auto.
func (a *AutoHide) SetMode(m Mode) { a.mode = m }

// Mode returns the current mode.
func (a *AutoHide) Mode() Mode {
	if a.mode == "" {
		return ModePinned
	}
	return a.mode
}

// Toggle flips between pinned and auto and returns the new mode.
func (a *AutoHide) Toggle() Mode {
	if a.Mode() == ModePinned {
		a.mode = ModeAuto
	} else {
		a.mode = ModePinned
	}
	return a.mode
}

// Enter marks the pointer as over the minimap.
func (a *AutoHide) Enter() {
	a.hovered = true
	a.hideAt = time.Time{}
}

// Leave schedules a collapse HideDelay after now in auto mode.
func (a *AutoHide) Leave(now time.Time, dragging bool) {
	if a.Mode() == ModeAuto && !dragging {
		a.hideAt = now.Add(HideDelay)
	}
}

func (a *AutoHide) hold() {
	a.hovered = true
	a.hideAt = time.Time{}
}

// Expanded reports whether the minimap is shown at now.
func (a *AutoHide) Expanded(now time.Time) bool {
	if a.Mode() == ModePinned {
		return true
	}
	if !a.hideAt.IsZero() && !now.Before(a.hideAt) {
		a.hovered = false
		a.hideAt = time.Time{}
	}
	return a.hovered
}
