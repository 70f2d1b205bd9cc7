package overview

import (
	"time"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/viewport"
)

// Timing for minimap gestures.
const (
	DoubleClickWindow = 300 * time.Millisecond
	PingDuration      = 600 * time.Millisecond
	HideDelay         = 400 * time.Millisecond
)

// Ping is a short-lived marker shown where a double click landed.
type Ping struct {
	X, Y    float64
	Expires time.Time
}

// Minimap forwards minimap gestures to a viewport controller. It is driven
// from a single event loop and is not safe for concurrent use.
type Minimap struct {
	size Size
	vc   *viewport.Controller

	layout *layout.Layout
	proj   Projection
	ok     bool

	cw, ch float64

	dragging  bool
	lastX     float64
	lastY     float64
	lastClick time.Time
	pending   bool
	pendingX  float64
	pendingY  float64
	pings     []Ping
	autoHide  AutoHide
}

// New returns a minimap of the given size bound to vc.
func New(size Size, vc *viewport.Controller) *Minimap {
	return &Minimap{size: size, vc: vc}
}

// Size returns the minimap canvas size.
func (m *Minimap) Size() Size { return m.size }

// SetLayout replaces the projected layout.
func (m *Minimap) SetLayout(l *layout.Layout) {
	m.layout = l
	m.proj, m.ok = NewProjection(l, m.size)
}

// SetContainer records the main canvas size in screen pixels.
func (m *Minimap) SetContainer(w, h float64) { m.cw, m.ch = w, h }

// Projection returns the current projection.
func (m *Minimap) Projection() (Projection, bool) { return m.proj, m.ok }

// ViewportRect returns the camera rectangle for the current transform.
func (m *Minimap) ViewportRect() (Rect, bool) {
	if !m.ok || m.cw <= 0 || m.ch <= 0 {
		return Rect{}, false
	}
	return m.proj.ViewportRect(m.vc.Current(), m.cw, m.ch), true
}

// IsPointInViewport reports whether a minimap point hits the camera
// rectangle.
func (m *Minimap) IsPointInViewport(mx, my float64) bool {
	r, ok := m.ViewportRect()
	return ok && r.Contains(mx, my)
}

// PointerDown starts a drag when the pointer lands on the camera rectangle.
func (m *Minimap) PointerDown(mx, my float64) bool {
	if !m.IsPointInViewport(mx, my) {
		return false
	}
	m.vc.StopFling()
	m.dragging = true
	m.lastX, m.lastY = mx, my
	m.autoHide.hold()
	return true
}

// PointerMove pans the camera immediately while dragging.
func (m *Minimap) PointerMove(mx, my float64) {
	if !m.dragging || !m.ok {
		return
	}
	x, y := m.proj.DragBy(mx-m.lastX, my-m.lastY, m.vc.Current())
	m.vc.PanTo(x, y, true)
	m.lastX, m.lastY = mx, my
}

// PointerUp ends a drag.
func (m *Minimap) PointerUp() { m.dragging = false }

// Dragging reports whether a drag is in progress.
func (m *Minimap) Dragging() bool { return m.dragging }

// Click handles a click at minimap pixel (mx, my). A click on the camera
// rectangle is ignored. A second click within DoubleClickWindow centers the
// point at once and leaves a ping; a lone click is held until Flush.
func (m *Minimap) Click(mx, my float64, at time.Time) {
	if m.dragging || !m.ok || m.cw <= 0 || m.IsPointInViewport(mx, my) {
		return
	}
	if !m.lastClick.IsZero() && at.Sub(m.lastClick) < DoubleClickWindow {
		m.pending = false
		m.lastClick = time.Time{}
		m.centerOn(mx, my)
		m.pings = append(m.pings, Ping{X: mx, Y: my, Expires: at.Add(PingDuration)})
		return
	}
	m.lastClick = at
	m.pending = true
	m.pendingX, m.pendingY = mx, my
}

// Flush fires a held single click once the double-click window has passed.
// It also expires old pings. It reports whether a click fired.
func (m *Minimap) Flush(now time.Time) bool {
	live := m.pings[:0]
	for _, p := range m.pings {
		if now.Before(p.Expires) {
			live = append(live, p)
		}
	}
	m.pings = live

	if !m.pending || now.Sub(m.lastClick) < DoubleClickWindow {
		return false
	}
	m.pending = false
	m.centerOn(m.pendingX, m.pendingY)
	return true
}

// Pings returns the live double-click markers.
func (m *Minimap) Pings() []Ping { return m.pings }

func (m *Minimap) centerOn(mx, my float64) {
	x, y := m.proj.CenterOn(mx, my, m.vc.Current(), m.cw, m.ch)
	m.vc.PanTo(x, y, false)
}

// AutoHide returns the auto-hide state machine.
func (m *Minimap) AutoHide() *AutoHide { return &m.autoHide }
