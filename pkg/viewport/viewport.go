package viewport

import (
	"math"
	"sync"
	"time"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
)

// Defaults.
const (
	DefaultSmoothing = 0.18
	MinScale         = 0.3
	MaxScale         = 2.0

	// FrameRate is the rate at which the smoothing fraction applies exactly.
	FrameRate = 60.0

	snapOffset = 0.1
	snapScale  = 0.001
)

// Fling tuning in screen pixels per second.
const (
	FlingMinSpeed = 50.0
	FlingMaxSpeed = 3000.0
	FlingStop     = 10.0
	// FlingDamping is the fraction of velocity kept after one second.
	FlingDamping = 0.1
)

// Transform maps world coordinates to screen coordinates.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// ToScreen maps a world point to the screen.
func (t Transform) ToScreen(wx, wy float64) (float64, float64) {
	return wx*t.Scale + t.X, wy*t.Scale + t.Y
}

// ToWorld maps a screen point to the world.
func (t Transform) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.Scale, (sy - t.Y) / t.Scale
}

// Anchor is a fractional screen position a focused person is moved to.
type Anchor struct{ FX, FY float64 }

var (
	// FocusSearch centers a search hit on screen.
	FocusSearch = Anchor{FX: 0.5, FY: 0.5}
	// FocusSelection places a selected person in the upper third.
	FocusSelection = Anchor{FX: 0.5, FY: 1.0 / 3}
)

// Controller is the camera state machine. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	target  Transform
	current Transform

	smoothing     float64
	reducedMotion bool
	minScale      float64
	maxScale      float64

	flinging bool
	vx, vy   float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithReducedMotion disables smoothing and flings.
func WithReducedMotion(on bool) Option { return func(c *Controller) { c.reducedMotion = on } }

// WithSmoothing sets the fraction of the remaining distance covered per
// frame at FrameRate. Values outside (0,1] are ignored.
func WithSmoothing(f float64) Option {
	return func(c *Controller) {
		if f > 0 && f <= 1 {
			c.smoothing = f
		}
	}
}

// WithScaleLimits sets the zoom clamp.
func WithScaleLimits(lo, hi float64) Option {
	return func(c *Controller) {
		if lo > 0 && hi >= lo {
			c.minScale, c.maxScale = lo, hi
		}
	}
}

// New returns a controller at rest on initial. A zero scale becomes 1.
func New(initial Transform, opts ...Option) *Controller {
	if initial.Scale <= 0 {
		initial.Scale = 1
	}
	c := &Controller{
		smoothing: DefaultSmoothing,
		minScale:  MinScale,
		maxScale:  MaxScale,
	}
	for _, opt := range opts {
		opt(c)
	}
	initial.Scale = c.clamp(initial.Scale)
	c.target, c.current = initial, initial
	return c
}

func (c *Controller) clamp(s float64) float64 {
	return math.Min(math.Max(s, c.minScale), c.maxScale)
}

// Current returns the transform to render.
func (c *Controller) Current() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Target returns the destination transform.
func (c *Controller) Target() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Flinging reports whether an inertial pan is active.
func (c *Controller) Flinging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flinging
}

// ReducedMotion reports whether smoothing and flings are disabled.
func (c *Controller) ReducedMotion() bool { return c.reducedMotion }

// Settled reports whether the current transform has reached the target and
// no fling is active.
func (c *Controller) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.flinging && c.current == c.target
}

func (c *Controller) setTarget(t Transform, immediate bool) {
	c.target = t
	if immediate {
		c.current = t
	}
}

// PanTo moves the target offset to (x, y). Immediate also snaps the current
// transform, for gestures like minimap drags.
func (c *Controller) PanTo(x, y float64, immediate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.target
	t.X, t.Y = x, y
	c.setTarget(t, immediate)
}

// PanBy moves the target offset by (dx, dy).
func (c *Controller) PanBy(dx, dy float64, immediate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.target
	t.X += dx
	t.Y += dy
	c.setTarget(t, immediate)
}

// ZoomAt multiplies the target scale by factor, clamped, keeping the world
// point under the pointer fixed on screen.
func (c *Controller) ZoomAt(px, py, factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.target
	scale := c.clamp(prev.Scale * factor)
	wx, wy := prev.ToWorld(px, py)
	c.target = Transform{
		X:     px - wx*scale,
		Y:     py - wy*scale,
		Scale: scale,
	}
}

// SetScale sets the target scale, clamped, preserving the offset.
func (c *Controller) SetScale(s float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target.Scale = c.clamp(s)
}

// SetTransform replaces the target. The scale is clamped.
func (c *Controller) SetTransform(t Transform, immediate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Scale = c.clamp(t.Scale)
	c.setTarget(t, immediate)
}

// StartFling begins an inertial pan at (vx, vy) screen pixels per second.
// It returns false without effect under reduced motion, while another fling
// is active, or when the speed is below FlingMinSpeed. Faster releases are
// clamped to FlingMaxSpeed.
func (c *Controller) StartFling(vx, vy float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reducedMotion || c.flinging {
		return false
	}
	speed := math.Hypot(vx, vy)
	if speed < FlingMinSpeed {
		return false
	}
	if speed > FlingMaxSpeed {
		vx, vy = vx/speed*FlingMaxSpeed, vy/speed*FlingMaxSpeed
	}
	c.vx, c.vy = vx, vy
	c.flinging = true
	return true
}

// StopFling cancels any inertial pan immediately.
func (c *Controller) StopFling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopFling()
}

func (c *Controller) stopFling() {
	c.flinging = false
	c.vx, c.vy = 0, 0
}

// Velocity returns the fling velocity.
func (c *Controller) Velocity() (vx, vy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vx, c.vy
}

// Step advances the fling and the smoothing by dt.
func (c *Controller) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	secs := dt.Seconds()

	if c.flinging {
		if math.Hypot(c.vx, c.vy) < FlingStop {
			c.stopFling()
		} else {
			dx, dy := c.vx*secs, c.vy*secs
			c.target.X += dx
			c.target.Y += dy
			c.current.X += dx
			c.current.Y += dy
			damp := math.Pow(FlingDamping, secs)
			c.vx *= damp
			c.vy *= damp
		}
	}

	dx := c.target.X - c.current.X
	dy := c.target.Y - c.current.Y
	ds := c.target.Scale - c.current.Scale
	if c.reducedMotion || (math.Abs(dx) < snapOffset && math.Abs(dy) < snapOffset && math.Abs(ds) < snapScale) {
		c.current = c.target
		return
	}
	f := 1 - math.Pow(1-c.smoothing, secs*FrameRate)
	c.current.X += dx * f
	c.current.Y += dy * f
	c.current.Scale += ds * f
}

// Focus stops any fling and eases the camera so the world point (wx, wy)
// lands on anchor within a w×h screen.
func (c *Controller) Focus(wx, wy, w, h float64, anchor Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopFling()
	t := c.target
	t.X = w*anchor.FX - wx*t.Scale
	t.Y = h*anchor.FY - wy*t.Scale
	c.setTarget(t, false)
}

// FocusPerson focuses the center of a placed person.
func (c *Controller) FocusPerson(p layout.Position, w, h float64, anchor Anchor) {
	c.Focus(p.CenterX, p.CenterY, w, h, anchor)
}

// FitTo sets the target so b fits a w×h screen with padding on every side,
// centered. An empty box keeps the current scale and centers its origin.
func (c *Controller) FitTo(b layout.Bounds, w, h, padding float64, immediate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	scale := c.target.Scale
	if bw, bh := b.Width(), b.Height(); bw > 0 && bh > 0 {
		aw := math.Max(w-2*padding, 1)
		ah := math.Max(h-2*padding, 1)
		scale = c.clamp(math.Min(aw/bw, ah/bh))
	}
	cx := (b.MinX + b.MaxX) / 2
	cy := (b.MinY + b.MaxY) / 2
	c.stopFling()
	c.setTarget(Transform{X: w/2 - cx*scale, Y: h/2 - cy*scale, Scale: scale}, immediate)
}
