package viewport

import (
	"math"
	"testing"
	"time"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
)

const frame = time.Second / 60

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestZoomAtInverse(t *testing.T) {
	c := New(Transform{X: 12, Y: -30, Scale: 1})
	start := c.Target()

	c.ZoomAt(100, 100, 1.1)
	c.ZoomAt(100, 100, 1/1.1)

	got := c.Target()
	if !near(got.Scale, start.Scale, 1e-9) || !near(got.X, start.X, 1e-9) || !near(got.Y, start.Y, 1e-9) {
		t.Errorf("Target() = %+v, want %+v", got, start)
	}
}

func TestZoomAtKeepsPointerFixed(t *testing.T) {
	c := New(Transform{X: 50, Y: 20, Scale: 1})
	before := c.Target()
	wx, wy := before.ToWorld(300, 200)

	c.ZoomAt(300, 200, 1.5)

	sx, sy := c.Target().ToScreen(wx, wy)
	if !near(sx, 300, 1e-9) || !near(sy, 200, 1e-9) {
		t.Errorf("pointer world point moved to (%v,%v)", sx, sy)
	}
}

func TestScaleClamp(t *testing.T) {
	tests := []struct {
		name   string
		action func(c *Controller)
		want   float64
	}{
		{"zoom in past max", func(c *Controller) { c.ZoomAt(0, 0, 10) }, MaxScale},
		{"zoom out past min", func(c *Controller) { c.ZoomAt(0, 0, 0.01) }, MinScale},
		{"set scale high", func(c *Controller) { c.SetScale(5) }, MaxScale},
		{"set scale low", func(c *Controller) { c.SetScale(0) }, MinScale},
		{"set scale in range", func(c *Controller) { c.SetScale(1.25) }, 1.25},
		{"set transform", func(c *Controller) { c.SetTransform(Transform{Scale: 9}, true) }, MaxScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Transform{Scale: 1})
			tt.action(c)
			if got := c.Target().Scale; got != tt.want {
				t.Errorf("Target().Scale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetScalePreservesOffset(t *testing.T) {
	c := New(Transform{X: 10, Y: 20, Scale: 1})
	c.SetScale(1.5)
	if got := c.Target(); got.X != 10 || got.Y != 20 {
		t.Errorf("offset changed: %+v", got)
	}
}

func TestSmoothingStep(t *testing.T) {
	c := New(Transform{Scale: 1})
	c.PanTo(100, 0, false)

	c.Step(frame)
	if got := c.Current().X; !near(got, 18, 1e-5) {
		t.Errorf("after one frame X = %v, want 18", got)
	}
	for range 200 {
		c.Step(frame)
	}
	if !c.Settled() || c.Current() != c.Target() {
		t.Errorf("not settled: current %+v target %+v", c.Current(), c.Target())
	}
}

func TestImmediatePan(t *testing.T) {
	c := New(Transform{Scale: 1})
	c.PanBy(30, -40, true)
	if got := c.Current(); got.X != 30 || got.Y != -40 {
		t.Errorf("Current() = %+v, want immediate move", got)
	}
	c.PanTo(5, 5, true)
	if c.Current() != c.Target() {
		t.Error("PanTo immediate did not snap")
	}
}

func TestReducedMotion(t *testing.T) {
	c := New(Transform{Scale: 1}, WithReducedMotion(true))
	c.PanTo(100, 50, false)
	c.Step(frame)
	if got := c.Current(); got.X != 100 || got.Y != 50 {
		t.Errorf("Current() = %+v, want snapped target", got)
	}
	if c.StartFling(1000, 0) {
		t.Error("StartFling() started under reduced motion")
	}
}

func TestFling(t *testing.T) {
	t.Run("below minimum ignored", func(t *testing.T) {
		c := New(Transform{Scale: 1})
		if c.StartFling(30, 30) {
			t.Error("StartFling() started below minimum speed")
		}
	})

	t.Run("clamped to max", func(t *testing.T) {
		c := New(Transform{Scale: 1})
		if !c.StartFling(6000, 8000) {
			t.Fatal("StartFling() = false")
		}
		vx, vy := c.Velocity()
		if !near(math.Hypot(vx, vy), FlingMaxSpeed, 1e-9) || !near(vx/vy, 0.75, 1e-9) {
			t.Errorf("Velocity() = (%v,%v)", vx, vy)
		}
	})

	t.Run("second fling ignored", func(t *testing.T) {
		c := New(Transform{Scale: 1})
		c.StartFling(500, 0)
		if c.StartFling(0, 900) {
			t.Error("StartFling() replaced an active fling")
		}
	})

	t.Run("decays and stops", func(t *testing.T) {
		c := New(Transform{Scale: 1})
		c.StartFling(1000, 0)
		c.Step(frame)
		if got := c.Current().X; !near(got, 1000.0/60, 1e-5) {
			t.Errorf("first frame X = %v, want %v", got, 1000.0/60)
		}
		if c.Current().X != c.Target().X {
			t.Error("fling must move target and current together")
		}
		vx, _ := c.Velocity()
		if want := 1000 * math.Pow(FlingDamping, 1.0/60); !near(vx, want, 1e-5) {
			t.Errorf("velocity after one frame = %v, want %v", vx, want)
		}

		for i := 0; i < 600 && c.Flinging(); i++ {
			c.Step(frame)
		}
		if c.Flinging() {
			t.Fatal("fling never stopped")
		}
		// Travel is bounded by the geometric series of per-frame moves.
		d := math.Pow(FlingDamping, 1.0/60)
		limit := 1000 * (1.0 / 60) / (1 - d)
		if x := c.Current().X; x <= 0 || x > limit+1e-3 {
			t.Errorf("travel = %v, want in (0, %v]", x, limit)
		}
	})

	t.Run("stop cancels", func(t *testing.T) {
		c := New(Transform{Scale: 1})
		c.StartFling(1000, 0)
		c.StopFling()
		c.Step(frame)
		if c.Flinging() || c.Current().X != 0 {
			t.Errorf("fling continued after StopFling: %+v", c.Current())
		}
	})
}

func TestFocus(t *testing.T) {
	c := New(Transform{Scale: 2})
	c.StartFling(1000, 0)

	p := layout.Position{X: 100, Y: 200, CenterX: 140, CenterY: 248}
	c.FocusPerson(p, 800, 600, FocusSelection)
	if c.Flinging() {
		t.Error("Focus did not stop the fling")
	}
	sx, sy := c.Target().ToScreen(p.CenterX, p.CenterY)
	if !near(sx, 400, 1e-9) || !near(sy, 200, 1e-9) {
		t.Errorf("selection focus lands at (%v,%v), want (400,200)", sx, sy)
	}
	if c.Current() == c.Target() {
		t.Error("Focus must ease, not snap")
	}

	c.FocusPerson(p, 800, 600, FocusSearch)
	sx, sy = c.Target().ToScreen(p.CenterX, p.CenterY)
	if !near(sx, 400, 1e-9) || !near(sy, 300, 1e-9) {
		t.Errorf("search focus lands at (%v,%v), want (400,300)", sx, sy)
	}
}

func TestFitTo(t *testing.T) {
	c := New(Transform{Scale: 1})
	b := layout.Bounds{MinX: 0, MaxX: 1000, MinY: 0, MaxY: 500}
	c.FitTo(b, 600, 400, 50, true)

	got := c.Current()
	if !near(got.Scale, 0.5, 1e-9) {
		t.Errorf("Scale = %v, want 0.5", got.Scale)
	}
	cx, cy := got.ToScreen(500, 250)
	if !near(cx, 300, 1e-9) || !near(cy, 200, 1e-9) {
		t.Errorf("bbox center at (%v,%v), want (300,200)", cx, cy)
	}

	c.FitTo(layout.Bounds{MaxX: 10, MaxY: 10}, 600, 400, 0, true)
	if got := c.Current().Scale; got != MaxScale {
		t.Errorf("tiny bbox Scale = %v, want clamp %v", got, MaxScale)
	}
}

func TestVelocityTracker(t *testing.T) {
	var v VelocityTracker
	t0 := time.Unix(0, 0)

	if vx, vy := v.Velocity(); vx != 0 || vy != 0 {
		t.Errorf("empty Velocity() = (%v,%v)", vx, vy)
	}

	v.Add(0, 0, t0)
	v.Add(1000, 0, t0.Add(500*time.Millisecond))
	v.Add(1010, 5, t0.Add(550*time.Millisecond))
	v.Add(1030, 15, t0.Add(600*time.Millisecond))

	vx, vy := v.Velocity()
	// The first sample falls outside the 100ms window.
	if !near(vx, 300, 1e-6) || !near(vy, 150, 1e-6) {
		t.Errorf("Velocity() = (%v,%v), want (300,150)", vx, vy)
	}

	v.Reset()
	if vx, _ := v.Velocity(); vx != 0 {
		t.Error("Reset() kept samples")
	}
}
