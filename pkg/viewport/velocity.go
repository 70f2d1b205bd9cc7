package viewport

import "time"

// DefaultVelocityWindow is how much drag history a VelocityTracker keeps.
const DefaultVelocityWindow = 100 * time.Millisecond

type sample struct {
	x, y float64
	at   time.Time
}

// VelocityTracker estimates release velocity from recent pointer samples.
// The zero value is ready to use with DefaultVelocityWindow.
type VelocityTracker struct {
	Window  time.Duration
	samples []sample
}

// Add records a pointer position at time at. Samples older than the window
// relative to at are dropped.
func (v *VelocityTracker) Add(x, y float64, at time.Time) {
	v.samples = append(v.samples, sample{x: x, y: y, at: at})
	cutoff := at.Add(-v.window())
	i := 0
	for i < len(v.samples)-1 && v.samples[i].at.Before(cutoff) {
		i++
	}
	v.samples = v.samples[i:]
}

// Velocity returns displacement over time across the window, in units per
// second. Fewer than two samples, or samples with no elapsed time, yield
// zero.
func (v *VelocityTracker) Velocity() (vx, vy float64) {
	if len(v.samples) < 2 {
		return 0, 0
	}
	first, last := v.samples[0], v.samples[len(v.samples)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return (last.x - first.x) / dt, (last.y - first.y) / dt
}

// Reset forgets all samples.
func (v *VelocityTracker) Reset() { v.samples = v.samples[:0] }

func (v *VelocityTracker) window() time.Duration {
	if v.Window > 0 {
		return v.Window
	}
	return DefaultVelocityWindow
}
