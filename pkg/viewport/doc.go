// Package viewport implements the camera controller for the family tree
// canvas: smoothed pan and zoom, zoom-to-cursor and inertial fling.
//
// # Model
//
// A [Controller] owns two transforms. The target is the authoritative
// destination written by every operation; the current transform is what a
// renderer draws and is moved toward the target by [Controller.Step]. A
// transform maps world to screen as screen = world*Scale + (X, Y).
//
// Step is an explicit scheduler tick. Hosts call it from whatever frame loop
// they own (a terminal ticker, a game loop, a test with synthetic time):
//
//	c := viewport.New(viewport.Transform{Scale: 1})
//	c.ZoomAt(400, 300, 1.1)
//	for !c.Settled() {
//	    c.Step(16 * time.Millisecond)
//	}
//
// # Fling
//
// [Controller.StartFling] begins an inertial pan from a release velocity,
// typically sampled by a [VelocityTracker] over the last 100ms of a drag.
// Velocity decays exponentially and the fling ends below a stop speed. Any
// new manual drag must call [Controller.StopFling] first.
//
// With reduced motion enabled the current transform snaps to the target on
// every step and flings are ignored.
package viewport
