package model

import (
	"math"
	"time"
)

// Wave is a sine curve: Offset + Peak*sin(2πt/Cycle)
type Wave struct {
	Offset float64
	Peak   float64
	Cycle  time.Duration
}

// At evaluates the wave at t
func (w Wave) At(t time.Duration) float64 {
	if w.Cycle <= 0 {
		return w.Offset
	}
	phase := 2 * math.Pi * t.Seconds() / w.Cycle.Seconds()
	return w.Offset + w.Peak*math.Sin(phase)
}

var (
	// breathWave drives the breathing parameter between 0 and 1
	breathWave = Wave{Offset: 0.5, Peak: 0.5, Cycle: 3234500 * time.Microsecond}
	// swayWave tilts the body in degrees while a motion plays
	swayWave = Wave{Offset: 0, Peak: 1.5, Cycle: 6534500 * time.Microsecond}
)

const (
	breathStretch = 0.012
	defaultFadeIn = 500 * time.Millisecond
)

// Pose is the transform applied to the model for one frame
type Pose struct {
	Breath float64
	ScaleY float64
	// Angle is a clockwise tilt in degrees around the bottom centre
	Angle float64
}

// Animator advances breathing and motion state over time
type Animator struct {
	elapsed    time.Duration
	autoBreath bool

	motion      string
	index       int
	priority    int
	motionStart time.Duration
	fadeIn      time.Duration
}

// SetAutoBreath toggles the breathing curve
func (a *Animator) SetAutoBreath(enabled bool) {
	a.autoBreath = enabled
}

// AutoBreath reports whether breathing is on
func (a *Animator) AutoBreath() bool {
	return a.autoBreath
}

// Start begins a motion unless one of higher priority is playing. It reports
// whether the motion was accepted.
func (a *Animator) Start(group string, index, priority int, fadeIn time.Duration) bool {
	if a.motion != "" && priority < a.priority {
		return false
	}
	if fadeIn <= 0 {
		fadeIn = defaultFadeIn
	}
	a.motion = group
	a.index = index
	a.priority = priority
	a.motionStart = a.elapsed
	a.fadeIn = fadeIn
	return true
}

// Stop ends the current motion
func (a *Animator) Stop() {
	a.motion = ""
	a.index = 0
	a.priority = PriorityNone
}

// Motion returns the playing motion group and index
func (a *Animator) Motion() (string, int) {
	return a.motion, a.index
}

// Elapsed returns the animation clock
func (a *Animator) Elapsed() time.Duration {
	return a.elapsed
}

// Advance moves the clock forward and returns the new pose
func (a *Animator) Advance(dt time.Duration) Pose {
	if dt > 0 {
		a.elapsed += dt
	}
	return a.Pose()
}

// Pose returns the pose at the current clock
func (a *Animator) Pose() Pose {
	p := Pose{ScaleY: 1}
	if a.autoBreath {
		p.Breath = breathWave.At(a.elapsed)
		p.ScaleY = 1 + breathStretch*p.Breath
	}
	if a.motion != "" {
		weight := 1.0
		if since := a.elapsed - a.motionStart; since < a.fadeIn {
			weight = since.Seconds() / a.fadeIn.Seconds()
		}
		p.Angle = swayWave.At(a.elapsed-a.motionStart) * weight
	}
	return p
}

// fitRect centres a w×h image in the viewport, scaled to fill heightFraction
// of its height, but never wider than the viewport. Returned values are the
// top-left corner and size in window pixels.
func fitRect(imgW, imgH, viewW, viewH int, heightFraction float64) (x, y, w, h float64) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, 0, 0
	}
	scale := float64(viewH) * heightFraction / float64(imgH)
	if float64(imgW)*scale > float64(viewW) {
		scale = float64(viewW) / float64(imgW)
	}
	w = float64(imgW) * scale
	h = float64(imgH) * scale
	x = (float64(viewW) - w) / 2
	y = (float64(viewH) - h) / 2
	return x, y, w, h
}

// quadCorners applies pose to the rectangle, pivoting on its bottom centre.
// Corners are ordered top-left, top-right, bottom-right, bottom-left.
func quadCorners(x, y, w, h float64, pose Pose) [4][2]float64 {
	pivotX := x + w/2
	pivotY := y + h

	local := [4][2]float64{
		{-w / 2, -h * pose.ScaleY},
		{w / 2, -h * pose.ScaleY},
		{w / 2, 0},
		{-w / 2, 0},
	}

	rad := pose.Angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	var out [4][2]float64
	for i, p := range local {
		out[i] = [2]float64{
			pivotX + p[0]*cos - p[1]*sin,
			pivotY + p[0]*sin + p[1]*cos,
		}
	}
	return out
}
