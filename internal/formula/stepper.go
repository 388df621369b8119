package formula

import (
	"math"
	"time"
)

// TickInterval is the animation step used by play-phase simulations.
const TickInterval = 50 * time.Millisecond

// Stepper advances a simulation in fixed time steps.
type Stepper interface {
	// Step advances the simulation by dt.
	Step(dt time.Duration)

	// Readings reports the current simulated quantities.
	Readings() []Reading

	// Progress is a 0..1 position used to animate the visualization.
	Progress() float64

	// Done reports whether the simulation has reached its end state.
	Done() bool
}

// fall integrates a body dropped from rest under gravity and quadratic drag.
type fall struct {
	mass, rho, cd, area float64
	height              float64

	t, y, v float64
}

const dropHeight = 1000.0

func newFall(v Values) Stepper {
	return &fall{
		mass:   v["mass"],
		rho:    v["rho"],
		cd:     v["cd"],
		area:   v["area"],
		height: dropHeight,
	}
}

func (f *fall) Step(dt time.Duration) {
	if f.Done() {
		return
	}
	h := dt.Seconds()
	drag := DragForce(f.rho, f.v, f.cd, f.area)
	a := Gravity
	if f.mass > 0 {
		a -= drag / f.mass
	}
	f.v = math.Max(0, f.v+a*h)
	f.y = math.Min(f.height, f.y+f.v*h)
	f.t += h
}

func (f *fall) Readings() []Reading {
	vt := TerminalVelocity(f.mass, Gravity, f.rho, f.cd, f.area)
	return []Reading{
		{Name: "Time", Unit: "s", Value: f.t, Scale: 60},
		{Name: "Speed", Unit: "m/s", Value: f.v, Scale: math.Max(vt, 1)},
		{Name: "Drag", Unit: "N", Value: DragForce(f.rho, f.v, f.cd, f.area), Scale: f.mass * Gravity},
		{Name: "Fallen", Unit: "m", Value: f.y, Scale: f.height},
	}
}

func (f *fall) Progress() float64 { return f.y / f.height }
func (f *fall) Done() bool        { return f.y >= f.height || f.t >= 600 }

// sweep walks a shield through increasing frequency on a log scale.
type sweep struct {
	sigmaR, muR, thickness float64
	lo, hi                 float64
	elapsed, duration      float64
}

func newSweep(v Values) Stepper {
	return &sweep{
		sigmaR:    v["sigma"],
		muR:       v["mu"],
		thickness: v["thickness"] / 1000,
		lo:        math.Log10(v["freq"] * 1e6),
		hi:        math.Log10(1e9),
		duration:  4,
	}
}

func (s *sweep) hz() float64 {
	frac := math.Min(1, s.elapsed/s.duration)
	return math.Pow(10, s.lo+(s.hi-s.lo)*frac)
}

func (s *sweep) Step(dt time.Duration) {
	if !s.Done() {
		s.elapsed += dt.Seconds()
	}
}

func (s *sweep) Readings() []Reading {
	return emiReadings(s.sigmaR, s.muR, s.thickness, s.hz())
}

func (s *sweep) Progress() float64 { return math.Min(1, s.elapsed/s.duration) }
func (s *sweep) Done() bool        { return s.elapsed >= s.duration || s.hi <= s.lo }

// ramp doubles cumulative production at a fixed cadence until the target
// volume is reached.
type ramp struct {
	firstUnit, rate, target float64
	units                   float64
}

func newRamp(v Values) Stepper {
	return &ramp{
		firstUnit: v["first"],
		rate:      v["rate"] / 100,
		target:    v["units"],
		units:     1,
	}
}

// Each second of simulated time doubles output.
func (r *ramp) Step(dt time.Duration) {
	if r.Done() {
		return
	}
	r.units = math.Min(r.target, r.units*math.Pow(2, dt.Seconds()))
}

func (r *ramp) Readings() []Reading {
	return wrightReadings(r.firstUnit, r.units, r.rate)
}

func (r *ramp) Progress() float64 {
	if r.target <= 1 {
		return 1
	}
	return math.Log(r.units) / math.Log(r.target)
}

func (r *ramp) Done() bool { return r.units >= r.target }

// load ramps applied stress on a plate with a hole until the peak stress
// at the hole edge reaches the material strength.
type load struct {
	a, b, strength, rate float64
	stress               float64
}

func newLoad(v Values) Stepper {
	return &load{
		a:        v["a"],
		b:        v["b"],
		strength: v["strength"],
		rate:     v["stress"],
	}
}

// Applied stress rises by the configured stress value every second.
func (l *load) Step(dt time.Duration) {
	if l.Done() {
		return
	}
	l.stress += l.rate * dt.Seconds()
}

func (l *load) Readings() []Reading {
	return fractureReadings(l.a, l.b, l.stress, l.strength)
}

func (l *load) Progress() float64 {
	peak := l.stress * StressConcentration(l.a, l.b)
	if l.strength <= 0 {
		return 1
	}
	return math.Min(1, peak/l.strength)
}

func (l *load) Done() bool { return l.Progress() >= 1 }
