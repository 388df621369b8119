package formula

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Param describes one adjustable input of a model.
type Param struct {
	Key     string
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Clamp limits v to the parameter's range.
func (p Param) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	return math.Min(p.Max, math.Max(p.Min, v))
}

// Nudge moves v by steps increments and clamps the result.
func (p Param) Nudge(v float64, steps int) float64 {
	return p.Clamp(v + float64(steps)*p.Step)
}

// Values maps parameter keys to their current settings.
type Values map[string]float64

// Reading is one computed output.
type Reading struct {
	Name  string
	Unit  string
	Value float64

	// Scale is a nominal full-scale value used to draw gauges.
	Scale float64
}

// Format renders the reading with its unit.
func (r Reading) Format() string {
	switch {
	case math.IsInf(r.Value, 1):
		return "∞ " + r.Unit
	case r.Value != 0 && (math.Abs(r.Value) >= 1e6 || math.Abs(r.Value) < 1e-2):
		return fmt.Sprintf("%.3g %s", r.Value, r.Unit)
	default:
		return fmt.Sprintf("%.2f %s", r.Value, r.Unit)
	}
}

// Model ties a set of parameters to the formula that evaluates them.
type Model struct {
	ID     string
	Name   string
	Params []Param

	eval    func(Values) []Reading
	stepper func(Values) Stepper
}

// Param looks up a parameter by key.
func (m Model) Param(key string) (Param, bool) {
	i := slices.IndexFunc(m.Params, func(p Param) bool { return p.Key == key })
	if i < 0 {
		return Param{}, false
	}
	return m.Params[i], true
}

// Defaults returns every parameter at its default.
func (m Model) Defaults() Values {
	v := make(Values, len(m.Params))
	for _, p := range m.Params {
		v[p.Key] = p.Default
	}
	return v
}

// Apply returns defaults overlaid with overrides, clamped to range.
// Unknown keys are dropped.
func (m Model) Apply(overrides map[string]float64) Values {
	v := m.Defaults()
	for _, p := range m.Params {
		if o, ok := overrides[p.Key]; ok {
			v[p.Key] = p.Clamp(o)
		}
	}
	return v
}

// Evaluate computes the readings for v. Missing keys take defaults and
// every input is clamped to its range first.
func (m Model) Evaluate(v Values) []Reading {
	return m.eval(m.normalize(v))
}

// NewStepper starts a time-stepped simulation from v.
func (m Model) NewStepper(v Values) Stepper {
	return m.stepper(m.normalize(v))
}

func (m Model) normalize(v Values) Values {
	out := make(Values, len(m.Params))
	for _, p := range m.Params {
		x, ok := v[p.Key]
		if !ok {
			x = p.Default
		}
		out[p.Key] = p.Clamp(x)
	}
	return out
}

var models = map[string]Model{}

func register(m Model) {
	models[m.ID] = m
}

// Lookup returns the model registered under id.
func Lookup(id string) (Model, bool) {
	m, ok := models[id]
	return m, ok
}

// IDs lists registered model IDs in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(models))
	for id := range models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
