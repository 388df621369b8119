package formula

import "math"

// Model IDs referenced from lesson files.
const (
	ModelDrag     = "drag"
	ModelEMI      = "emi"
	ModelWright   = "wright"
	ModelFracture = "fracture"
)

func init() {
	register(Model{
		ID:   ModelDrag,
		Name: "Aerodynamic drag",
		Params: []Param{
			{Key: "velocity", Name: "Speed", Unit: "m/s", Min: 0, Max: 80, Step: 2, Default: 20},
			{Key: "rho", Name: "Air density", Unit: "kg/m³", Min: 0.1, Max: 2, Step: 0.05, Default: 1.225},
			{Key: "cd", Name: "Drag coefficient", Unit: "", Min: 0.05, Max: 2, Step: 0.05, Default: 1.0},
			{Key: "area", Name: "Frontal area", Unit: "m²", Min: 0.05, Max: 30, Step: 0.05, Default: 0.7},
			{Key: "mass", Name: "Mass", Unit: "kg", Min: 1, Max: 200, Step: 1, Default: 80},
		},
		eval: func(v Values) []Reading {
			f := DragForce(v["rho"], v["velocity"], v["cd"], v["area"])
			weight := v["mass"] * Gravity
			return []Reading{
				{Name: "Drag force", Unit: "N", Value: f, Scale: weight},
				{Name: "Drag power", Unit: "W", Value: f * v["velocity"], Scale: weight * 50},
				{Name: "Terminal speed", Unit: "m/s", Value: TerminalVelocity(v["mass"], Gravity, v["rho"], v["cd"], v["area"]), Scale: 100},
			}
		},
		stepper: newFall,
	})

	register(Model{
		ID:   ModelEMI,
		Name: "EMI shielding",
		Params: []Param{
			{Key: "freq", Name: "Frequency", Unit: "MHz", Min: 0.01, Max: 1000, Step: 10, Default: 100},
			{Key: "thickness", Name: "Thickness", Unit: "mm", Min: 0.001, Max: 5, Step: 0.05, Default: 0.1},
			{Key: "sigma", Name: "Conductivity (Cu = 1)", Unit: "", Min: 0.01, Max: 1.1, Step: 0.05, Default: 1.0},
			{Key: "mu", Name: "Permeability", Unit: "μr", Min: 1, Max: 5000, Step: 50, Default: 1},
		},
		eval: func(v Values) []Reading {
			return emiReadings(v["sigma"], v["mu"], v["thickness"]/1000, v["freq"]*1e6)
		},
		stepper: newSweep,
	})

	register(Model{
		ID:   ModelWright,
		Name: "Wright's law",
		Params: []Param{
			{Key: "first", Name: "First unit cost", Unit: "$", Min: 100, Max: 1e6, Step: 1000, Default: 10000},
			{Key: "rate", Name: "Learning rate", Unit: "%", Min: 50, Max: 99, Step: 1, Default: 80},
			{Key: "units", Name: "Units built", Unit: "", Min: 1, Max: 1e6, Step: 100, Default: 1000},
		},
		eval: func(v Values) []Reading {
			return wrightReadings(v["first"], v["units"], v["rate"]/100)
		},
		stepper: newRamp,
	})

	register(Model{
		ID:   ModelFracture,
		Name: "Stress concentration",
		Params: []Param{
			{Key: "a", Name: "Hole width (a)", Unit: "mm", Min: 0.1, Max: 20, Step: 0.5, Default: 5},
			{Key: "b", Name: "Hole height (b)", Unit: "mm", Min: 0.1, Max: 20, Step: 0.5, Default: 5},
			{Key: "stress", Name: "Applied stress", Unit: "MPa", Min: 1, Max: 500, Step: 5, Default: 50},
			{Key: "strength", Name: "Material strength", Unit: "MPa", Min: 50, Max: 1500, Step: 25, Default: 400},
		},
		eval: func(v Values) []Reading {
			return fractureReadings(v["a"], v["b"], v["stress"], v["strength"])
		},
		stepper: newLoad,
	})
}

func emiReadings(sigmaR, muR, thickness, hz float64) []Reading {
	delta := SkinDepth(sigmaR, muR, hz)
	a := AbsorptionLoss(thickness, delta)
	r := ReflectionLoss(sigmaR, muR, hz)
	se := ShieldingEffectiveness(a, r)
	return []Reading{
		{Name: "Frequency", Unit: "MHz", Value: hz / 1e6, Scale: 1000},
		{Name: "Skin depth", Unit: "μm", Value: delta * 1e6, Scale: 100},
		{Name: "Absorption", Unit: "dB", Value: a, Scale: 200},
		{Name: "Reflection", Unit: "dB", Value: r, Scale: 200},
		{Name: "Shielding", Unit: "dB", Value: se, Scale: 200},
		{Name: "Leaks through", Unit: "%", Value: 100 * Attenuation(se), Scale: 100},
	}
}

func wrightReadings(firstUnit, units, rate float64) []Reading {
	unit := WrightCost(firstUnit, units, rate)
	total := WrightCumulative(firstUnit, units, rate)
	avg := 0.0
	if units >= 1 {
		avg = total / units
	}
	return []Reading{
		{Name: "Units built", Unit: "", Value: units, Scale: math.Max(units, 1)},
		{Name: "Cost of next unit", Unit: "$", Value: unit, Scale: firstUnit},
		{Name: "Average cost", Unit: "$", Value: avg, Scale: firstUnit},
		{Name: "Total spend", Unit: "$", Value: total, Scale: math.Max(total, firstUnit)},
	}
}

func fractureReadings(a, b, stress, strength float64) []Reading {
	kt := StressConcentration(a, b)
	peak := stress * kt
	margin := math.Inf(1)
	if peak > 0 {
		margin = strength / peak
	}
	return []Reading{
		{Name: "Kt", Unit: "", Value: kt, Scale: 10},
		{Name: "Applied stress", Unit: "MPa", Value: stress, Scale: strength},
		{Name: "Peak stress", Unit: "MPa", Value: peak, Scale: strength},
		{Name: "Safety factor", Unit: "", Value: margin, Scale: 5},
	}
}
