// Package formula evaluates the closed-form physics and economics models
// that drive each lesson's play phase. Every function is pure; physical
// quantities that cannot be negative are clamped at zero.
package formula

import "math"

// Gravity is standard gravitational acceleration in m/s².
const Gravity = 9.81

// nonNeg clamps NaN and negative values to zero.
func nonNeg(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	return x
}

// DragForce returns F = ½ρv²CdA in newtons.
func DragForce(rho, v, cd, area float64) float64 {
	return nonNeg(0.5 * nonNeg(rho) * v * v * nonNeg(cd) * nonNeg(area))
}

// TerminalVelocity returns the speed at which drag balances weight,
// v = sqrt(2mg / (ρCdA)). Zero drag yields +Inf.
func TerminalVelocity(mass, g, rho, cd, area float64) float64 {
	k := nonNeg(rho) * nonNeg(cd) * nonNeg(area)
	if k == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(nonNeg(2 * mass * g / k))
}

// SkinDepth returns the electromagnetic skin depth in metres for a
// conductor with relative conductivity sigmaR (copper = 1) and relative
// permeability muR at frequency hz.
func SkinDepth(sigmaR, muR, hz float64) float64 {
	const (
		sigmaCopper = 5.8e7
		mu0         = 4 * math.Pi * 1e-7
	)
	d := math.Pi * nonNeg(hz) * nonNeg(muR) * mu0 * nonNeg(sigmaR) * sigmaCopper
	if d == 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(d)
}

// AbsorptionLoss returns A = 8.686·t/δ in dB for thickness and skin depth
// in metres.
func AbsorptionLoss(thickness, skinDepth float64) float64 {
	if math.IsInf(skinDepth, 1) || skinDepth <= 0 {
		return 0
	}
	return nonNeg(8.686 * thickness / skinDepth)
}

// ReflectionLoss returns the far-field reflection loss in dB,
// R = 168 − 10·log10(μr·f / σr).
func ReflectionLoss(sigmaR, muR, hz float64) float64 {
	if sigmaR <= 0 || muR <= 0 || hz <= 0 {
		return 0
	}
	return nonNeg(168 - 10*math.Log10(muR*hz/sigmaR))
}

// ShieldingEffectiveness sums absorption and reflection losses in dB.
func ShieldingEffectiveness(absorption, reflection float64) float64 {
	return nonNeg(absorption) + nonNeg(reflection)
}

// Attenuation converts a dB loss into the fraction of field strength that
// gets through.
func Attenuation(db float64) float64 {
	return math.Pow(10, -nonNeg(db)/20)
}

// WrightCost returns the cost of the nth unit under Wright's law,
// C(n) = C1 · n^log2(LR), where LR is the learning rate per doubling.
func WrightCost(firstUnit, n, learningRate float64) float64 {
	if n < 1 {
		n = 1
	}
	if learningRate <= 0 {
		return 0
	}
	return nonNeg(firstUnit * math.Pow(n, math.Log2(learningRate)))
}

// WrightCumulative approximates the total cost of the first n units by
// integrating the Wright curve.
func WrightCumulative(firstUnit, n, learningRate float64) float64 {
	if n < 1 || learningRate <= 0 {
		return 0
	}
	b := math.Log2(learningRate)
	if b == -1 {
		return nonNeg(firstUnit * (1 + math.Log(n)))
	}
	return nonNeg(firstUnit * (1 + (math.Pow(n, b+1)-1)/(b+1)))
}

// StressConcentration returns Kt = 1 + 2a/b for an elliptical hole with
// semi-axis a perpendicular to the load and b parallel to it.
func StressConcentration(a, b float64) float64 {
	if b <= 0 {
		return math.Inf(1)
	}
	return 1 + 2*nonNeg(a)/b
}

// GriffithStress returns the fracture stress σf = sqrt(2Eγ / (πa)) in Pa
// for Young's modulus E (Pa), surface energy γ (J/m²) and crack
// half-length a (m).
func GriffithStress(e, gamma, a float64) float64 {
	if a <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(nonNeg(2 * e * gamma / (math.Pi * a)))
}
