package trend

import (
	"math"
)

// twoSidedTPValue returns the two-sided p-value of a t-statistic under
// Student's t distribution with dof degrees of freedom, via the
// identity P(|T| > t) = I_{dof/(dof+t^2)}(dof/2, 1/2) with I the
// regularized incomplete beta function.
func twoSidedTPValue(t float64, dof int) float64 {
	if dof <= 0 {
		return math.NaN()
	}
	v := float64(dof)
	x := v / (v + t*t)
	return regularizedIncompleteBeta(v/2, 0.5, x)
}

// regularizedIncompleteBeta computes I_x(a, b) using the continued
// fraction expansion, with the symmetry transform applied when x is
// past the central region so the fraction converges quickly.
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// Prefactor x^a (1-x)^b / (a B(a,b)), computed in log space.
	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	front := math.Exp(lgAB - lgA - lgB + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF evaluates the incomplete beta continued fraction by the
// modified Lentz method.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 1e-12
		fpmin   = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		m2 := float64(2 * m)
		fm := float64(m)

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
