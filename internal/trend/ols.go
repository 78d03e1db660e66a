// Package trend fits a single-predictor ordinary-least-squares linear
// model and evaluates its predictions. The fit is closed-form and
// deterministic: identical input always yields identical parameters.
package trend

import (
	"math"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

// Point is one (independent, dependent) observation.
type Point struct {
	X float64
	Y float64
}

// Fit computes the OLS line through points: slope = cov(x,y)/var(x),
// intercept = mean(y) - slope*mean(x), plus the coefficient of
// determination and the two-sided p-value of the slope under Student's
// t with n-2 degrees of freedom.
//
// Fewer than two points, or a constant independent variable, make the
// slope undefined and return a DegenerateInputError. A failed fit never
// invalidates the aggregates the points were drawn from.
func Fit(points []Point) (domain.TrendFit, error) {
	n := len(points)
	if n < 2 {
		return domain.TrendFit{}, &apperrors.DegenerateInputError{Points: n, DistinctX: distinctX(points)}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy, syy float64
	for _, p := range points {
		dx := p.X - meanX
		dy := p.Y - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	if sxx == 0 {
		return domain.TrendFit{}, &apperrors.DegenerateInputError{Points: n, DistinctX: distinctX(points)}
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssRes float64
	for _, p := range points {
		resid := p.Y - (intercept + slope*p.X)
		ssRes += resid * resid
	}

	r2 := 1.0
	if syy > 0 {
		r2 = 1 - ssRes/syy
	}

	fit := domain.TrendFit{
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
		N:         n,
	}

	// Slope significance needs residual degrees of freedom; with n == 2
	// or a perfect fit the standard error degenerates to zero and the
	// slope is taken at face value.
	if n > 2 && ssRes > 0 {
		se := math.Sqrt(ssRes / float64(n-2) / sxx)
		fit.SlopeSE = se
		t := slope / se
		fit.PValue = twoSidedTPValue(t, n-2)
	}

	return fit, nil
}

// distinctX counts distinct independent values, for diagnostics.
func distinctX(points []Point) int {
	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		seen[p.X] = struct{}{}
	}
	return len(seen)
}
