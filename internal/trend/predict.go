package trend

import (
	"fmt"

	"trendcli/pkg/contracts/domain"
)

// Evaluate applies a fitted model to xs and pairs each prediction
// positionally with the actual dependent value in ys. ys may be the
// values the model was fit on or a disjoint evaluation set; either way
// the lengths must match.
func Evaluate(fit domain.TrendFit, xs, ys []float64) ([]domain.Prediction, error) {
	if fit.N < 2 {
		return nil, fmt.Errorf("evaluate requires a fitted model")
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("evaluate requires matching lengths: %d x values, %d actuals", len(xs), len(ys))
	}

	predictions := make([]domain.Prediction, len(xs))
	for i, x := range xs {
		predicted := fit.PredictAt(x)
		predictions[i] = domain.Prediction{
			X:         x,
			Actual:    ys[i],
			Predicted: predicted,
			Residual:  ys[i] - predicted,
		}
	}
	return predictions, nil
}

// EvaluatePoints is a convenience over Evaluate for the fitting input
// itself.
func EvaluatePoints(fit domain.TrendFit, points []Point) ([]domain.Prediction, error) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return Evaluate(fit, xs, ys)
}
