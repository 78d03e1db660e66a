package domain

// TrendFit holds the parameters and summary statistics of a fitted
// single-predictor ordinary-least-squares model y = Intercept + Slope*x.
type TrendFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	PValue    float64 `json:"p_value"`
	SlopeSE   float64 `json:"slope_se"`
	N         int     `json:"n"`
}

// PredictAt evaluates the fitted line at x.
func (f TrendFit) PredictAt(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// Prediction pairs a model prediction with the actual dependent value
// observed at the same independent value.
type Prediction struct {
	X         float64 `json:"x"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
	Residual  float64 `json:"residual"`
}

// TrendReport is the model output handed to reporting collaborators:
// the fit plus its per-point prediction diagnostics.
type TrendReport struct {
	XField      string       `json:"x_field"`
	YField      string       `json:"y_field"`
	Fit         TrendFit     `json:"fit"`
	Predictions []Prediction `json:"predictions"`
}
