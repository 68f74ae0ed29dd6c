package decision

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/tabular/errs"
)

// ModelConfig configures a Model by the samples it is fit to. Each row
// of X is one sample with target Y[i].
type ModelConfig struct {
	X [][]float64 `json:"x" yaml:"x"`
	Y []float64   `json:"y" yaml:"y"`
}

// LinearModel is a linear regression model with an intercept
type LinearModel struct {
	weights   []float64
	intercept float64
}

// Fit fits the model to the samples in the rows of X and targets y by
// ordinary least squares
func (l *LinearModel) Fit(X mat.Matrix, y mat.Vector) error {
	rows, cols := X.Dims()
	if rows != y.Len() {
		return errs.New(errs.InvalidArgument, "fit: %d samples but %d "+
			"targets", rows, y.Len())
	}
	if rows < cols+1 {
		return errs.New(errs.InvalidArgument, "fit: need at least %d "+
			"samples for %d features (got %d)", cols+1, cols, rows)
	}

	// Augment the features with a column of ones for the intercept
	design := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1.0)
		for j := 0; j < cols; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	var qr mat.QR
	qr.Factorize(design)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, y); err != nil {
		return errs.Wrap(errs.InvalidArgument, err, "fit: least squares "+
			"solve failed")
	}

	l.intercept = coef.AtVec(0)
	l.weights = make([]float64, cols)
	for j := range l.weights {
		l.weights[j] = coef.AtVec(j + 1)
	}
	return nil
}

// Predict returns the model's prediction for x
func (l *LinearModel) Predict(x []float64) (float64, error) {
	if l.weights == nil {
		return 0, errs.New(errs.InvalidArgument, "predict: model not fit")
	}
	if len(x) != len(l.weights) {
		return 0, errs.New(errs.InvalidArgument, "predict: model expects "+
			"%d features (got %d)", len(l.weights), len(x))
	}
	return floats.Dot(l.weights, x) + l.intercept, nil
}

// Weights returns the fitted weights and intercept
func (l *LinearModel) Weights() ([]float64, float64) {
	w := make([]float64, len(l.weights))
	copy(w, l.weights)
	return w, l.intercept
}

// Model is a Decider which scores inputs with a fitted LinearModel
type Model struct {
	model *LinearModel
}

// NewModel fits a LinearModel to the samples in cfg
func NewModel(cfg ModelConfig) (*Model, error) {
	if len(cfg.X) == 0 || len(cfg.X[0]) == 0 {
		return nil, errs.New(errs.InvalidConfiguration,
			"newModel: no training samples")
	}

	cols := len(cfg.X[0])
	data := make([]float64, 0, len(cfg.X)*cols)
	for i, row := range cfg.X {
		if len(row) != cols {
			return nil, errs.New(errs.InvalidConfiguration, "newModel: "+
				"sample %d has %d features, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	if len(cfg.Y) != len(cfg.X) {
		return nil, errs.New(errs.InvalidConfiguration, "newModel: %d "+
			"samples but %d targets", len(cfg.X), len(cfg.Y))
	}

	model := &LinearModel{}
	X := mat.NewDense(len(cfg.X), cols, data)
	y := mat.NewVecDense(len(cfg.Y), append([]float64(nil), cfg.Y...))
	if err := model.Fit(X, y); err != nil {
		return nil, errs.Wrap(errs.InvalidConfiguration, err,
			"newModel: could not fit model")
	}
	return &Model{model: model}, nil
}

// Decide implements the Decider interface
func (m *Model) Decide(_ context.Context, input []float64) (float64, error) {
	return m.model.Predict(input)
}

// LinearModel returns the fitted model
func (m *Model) LinearModel() *LinearModel {
	return m.model
}
