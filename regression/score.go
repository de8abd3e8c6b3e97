package regression

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aouyang1/go-tabreg/floatsunrolled"
	"github.com/aouyang1/go-tabreg/models"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrResLenMismatch  = errors.New("predicted and actual have different lengths")
	ErrNonFiniteScores = errors.New("fit produced a non-finite score")
)

// Scores tracks the error of a fit on one partition
type Scores struct {
	MAE  float64 `json:"mean_absolute_error"`
	RMSE float64 `json:"root_mean_squared_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual values
func NewScores(predicted, actual []float64) (*Scores, error) {
	mae, err := MAE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	rmse, err := RMSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute root mean squared error, %w", err)
	}
	return &Scores{
		MAE:  mae,
		RMSE: rmse,
		R2:   models.RSquared(predicted, actual),
	}, nil
}

func (s *Scores) finite() bool {
	return finite(s.MAE) && finite(s.RMSE) && finite(s.R2)
}

// MAE computes the mean absolute error, sum(abs(y-yhat))/n. A score of 0 means a perfect match.
func MAE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0, nil
	}

	res, err := floatsunrolled.SubTo(nil, actual, predicted)
	if err != nil {
		return 0, err
	}
	// scale first so the sum stays in range
	floats.Scale(1/float64(len(actual)), res)
	return floatsunrolled.SumAbs(res), nil
}

// RMSE computes the root mean squared error, sqrt(sum((y-yhat)^2)/n)
func RMSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0, nil
	}

	res, err := floatsunrolled.SubTo(nil, actual, predicted)
	if err != nil {
		return 0, err
	}
	return floats.Norm(res, 2) / math.Sqrt(float64(len(actual))), nil
}

// Metrics holds the scores on the training partition and on the held out partition
type Metrics struct {
	Training Scores `json:"training"`
	Test     Scores `json:"test"`
}

// Report renders both score blocks, training first
func (m Metrics) Report() string {
	var sb strings.Builder
	writeBlock(&sb, "Training", m.Training)
	sb.WriteString("\n")
	writeBlock(&sb, "Test", m.Test)
	return sb.String()
}

func writeBlock(sb *strings.Builder, label string, s Scores) {
	fmt.Fprintf(sb, "%s MAE: %.3f, %s RMSE: %.3f, %s R²: %.3f", label, s.MAE, label, s.RMSE, label, s.R2)
}
