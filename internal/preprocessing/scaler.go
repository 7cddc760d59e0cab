package preprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	ScaleStandard  = "standard"
	ScaleMinMax    = "minmax"
	ScaleNormalize = "normalize"
)

// Scaler is a stateful feature transform fitted once on training data and
// then applied to any number of matrices or single rows. A Scaler is never
// refitted in place; retraining builds a fresh one.
type Scaler struct {
	ScaleType   string
	IsFitted    bool
	NumFeatures int
	FeatureMin  []decimal.Decimal
	FeatureMax  []decimal.Decimal
	FeatureMean []decimal.Decimal
	FeatureStd  []decimal.Decimal
}

// CanonicalScaleType maps the accepted spelling variants onto one of the
// Scale* constants.
func CanonicalScaleType(name string) (string, error) {
	switch name {
	case "standard", "standardized":
		return ScaleStandard, nil
	case "minmax", "min max", "min-max":
		return ScaleMinMax, nil
	case "normalize", "normalized":
		return ScaleNormalize, nil
	default:
		return "", fmt.Errorf("unknown scale type: %s", name)
	}
}

func NewScaler(scaleType string) (*Scaler, error) {
	canonical, err := CanonicalScaleType(scaleType)
	if err != nil {
		return nil, err
	}
	return &Scaler{ScaleType: canonical}, nil
}

func (s *Scaler) Fit(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return fmt.Errorf("empty dataset")
	}

	s.NumFeatures = len(X[0])

	switch s.ScaleType {
	case ScaleMinMax:
		s.fitMinMax(X)
	case ScaleStandard:
		s.fitStandard(X)
	case ScaleNormalize:
		// unit-norm scaling is row-local, fitting only records the width
	default:
		return fmt.Errorf("unknown scale type: %s", s.ScaleType)
	}

	s.IsFitted = true
	return nil
}

func (s *Scaler) Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	result := make([][]decimal.Decimal, len(X))
	for i := range X {
		row, err := s.TransformRow(X[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		result[i] = row
	}

	return result, nil
}

// TransformRow scales a single feature row, as used for one-off inference.
func (s *Scaler) TransformRow(row []decimal.Decimal) ([]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	if len(row) != s.NumFeatures {
		return nil, fmt.Errorf("scaler fitted for %d features, row has %d", s.NumFeatures, len(row))
	}

	if s.ScaleType == ScaleNormalize {
		return normalizeRow(row), nil
	}

	result := make([]decimal.Decimal, len(row))
	for j := range row {
		switch s.ScaleType {
		case ScaleMinMax:
			result[j] = s.transformMinMax(row[j], j)
		case ScaleStandard:
			result[j] = s.transformStandard(row[j], j)
		}
	}

	return result, nil
}

func (s *Scaler) FitTransform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *Scaler) fitMinMax(X [][]decimal.Decimal) {
	nFeatures := len(X[0])
	s.FeatureMin = make([]decimal.Decimal, nFeatures)
	s.FeatureMax = make([]decimal.Decimal, nFeatures)

	for j := 0; j < nFeatures; j++ {
		s.FeatureMin[j] = X[0][j]
		s.FeatureMax[j] = X[0][j]

		for i := 1; i < len(X); i++ {
			if X[i][j].LessThan(s.FeatureMin[j]) {
				s.FeatureMin[j] = X[i][j]
			}
			if X[i][j].GreaterThan(s.FeatureMax[j]) {
				s.FeatureMax[j] = X[i][j]
			}
		}
	}
}

func (s *Scaler) fitStandard(X [][]decimal.Decimal) {
	nFeatures := len(X[0])
	nSamples := decimal.NewFromInt(int64(len(X)))
	s.FeatureMean = make([]decimal.Decimal, nFeatures)
	s.FeatureStd = make([]decimal.Decimal, nFeatures)

	for j := 0; j < nFeatures; j++ {
		sum := decimal.Zero
		for i := 0; i < len(X); i++ {
			sum = sum.Add(X[i][j])
		}
		s.FeatureMean[j] = sum.Div(nSamples)
	}

	for j := 0; j < nFeatures; j++ {
		variance := decimal.Zero
		for i := 0; i < len(X); i++ {
			diff := X[i][j].Sub(s.FeatureMean[j])
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(nSamples)

		varFloat, _ := variance.Float64()
		stdFloat := math.Sqrt(varFloat)
		s.FeatureStd[j] = decimal.NewFromFloat(stdFloat)

		if s.FeatureStd[j].IsZero() {
			s.FeatureStd[j] = decimal.NewFromInt(1)
		}
	}
}

func (s *Scaler) transformMinMax(value decimal.Decimal, featureIndex int) decimal.Decimal {
	span := s.FeatureMax[featureIndex].Sub(s.FeatureMin[featureIndex])
	if span.IsZero() {
		return decimal.Zero
	}
	return value.Sub(s.FeatureMin[featureIndex]).Div(span)
}

func (s *Scaler) transformStandard(value decimal.Decimal, featureIndex int) decimal.Decimal {
	return value.Sub(s.FeatureMean[featureIndex]).Div(s.FeatureStd[featureIndex])
}

func normalizeRow(row []decimal.Decimal) []decimal.Decimal {
	sumSq := 0.0
	for _, v := range row {
		f, _ := v.Float64()
		sumSq += f * f
	}

	norm := math.Sqrt(sumSq)
	result := make([]decimal.Decimal, len(row))
	if norm == 0 {
		copy(result, row)
		return result
	}

	normDec := decimal.NewFromFloat(norm)
	for j, v := range row {
		result[j] = v.Div(normDec)
	}
	return result
}
