package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateDataset(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

func (v *Validator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}

func (v *Validator) ValidateTrainTestSplit(XTrain, XTest [][]decimal.Decimal, yTrain, yTest []int) error {
	if err := v.ValidateDataset(XTrain, yTrain); err != nil {
		return fmt.Errorf("training set validation failed: %v", err)
	}

	if err := v.ValidateDataset(XTest, yTest); err != nil {
		return fmt.Errorf("test set validation failed: %v", err)
	}

	if len(XTrain[0]) != len(XTest[0]) {
		return fmt.Errorf("train and test sets have different feature counts: %d vs %d", len(XTrain[0]), len(XTest[0]))
	}

	return nil
}

// Stats summarizes a partitioned dataset before encoding, keyed by the raw
// outcome labels.
type Stats struct {
	Samples      int
	Features     int
	Distribution map[string]int
	FeatureStats []FeatureStats
}

type FeatureStats struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Mean decimal.Decimal
}

func (s Stats) Classes() int {
	return len(s.Distribution)
}

func (v *Validator) DatasetStats(X [][]decimal.Decimal, labels []string) Stats {
	if len(X) == 0 {
		return Stats{Distribution: map[string]int{}}
	}

	stats := Stats{
		Samples:      len(X),
		Features:     len(X[0]),
		Distribution: make(map[string]int),
	}
	for _, label := range labels {
		stats.Distribution[label]++
	}

	stats.FeatureStats = make([]FeatureStats, stats.Features)
	for j := 0; j < stats.Features; j++ {
		values := make([]decimal.Decimal, len(X))
		for i := 0; i < len(X); i++ {
			values[i] = X[i][j]
		}

		stats.FeatureStats[j] = FeatureStats{
			Min:  findMin(values),
			Max:  findMax(values),
			Mean: calculateMean(values),
		}
	}

	return stats
}

func findMin(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

func findMax(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	max := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func calculateMean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}
