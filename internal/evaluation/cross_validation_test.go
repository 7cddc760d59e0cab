package evaluation

import (
	"math"
	"sort"
	"testing"

	"github.com/TQCAI/deploy-ml/internal/models"
)

func TestKFoldSplitCoversAllIndices(t *testing.T) {
	cv := NewCrossValidator(4, 7, models.FitOptions{})

	folds, err := cv.KFoldSplit(103)
	if err != nil {
		t.Fatalf("KFoldSplit: %v", err)
	}
	if len(folds) != 4 {
		t.Fatalf("got %d folds, want 4", len(folds))
	}

	var all []int
	for _, fold := range folds {
		all = append(all, fold...)
	}
	if len(all) != 103 {
		t.Fatalf("folds cover %d indices, want 103", len(all))
	}

	sort.Ints(all)
	for i, idx := range all {
		if idx != i {
			t.Fatalf("index %d appears out of place, folds overlap or drop indices", idx)
		}
	}
}

func TestKFoldSplitRejectsBadFoldCounts(t *testing.T) {
	if _, err := NewCrossValidator(1, 7, models.FitOptions{}).KFoldSplit(10); err == nil {
		t.Error("expected error for fewer than 2 folds")
	}
	if _, err := NewCrossValidator(11, 7, models.FitOptions{}).KFoldSplit(10); err == nil {
		t.Error("expected error for more folds than samples")
	}
}

func cvDataset() ([][]float64, []int) {
	X := make([][]float64, 90)
	y := make([]int, 90)
	for i := range X {
		v := float64(i) / 90.0
		X[i] = []float64{v, 1 - v}
		if i >= 45 {
			y[i] = 1
		}
	}
	return X, y
}

func TestCrossValidateSerial(t *testing.T) {
	X, y := cvDataset()
	cv := NewCrossValidator(3, 7, models.FitOptions{Epochs: 5, BatchSize: 16})

	scores, mean, std, err := cv.CrossValidate(X, y, models.NewLogistic(0.05))
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	for i, score := range scores {
		if score < 0 || score > 1 {
			t.Errorf("fold %d score = %v, want in [0,1]", i, score)
		}
	}
	if mean < 0 || mean > 1 {
		t.Errorf("mean = %v, want in [0,1]", mean)
	}
	if std < 0 {
		t.Errorf("std = %v, want non-negative", std)
	}
}

func TestCrossValidateParallelMatchesFoldCount(t *testing.T) {
	X, y := cvDataset()
	cv := NewCrossValidator(3, 7, models.FitOptions{Epochs: 5, BatchSize: 16})
	cv.Parallel = true
	cv.MaxWorkers = 2

	scores, _, _, err := cv.CrossValidate(X, y, models.NewLogistic(0.05))
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
}

func TestCalculateStats(t *testing.T) {
	mean, std := calculateStats([]float64{0.8, 0.9, 1.0})

	if math.Abs(mean-0.9) > 1e-9 {
		t.Errorf("mean = %v, want 0.9", mean)
	}
	if math.Abs(std-0.1) > 1e-9 {
		t.Errorf("std = %v, want 0.1", std)
	}
}
