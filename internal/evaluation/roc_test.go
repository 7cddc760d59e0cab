package evaluation

import (
	"math"
	"testing"
)

func TestROCPerfectClassifier(t *testing.T) {
	yTrue := []int{0, 0, 1, 1}
	scores := []float64{0.1, 0.2, 0.8, 0.9}

	fpr, tpr, err := ROCPoints(yTrue, scores, 1)
	if err != nil {
		t.Fatalf("ROCPoints: %v", err)
	}

	auc := AUC(fpr, tpr)
	if math.Abs(auc-1) > 1e-9 {
		t.Errorf("auc = %v, want 1", auc)
	}
}

func TestROCImperfectClassifier(t *testing.T) {
	yTrue := []int{1, 0, 1, 0}
	scores := []float64{0.9, 0.8, 0.2, 0.1}

	fpr, tpr, err := ROCPoints(yTrue, scores, 1)
	if err != nil {
		t.Fatalf("ROCPoints: %v", err)
	}

	auc := AUC(fpr, tpr)
	if math.Abs(auc-0.75) > 1e-9 {
		t.Errorf("auc = %v, want 0.75", auc)
	}

	if fpr[0] != 0 || tpr[0] != 0 {
		t.Errorf("curve starts at (%v,%v), want (0,0)", fpr[0], tpr[0])
	}
	if fpr[len(fpr)-1] != 1 || tpr[len(tpr)-1] != 1 {
		t.Errorf("curve ends at (%v,%v), want (1,1)", fpr[len(fpr)-1], tpr[len(tpr)-1])
	}
}

func TestROCRequiresBothClasses(t *testing.T) {
	if _, _, err := ROCPoints([]int{1, 1}, []float64{0.5, 0.6}, 1); err == nil {
		t.Fatal("expected error when only one class is present")
	}
}

func TestROCRejectsMismatchedLengths(t *testing.T) {
	if _, _, err := ROCPoints([]int{0, 1}, []float64{0.5}, 1); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}
