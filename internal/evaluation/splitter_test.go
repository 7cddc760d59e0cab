package evaluation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func sequentialDataset(n int) ([][]decimal.Decimal, []int) {
	X := make([][]decimal.Decimal, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = []decimal.Decimal{decimal.NewFromInt(int64(i))}
		y[i] = i % 2
	}
	return X, y
}

func TestSplitSizesAndDisjointness(t *testing.T) {
	X, y := sequentialDataset(300)

	splitter := DefaultSplitter()
	XTrain, XTest, yTrain, yTest, err := splitter.Split(X, y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if len(XTrain)+len(XTest) != 300 {
		t.Fatalf("sizes sum to %d, want 300", len(XTrain)+len(XTest))
	}
	if len(XTrain) != len(yTrain) || len(XTest) != len(yTest) {
		t.Fatal("feature/label length mismatch")
	}

	wantTest := int(300 * DefaultTestSize)
	if len(XTest) != wantTest {
		t.Errorf("test size = %d, want %d", len(XTest), wantTest)
	}

	seen := make(map[int64]bool)
	for _, row := range XTrain {
		seen[row[0].IntPart()] = true
	}
	for _, row := range XTest {
		if seen[row[0].IntPart()] {
			t.Fatalf("row %v appears in both partitions", row[0])
		}
	}
}

func TestSplitReproducibleWithSameSeed(t *testing.T) {
	X, y := sequentialDataset(100)

	first, _, _, _, err := NewTrainTestSplitter(0.33, 101, true).Split(X, y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	second, _, _, _, err := NewTrainTestSplitter(0.33, 101, true).Split(X, y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	for i := range first {
		if !first[i][0].Equal(second[i][0]) {
			t.Fatalf("row %d differs between identically seeded splits", i)
		}
	}
}

func TestSplitRejectsBadInput(t *testing.T) {
	X, y := sequentialDataset(10)

	if _, _, _, _, err := NewTrainTestSplitter(0, 101, true).Split(X, y); err == nil {
		t.Error("expected error for zero test size")
	}
	if _, _, _, _, err := NewTrainTestSplitter(1, 101, true).Split(X, y); err == nil {
		t.Error("expected error for full test size")
	}
	if _, _, _, _, err := DefaultSplitter().Split(X, y[:5]); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, _, _, _, err := DefaultSplitter().Split(nil, nil); err == nil {
		t.Error("expected error for empty dataset")
	}
}
