package evaluation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// ROCPoints sweeps score thresholds from high to low and returns the false
// and true positive rates at each threshold, starting at (0,0) and ending at
// (1,1). scores are positive-class probabilities, positive is the class code
// counted as a hit.
func ROCPoints(yTrue []int, scores []float64, positive int) (fpr, tpr []float64, err error) {
	if len(yTrue) != len(scores) {
		return nil, nil, fmt.Errorf("labels and scores have different lengths: %d vs %d", len(yTrue), len(scores))
	}

	totalPos := 0
	for _, label := range yTrue {
		if label == positive {
			totalPos++
		}
	}
	totalNeg := len(yTrue) - totalPos
	if totalPos == 0 || totalNeg == 0 {
		return nil, nil, fmt.Errorf("roc curve requires both classes in the test set")
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	fpr = []float64{0}
	tpr = []float64{0}
	tp, fp := 0, 0

	for k := 0; k < len(order); k++ {
		idx := order[k]
		if yTrue[idx] == positive {
			tp++
		} else {
			fp++
		}
		// emit a point only once all samples tied at this score are counted
		if k+1 < len(order) && scores[order[k+1]] == scores[idx] {
			continue
		}
		fpr = append(fpr, float64(fp)/float64(totalNeg))
		tpr = append(tpr, float64(tp)/float64(totalPos))
	}

	return fpr, tpr, nil
}

// AUC integrates the ROC curve with the trapezoidal rule.
func AUC(fpr, tpr []float64) float64 {
	if len(fpr) < 2 || len(fpr) != len(tpr) {
		return 0
	}
	return integrate.Trapezoidal(fpr, tpr)
}
