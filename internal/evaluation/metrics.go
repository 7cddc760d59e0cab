package evaluation

import (
	"fmt"
	"math"
	"strings"
)

// Report holds per-class and aggregate classification metrics over a test
// set, plus the confusion matrix they were derived from.
type Report struct {
	Accuracy          float64
	MacroPrecision    float64
	MacroRecall       float64
	MacroF1           float64
	WeightedPrecision float64
	WeightedRecall    float64
	WeightedF1        float64
	PerClass          map[int]ClassMetrics
	ConfusionMatrix   [][]int
	Classes           []int
	ClassNames        map[int]string
	NumSamples        int
}

type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1Score   float64
	Support   int
}

// NewReport computes a classification report. classNames is optional; when
// present it labels the report rows with the original outcome values.
func NewReport(yTrue, yPred []int, classes []int, classNames map[int]string) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("true and predicted labels have different lengths: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("cannot build report over empty predictions")
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("no classes given")
	}

	confusionMatrix := buildConfusionMatrix(yTrue, yPred, classes)

	classSupport := make(map[int]int)
	for _, class := range yTrue {
		classSupport[class]++
	}

	perClass := make(map[int]ClassMetrics)
	var macroPrec, macroRec, macroF1 float64
	var weightedPrec, weightedRec, weightedF1 float64
	totalSupport := 0

	for i, class := range classes {
		tp := confusionMatrix[i][i]
		fp := 0
		fn := 0

		for j := range classes {
			if j != i {
				fp += confusionMatrix[j][i]
				fn += confusionMatrix[i][j]
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)

		support := classSupport[class]
		perClass[class] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   support,
		}

		macroPrec += precision
		macroRec += recall
		macroF1 += f1

		weightedPrec += precision * float64(support)
		weightedRec += recall * float64(support)
		weightedF1 += f1 * float64(support)
		totalSupport += support
	}

	numClasses := float64(len(classes))
	macroPrec /= numClasses
	macroRec /= numClasses
	macroF1 /= numClasses

	if totalSupport > 0 {
		weightedPrec /= float64(totalSupport)
		weightedRec /= float64(totalSupport)
		weightedF1 /= float64(totalSupport)
	}

	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}

	return &Report{
		Accuracy:          float64(correct) / float64(len(yTrue)),
		MacroPrecision:    macroPrec,
		MacroRecall:       macroRec,
		MacroF1:           macroF1,
		WeightedPrecision: weightedPrec,
		WeightedRecall:    weightedRec,
		WeightedF1:        weightedF1,
		PerClass:          perClass,
		ConfusionMatrix:   confusionMatrix,
		Classes:           classes,
		ClassNames:        classNames,
		NumSamples:        len(yTrue),
	}, nil
}

// String renders the report as a per-class precision/recall/F1 table.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%16s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	b.WriteString("\n")

	for _, class := range r.Classes {
		m := r.PerClass[class]
		fmt.Fprintf(&b, "%16s %10.2f %10.2f %10.2f %10d\n",
			r.className(class), m.Precision, m.Recall, m.F1Score, m.Support)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%16s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.NumSamples)
	fmt.Fprintf(&b, "%16s %10.2f %10.2f %10.2f %10d\n", "macro avg",
		r.MacroPrecision, r.MacroRecall, r.MacroF1, r.NumSamples)
	fmt.Fprintf(&b, "%16s %10.2f %10.2f %10.2f %10d\n", "weighted avg",
		r.WeightedPrecision, r.WeightedRecall, r.WeightedF1, r.NumSamples)

	return b.String()
}

func (r *Report) className(class int) string {
	if name, ok := r.ClassNames[class]; ok {
		return name
	}
	return fmt.Sprintf("%d", class)
}

func buildConfusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	numClasses := len(classes)
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	classToIdx := make(map[int]int)
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}
