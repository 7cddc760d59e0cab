package training

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/TQCAI/deploy-ml/internal/data"
	"github.com/TQCAI/deploy-ml/internal/models"
)

// binaryFrame builds a 300-row frame with two informative features and a
// balanced binary outcome.
func binaryFrame(t *testing.T) *data.Frame {
	t.Helper()

	rows := make([][]string, 300)
	for i := range rows {
		label := "0"
		offset := 0.0
		if i%2 == 1 {
			label = "1"
			offset = 2.0
		}
		f1 := offset + float64(i%50)/50.0
		f2 := -offset + float64(i%30)/30.0
		rows[i] = []string{
			fmt.Sprintf("%.4f", f1),
			fmt.Sprintf("%.4f", f2),
			label,
		}
	}

	frame, err := data.NewFrame([]string{"f1", "f2", "target"}, rows)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return frame
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()

	orch := New(models.NewNeuralNetwork([]int{4}, 0.05), nil)
	if err := orch.Configure(binaryFrame(t), "target"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return orch
}

func quickOptions() Options {
	opts := DefaultOptions()
	opts.Scale = true
	opts.Epochs = 5
	opts.BatchSize = 32
	return opts
}

func TestConfigureRejectsMissingOutcome(t *testing.T) {
	orch := New(models.NewNeuralNetwork([]int{4}, 0.05), nil)

	err := orch.Configure(binaryFrame(t), "nonexistent")
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("got %v, want ConfigurationError", err)
	}
}

func TestEvaluateBeforeTrainFails(t *testing.T) {
	orch := newTestOrchestrator(t)

	_, _, err := orch.EvaluateOutcome()
	var notTrained *NotTrainedError
	if !errors.As(err, &notTrained) {
		t.Fatalf("got %v, want NotTrainedError", err)
	}

	if _, _, err := orch.ShowROCCurve(false); !errors.As(err, &notTrained) {
		t.Fatalf("got %v, want NotTrainedError", err)
	}
	if _, err := orch.ShowLearningCurve(false, models.MetricLoss); !errors.As(err, &notTrained) {
		t.Fatalf("got %v, want NotTrainedError", err)
	}
}

func TestTrainEndToEnd(t *testing.T) {
	orch := newTestOrchestrator(t)

	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	trainRows, testRows, err := orch.TestSetSize()
	if err != nil {
		t.Fatalf("TestSetSize: %v", err)
	}
	if trainRows+testRows != 300 {
		t.Errorf("split sizes sum to %d, want 300", trainRows+testRows)
	}
	if testRows != 99 {
		t.Errorf("test rows = %d, want 99 (0.33 of 300)", testRows)
	}

	history, err := orch.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if history.Epochs() != 5 {
		t.Errorf("history epochs = %d, want 5", history.Epochs())
	}
	if len(history.Loss) != 5 {
		t.Errorf("loss entries = %d, want 5", len(history.Loss))
	}

	if !orch.ScaledInputs() {
		t.Error("scaling was requested but not recorded")
	}

	report, predictions, err := orch.EvaluateOutcome()
	if err != nil {
		t.Fatalf("EvaluateOutcome: %v", err)
	}
	if len(predictions) != testRows {
		t.Errorf("got %d predictions, want %d", len(predictions), testRows)
	}
	if report.Accuracy < 0 || report.Accuracy > 1 {
		t.Errorf("accuracy = %v, want in [0,1]", report.Accuracy)
	}
	if report.String() == "" {
		t.Error("expected non-empty report text")
	}
}

func TestRetrainReplacesScalerState(t *testing.T) {
	orch := newTestOrchestrator(t)

	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("first Train: %v", err)
	}
	if !orch.ScaledInputs() {
		t.Fatal("first run should have an active scaler")
	}

	opts := quickOptions()
	opts.Scale = false
	if err := orch.Train(opts); err != nil {
		t.Fatalf("second Train: %v", err)
	}
	if orch.ScaledInputs() {
		t.Fatal("second unscaled run must not keep the old scaler")
	}

	// the unscaled run must also score raw rows directly
	row := []decimal.Decimal{decimal.NewFromFloat(2.5), decimal.NewFromFloat(-1.5)}
	p, err := orch.Calculate(row, true, false)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if p < 0 || p > 1 {
		t.Errorf("probability = %v, want in [0,1]", p)
	}
}

func TestCalculateComplement(t *testing.T) {
	orch := newTestOrchestrator(t)
	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	row := []decimal.Decimal{decimal.NewFromFloat(2.5), decimal.NewFromFloat(-1.5)}

	pos, err := orch.Calculate(row, true, false)
	if err != nil {
		t.Fatalf("Calculate positive: %v", err)
	}
	neg, err := orch.Calculate(row, false, false)
	if err != nil {
		t.Fatalf("Calculate negative: %v", err)
	}

	if math.Abs(pos+neg-1) > 1e-9 {
		t.Errorf("positive %v + negative %v != 1", pos, neg)
	}
}

func TestCalculateShapeMismatch(t *testing.T) {
	orch := newTestOrchestrator(t)
	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	_, err := orch.Calculate([]decimal.Decimal{decimal.NewFromInt(1)}, true, false)
	var shapeErr *ShapeMismatchError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("got %v, want ShapeMismatchError", err)
	}
	if shapeErr.Want != 2 || shapeErr.Got != 1 {
		t.Errorf("shape error = %d/%d, want 2/1", shapeErr.Want, shapeErr.Got)
	}
}

func TestCalculateOverrideSkipsScaling(t *testing.T) {
	orch := newTestOrchestrator(t)
	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	// the row is far outside the training range, so the scaled and raw
	// inputs differ; both calls must still yield valid probabilities
	row := []decimal.Decimal{decimal.NewFromFloat(500), decimal.NewFromFloat(-500)}

	scaled, err := orch.Calculate(row, true, false)
	if err != nil {
		t.Fatalf("Calculate scaled: %v", err)
	}
	raw, err := orch.Calculate(row, true, true)
	if err != nil {
		t.Fatalf("Calculate override: %v", err)
	}

	for _, p := range []float64{scaled, raw} {
		if p < 0 || p > 1 {
			t.Errorf("probability = %v, want in [0,1]", p)
		}
	}
}

func TestTrainRejectsUnknownScalingKind(t *testing.T) {
	orch := newTestOrchestrator(t)

	opts := quickOptions()
	opts.ScalingKind = "robust"
	err := orch.Train(opts)

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("got %v, want ConfigurationError", err)
	}
}

func TestResampleInvalidRatioFails(t *testing.T) {
	orch := newTestOrchestrator(t)

	opts := quickOptions()
	opts.Resample = true
	opts.ResampleRatio = 1.5
	err := orch.Train(opts)

	var resampleErr *ResampleError
	if !errors.As(err, &resampleErr) {
		t.Fatalf("got %v, want ResampleError", err)
	}
}

func TestResampleOversamplesMinority(t *testing.T) {
	// 200 majority rows against 100 minority rows; resampling at ratio 1.0
	// grows the training set
	rows := make([][]string, 300)
	for i := range rows {
		label := "0"
		offset := 0.0
		if i%3 == 2 {
			label = "1"
			offset = 2.0
		}
		rows[i] = []string{
			fmt.Sprintf("%.4f", offset+float64(i%50)/50.0),
			fmt.Sprintf("%.4f", -offset+float64(i%30)/30.0),
			label,
		}
	}
	frame, err := data.NewFrame([]string{"f1", "f2", "target"}, rows)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	orch := New(models.NewNeuralNetwork([]int{4}, 0.05), nil)
	if err := orch.Configure(frame, "target"); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	opts := quickOptions()
	opts.Resample = true
	if err := orch.Train(opts); err != nil {
		t.Fatalf("Train: %v", err)
	}

	trainRows, testRows, err := orch.TestSetSize()
	if err != nil {
		t.Fatalf("TestSetSize: %v", err)
	}
	if trainRows+testRows <= 300 {
		t.Errorf("train %d + test %d rows, want more than the original 300 after oversampling", trainRows, testRows)
	}
}

func TestShowCurvesWithoutSaving(t *testing.T) {
	orch := newTestOrchestrator(t)
	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	if _, err := orch.ShowLearningCurve(false, models.MetricLoss); err != nil {
		t.Fatalf("ShowLearningCurve: %v", err)
	}
	if _, err := orch.ShowLearningCurve(false, models.MetricAccuracy); err != nil {
		t.Fatalf("ShowLearningCurve accuracy: %v", err)
	}
	if _, err := orch.ShowLearningCurve(false, "f-beta"); err == nil {
		t.Fatal("expected error for unknown metric")
	}

	auc, p, err := orch.ShowROCCurve(false)
	if err != nil {
		t.Fatalf("ShowROCCurve: %v", err)
	}
	if p == nil {
		t.Fatal("expected a rendered plot")
	}
	if auc < 0 || auc > 1 {
		t.Errorf("auc = %v, want in [0,1]", auc)
	}
}

func TestEvaluateCrossValidation(t *testing.T) {
	orch := newTestOrchestrator(t)
	if err := orch.Train(quickOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	scores, mean, err := orch.EvaluateCrossValidation(3, 7)
	if err != nil {
		t.Fatalf("EvaluateCrossValidation: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("got %d fold scores, want 3", len(scores))
	}
	for i, score := range scores {
		if score < 0 || score > 1 {
			t.Errorf("fold %d score = %v, want in [0,1]", i, score)
		}
	}
	if mean < 0 || mean > 1 {
		t.Errorf("mean = %v, want in [0,1]", mean)
	}
}
