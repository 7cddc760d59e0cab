package training

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"

	"github.com/TQCAI/deploy-ml/internal/data"
	"github.com/TQCAI/deploy-ml/internal/evaluation"
	"github.com/TQCAI/deploy-ml/internal/models"
	"github.com/TQCAI/deploy-ml/internal/persistence"
	"github.com/TQCAI/deploy-ml/internal/plotting"
	"github.com/TQCAI/deploy-ml/internal/preprocessing"
)

// The split is pinned so repeated runs over the same frame reproduce the
// same partitions, and Fit holds out the same fraction again for its
// internal validation curve.
const (
	validationSplit = 0.33
	smoteNeighbors  = 5
)

type phase int

const (
	phaseUnconfigured phase = iota
	phaseConfigured
	phaseTrained
)

// Orchestrator wraps a borrowed delegate model and a tabular frame and runs
// the linear pipeline: partition, split, optionally resample, optionally
// scale, delegate the fit, and expose evaluation helpers. The delegate's
// parameters are mutated by Train and shared with any other holder of the
// reference.
//
// An Orchestrator is not safe for concurrent use.
type Orchestrator struct {
	model models.Model
	store *persistence.Store

	phase   phase
	frame   *data.Frame
	outcome string

	// fit holds everything only valid after Train and is replaced wholesale
	// by every Train call, so a retrain can never leak a stale scaler or
	// history.
	fit *fitState
}

type fitState struct {
	inputOrder []string
	encoder    *preprocessing.LabelEncoder
	scaler     *preprocessing.Scaler // nil when inputs were not scaled

	XTrain [][]decimal.Decimal
	XTest  [][]decimal.Decimal
	yTrain []int
	yTest  []int

	opts    Options
	history *models.History

	report      *evaluation.Report
	predictions []int
	auc         float64
}

// Options mirrors the train call of the original pipeline.
type Options struct {
	Scale         bool
	ScalingKind   string
	Resample      bool
	ResampleRatio float64
	Epochs        int
	BatchSize     int
	Verbose       int
}

func DefaultOptions() Options {
	return Options{
		ScalingKind:   preprocessing.ScaleStandard,
		ResampleRatio: 1.0,
		Epochs:        150,
		BatchSize:     100,
	}
}

// New builds an orchestrator around a borrowed delegate. The store is the
// deployment capability used by SaveBundle; it may be nil when bundling is
// not needed.
func New(model models.Model, store *persistence.Store) *Orchestrator {
	return &Orchestrator{
		model: model,
		store: store,
		phase: phaseUnconfigured,
	}
}

// Configure binds the dataset and designates the outcome column.
func (o *Orchestrator) Configure(frame *data.Frame, outcome string) error {
	if frame == nil || frame.NumRows() == 0 {
		return &ConfigurationError{Reason: "dataset is empty"}
	}
	if !frame.HasColumn(outcome) {
		return &ConfigurationError{Reason: fmt.Sprintf("outcome column %q not found in dataset", outcome)}
	}

	o.frame = frame
	o.outcome = outcome
	if o.phase == phaseUnconfigured {
		o.phase = phaseConfigured
	}
	return nil
}

// Train runs the whole pipeline once. Rerunning replaces all prior split,
// scaler, and history state.
func (o *Orchestrator) Train(opts Options) error {
	if o.phase == phaseUnconfigured {
		return &ConfigurationError{Reason: "no dataset configured"}
	}

	X, labels, inputOrder, err := o.frame.Partition(o.outcome)
	if err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}

	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(labels)
	if err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}

	validator := data.NewValidator()
	if err := validator.ValidateDataset(X, y); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}
	if err := validator.ValidateLabels(y); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}

	splitter := evaluation.DefaultSplitter()
	XTrain, XTest, yTrain, yTest, err := splitter.Split(X, y)
	if err != nil {
		return fmt.Errorf("train/test split failed: %w", err)
	}
	if err := validator.ValidateTrainTestSplit(XTrain, XTest, yTrain, yTest); err != nil {
		return fmt.Errorf("train/test split failed: %w", err)
	}

	if opts.Resample {
		sm := preprocessing.NewSMOTE(opts.ResampleRatio, smoteNeighbors, evaluation.DefaultRandomSeed)
		XTrain, yTrain, err = sm.Resample(XTrain, yTrain)
		if err != nil {
			return &ResampleError{Err: err}
		}
	}

	var scaler *preprocessing.Scaler
	if opts.Scale {
		scaler, err = preprocessing.NewScaler(opts.ScalingKind)
		if err != nil {
			return &ConfigurationError{Reason: err.Error()}
		}
		if err := scaler.Fit(XTrain); err != nil {
			return fmt.Errorf("scaler fit failed: %w", err)
		}
		XTrain, err = scaler.Transform(XTrain)
		if err != nil {
			return fmt.Errorf("scaling training features failed: %w", err)
		}
		XTest, err = scaler.Transform(XTest)
		if err != nil {
			return fmt.Errorf("scaling test features failed: %w", err)
		}
	}

	history, err := o.model.Fit(toFloats(XTrain), yTrain, models.FitOptions{
		Epochs:          opts.Epochs,
		BatchSize:       opts.BatchSize,
		ValidationSplit: validationSplit,
		Verbose:         opts.Verbose,
		RandomSeed:      evaluation.DefaultRandomSeed,
	})
	if err != nil {
		return fmt.Errorf("delegate fit failed: %w", err)
	}

	o.fit = &fitState{
		inputOrder: inputOrder,
		encoder:    encoder,
		scaler:     scaler,
		XTrain:     XTrain,
		XTest:      XTest,
		yTrain:     yTrain,
		yTest:      yTest,
		opts:       opts,
		history:    history,
	}
	o.phase = phaseTrained
	return nil
}

// EvaluateOutcome predicts over the held-out test features and builds a
// classification report. The report's String method renders the
// human-readable form.
func (o *Orchestrator) EvaluateOutcome() (*evaluation.Report, []int, error) {
	if o.phase != phaseTrained {
		return nil, nil, &NotTrainedError{Op: "EvaluateOutcome"}
	}

	predictions := o.model.PredictClasses(toFloats(o.fit.XTest))

	report, err := evaluation.NewReport(o.fit.yTest, predictions, o.model.GetClasses(), o.fit.encoder.IntToClass)
	if err != nil {
		return nil, nil, err
	}

	o.fit.predictions = predictions
	o.fit.report = report
	return report, predictions, nil
}

// EvaluateCrossValidation retrains a fresh clone of the delegate per fold
// over the training data and scores accuracy on each. For a neural delegate
// this is a diagnostic at best: every fold restarts from random weights.
func (o *Orchestrator) EvaluateCrossValidation(nSplits int, seed int64) ([]float64, float64, error) {
	if o.phase != phaseTrained {
		return nil, 0, &NotTrainedError{Op: "EvaluateCrossValidation"}
	}

	cv := evaluation.NewCrossValidator(nSplits, seed, models.FitOptions{
		Epochs:          o.fit.opts.Epochs,
		BatchSize:       o.fit.opts.BatchSize,
		ValidationSplit: validationSplit,
		RandomSeed:      seed,
	})

	scores, mean, _, err := cv.CrossValidate(toFloats(o.fit.XTrain), o.fit.yTrain, o.model)
	if err != nil {
		return nil, 0, err
	}
	return scores, mean, nil
}

// Calculate scores a single input row and returns a probability in [0,1].
// The row must follow the training feature order. The stored scaler is
// applied unless overrideScaling is set or no scaler was fitted; with
// predictPositive false the complement probability is returned.
func (o *Orchestrator) Calculate(row []decimal.Decimal, predictPositive, overrideScaling bool) (float64, error) {
	if o.phase != phaseTrained {
		return 0, &NotTrainedError{Op: "Calculate"}
	}

	if len(row) != len(o.fit.inputOrder) {
		return 0, &ShapeMismatchError{Want: len(o.fit.inputOrder), Got: len(row)}
	}

	input := row
	if o.fit.scaler != nil && !overrideScaling {
		scaled, err := o.fit.scaler.TransformRow(row)
		if err != nil {
			return 0, &ShapeMismatchError{Want: o.fit.scaler.NumFeatures, Got: len(row)}
		}
		input = scaled
	}

	proba := o.model.Predict([][]float64{toFloatRow(input)})
	if len(proba) == 0 || len(proba[0]) == 0 {
		return 0, fmt.Errorf("delegate returned no probabilities")
	}

	// positive class is the highest class code; for a binary delegate that
	// is the second probability
	p := proba[0][len(proba[0])-1]
	if !predictPositive {
		p = 1 - p
	}
	return p, nil
}

// ShowLearningCurve renders the per-epoch curves of the last fit for the
// given metric ("loss" or "accuracy") and writes learning_curve.png when
// save is set.
func (o *Orchestrator) ShowLearningCurve(save bool, metric string) (*plot.Plot, error) {
	if o.phase != phaseTrained {
		return nil, &NotTrainedError{Op: "ShowLearningCurve"}
	}

	train, val, err := o.fit.history.Series(metric)
	if err != nil {
		return nil, err
	}

	p, err := plotting.LearningCurve(o.model.GetName(), metric, train, val)
	if err != nil {
		return nil, err
	}

	if save {
		if err := plotting.Save(p, plotting.LearningCurveFile); err != nil {
			return nil, fmt.Errorf("failed to save learning curve: %w", err)
		}
	}
	return p, nil
}

// ShowROCCurve renders the ROC curve over the held-out test set and returns
// the area under it. roc_curve.png is written when save is set. Only
// meaningful for a binary outcome.
func (o *Orchestrator) ShowROCCurve(save bool) (float64, *plot.Plot, error) {
	if o.phase != phaseTrained {
		return 0, nil, &NotTrainedError{Op: "ShowROCCurve"}
	}

	classes := o.model.GetClasses()
	if len(classes) != 2 {
		return 0, nil, fmt.Errorf("roc curve requires a binary outcome, model has %d classes", len(classes))
	}

	proba := o.model.Predict(toFloats(o.fit.XTest))
	scores := make([]float64, len(proba))
	for i, probs := range proba {
		scores[i] = probs[len(probs)-1]
	}

	fpr, tpr, err := evaluation.ROCPoints(o.fit.yTest, scores, classes[1])
	if err != nil {
		return 0, nil, err
	}
	auc := evaluation.AUC(fpr, tpr)

	p, err := plotting.ROCCurve(fpr, tpr, auc)
	if err != nil {
		return 0, nil, err
	}

	if save {
		if err := plotting.Save(p, plotting.ROCCurveFile); err != nil {
			return 0, nil, fmt.Errorf("failed to save roc curve: %w", err)
		}
	}

	o.fit.auc = auc
	return auc, p, nil
}

// SaveBundle persists the trained delegate together with its scaler,
// encoder, and input order through the composed deployment store.
func (o *Orchestrator) SaveBundle(name string) error {
	if o.phase != phaseTrained {
		return &NotTrainedError{Op: "SaveBundle"}
	}
	if o.store == nil {
		return fmt.Errorf("no deployment store configured")
	}

	bundle, err := persistence.NewBundle(o.model, o.fit.scaler, o.fit.encoder, o.fit.inputOrder)
	if err != nil {
		return err
	}
	if o.fit.report != nil {
		bundle.Metadata.Accuracy = o.fit.report.Accuracy
		bundle.Metadata.Precision = o.fit.report.MacroPrecision
		bundle.Metadata.Recall = o.fit.report.MacroRecall
		bundle.Metadata.F1Score = o.fit.report.MacroF1
	}
	bundle.Metadata.AUC = o.fit.auc

	return o.store.Save(bundle, name)
}

// History exposes the fit history of the last Train call.
func (o *Orchestrator) History() (*models.History, error) {
	if o.phase != phaseTrained {
		return nil, &NotTrainedError{Op: "History"}
	}
	return o.fit.history, nil
}

// ScaledInputs reports whether the last Train call fitted a scaler.
func (o *Orchestrator) ScaledInputs() bool {
	return o.phase == phaseTrained && o.fit.scaler != nil
}

// TestSetSize returns the held-out row counts of the last split.
func (o *Orchestrator) TestSetSize() (train, test int, err error) {
	if o.phase != phaseTrained {
		return 0, 0, &NotTrainedError{Op: "TestSetSize"}
	}
	return len(o.fit.XTrain), len(o.fit.XTest), nil
}

func toFloats(X [][]decimal.Decimal) [][]float64 {
	result := make([][]float64, len(X))
	for i := range X {
		result[i] = toFloatRow(X[i])
	}
	return result
}

func toFloatRow(row []decimal.Decimal) []float64 {
	result := make([]float64, len(row))
	for j, v := range row {
		result[j], _ = v.Float64()
	}
	return result
}
