package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TQCAI/deploy-ml/internal/data"
	"github.com/TQCAI/deploy-ml/internal/models"
	"github.com/TQCAI/deploy-ml/internal/training"
)

// Runner sweeps orchestrator configurations from a yaml file and collects
// the resulting test metrics.
type Runner struct {
	Config *Config
}

type Config struct {
	Experiment struct {
		Outcome       string   `yaml:"outcome"`
		Scaling       []string `yaml:"scaling"`
		Resample      bool     `yaml:"resample"`
		ResampleRatio float64  `yaml:"resample_ratio"`
		Epochs        []int    `yaml:"epochs"`
		BatchSizes    []int    `yaml:"batch_sizes"`
		HiddenLayouts [][]int  `yaml:"hidden_layouts"`
		LearningRate  float64  `yaml:"learning_rate"`

		CrossValidation struct {
			Folds int `yaml:"folds"`
		} `yaml:"cross_validation"`
	} `yaml:"experiment"`
}

func NewRunner(configFile string) (*Runner, error) {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	exp := &config.Experiment
	if len(exp.Scaling) == 0 {
		exp.Scaling = []string{"none", "standard"}
	}
	if len(exp.Epochs) == 0 {
		exp.Epochs = []int{50}
	}
	if len(exp.BatchSizes) == 0 {
		exp.BatchSizes = []int{32}
	}
	if len(exp.HiddenLayouts) == 0 {
		exp.HiddenLayouts = [][]int{{8}}
	}
	if exp.ResampleRatio <= 0 {
		exp.ResampleRatio = 1.0
	}

	return &Runner{Config: config}, nil
}

type Result struct {
	Dataset        string
	Scaling        string
	HiddenLayout   string
	Epochs         int
	BatchSize      int
	Accuracy       float64
	Precision      float64
	Recall         float64
	F1Score        float64
	CVMean         float64
	TrainingTimeMs int64
}

// RunAll trains one orchestrator per configuration combination and records
// the test metrics of each.
func (r *Runner) RunAll(dataFile string) ([]Result, error) {
	frame, err := data.LoadFrame(dataFile)
	if err != nil {
		return nil, err
	}

	exp := &r.Config.Experiment
	outcome := exp.Outcome
	if outcome == "" {
		outcome = frame.Columns[len(frame.Columns)-1]
	}

	var results []Result

	for _, scaling := range exp.Scaling {
		for _, epochs := range exp.Epochs {
			for _, batchSize := range exp.BatchSizes {
				for _, hidden := range exp.HiddenLayouts {
					result, err := r.runOne(frame, dataFile, outcome, scaling, hidden, epochs, batchSize)
					if err != nil {
						return nil, fmt.Errorf("experiment %s/%v/%d/%d failed: %w", scaling, hidden, epochs, batchSize, err)
					}
					results = append(results, result)
				}
			}
		}
	}

	return results, nil
}

func (r *Runner) runOne(frame *data.Frame, dataFile, outcome, scaling string, hidden []int, epochs, batchSize int) (Result, error) {
	exp := &r.Config.Experiment

	model := models.NewNeuralNetwork(hidden, exp.LearningRate)
	orch := training.New(model, nil)

	if err := orch.Configure(frame, outcome); err != nil {
		return Result{}, err
	}

	opts := training.Options{
		Scale:         scaling != "none" && scaling != "raw",
		ScalingKind:   scaling,
		Resample:      exp.Resample,
		ResampleRatio: exp.ResampleRatio,
		Epochs:        epochs,
		BatchSize:     batchSize,
	}

	startTime := time.Now()
	if err := orch.Train(opts); err != nil {
		return Result{}, err
	}
	elapsed := time.Since(startTime)

	report, _, err := orch.EvaluateOutcome()
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Dataset:        dataFile,
		Scaling:        scaling,
		HiddenLayout:   fmt.Sprintf("%v", hidden),
		Epochs:         epochs,
		BatchSize:      batchSize,
		Accuracy:       report.Accuracy,
		Precision:      report.MacroPrecision,
		Recall:         report.MacroRecall,
		F1Score:        report.MacroF1,
		TrainingTimeMs: elapsed.Milliseconds(),
	}

	if exp.CrossValidation.Folds > 1 {
		_, mean, err := orch.EvaluateCrossValidation(exp.CrossValidation.Folds, 7)
		if err != nil {
			return Result{}, err
		}
		result.CVMean = mean
	}

	return result, nil
}

func (r *Runner) ExportResults(results []Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Dataset", "Scaling", "HiddenLayout", "Epochs", "BatchSize",
		"Accuracy", "Precision", "Recall", "F1Score", "CVMean", "TrainingTimeMs",
	})

	for _, result := range results {
		writer.Write([]string{
			result.Dataset,
			result.Scaling,
			result.HiddenLayout,
			fmt.Sprintf("%d", result.Epochs),
			fmt.Sprintf("%d", result.BatchSize),
			fmt.Sprintf("%.4f", result.Accuracy),
			fmt.Sprintf("%.4f", result.Precision),
			fmt.Sprintf("%.4f", result.Recall),
			fmt.Sprintf("%.4f", result.F1Score),
			fmt.Sprintf("%.4f", result.CVMean),
			fmt.Sprintf("%d", result.TrainingTimeMs),
		})
	}

	return writer.Error()
}
