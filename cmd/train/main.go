package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/TQCAI/deploy-ml/internal/data"
	"github.com/TQCAI/deploy-ml/internal/experiment"
	"github.com/TQCAI/deploy-ml/internal/models"
	"github.com/TQCAI/deploy-ml/internal/persistence"
	"github.com/TQCAI/deploy-ml/internal/training"
)

func main() {
	dataFile := flag.String("data", "", "Path to training data CSV file")
	outcome := flag.String("outcome", "", "Outcome column name (defaults to the last column)")
	algorithm := flag.String("algorithm", "neural", "Delegate model (neural|logistic)")
	hidden := flag.String("hidden", "8", "Comma-separated hidden layer sizes for the neural delegate")
	learningRate := flag.Float64("lr", 0.01, "Learning rate")
	scale := flag.Bool("scale", false, "Scale input features")
	scaling := flag.String("scaling", "standard", "Scaling kind (standard|minmax|normalize)")
	resample := flag.Bool("resample", false, "Rebalance training classes with SMOTE")
	resampleRatio := flag.Float64("resample-ratio", 1.0, "Target minority/majority ratio for resampling")
	epochs := flag.Int("epochs", 150, "Training epochs")
	batchSize := flag.Int("batch", 100, "Batch size")
	verbose := flag.Int("verbose", 0, "Print per-epoch progress when > 0")
	crossValidation := flag.Bool("cv", false, "Run k-fold cross-validation after training")
	cvFolds := flag.Int("cv-folds", 10, "Number of cross-validation folds")
	savePlots := flag.Bool("save-plots", false, "Write learning_curve.png and roc_curve.png")
	outputDir := flag.String("output", "models", "Output directory for saved bundles")
	runExperiment := flag.Bool("experiment", false, "Run full experiment with config")
	configFile := flag.String("config", "config/config.yaml", "Path to experiment configuration file")

	flag.Parse()

	if *dataFile == "" {
		fmt.Println("Usage:")
		fmt.Println("  Simple training: go run cmd/train/main.go -data data/train/heart.csv -outcome target -scale -epochs 5 -batch 32")
		fmt.Println("  Full experiment: go run cmd/train/main.go -experiment -config config/config.yaml -data data/train/heart.csv")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *runExperiment {
		runFullExperiment(*configFile, *dataFile, *outputDir)
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Println("Loading dataset...")
	frame, err := data.LoadFrame(*dataFile)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	outcomeCol := *outcome
	if outcomeCol == "" {
		outcomeCol = frame.Columns[len(frame.Columns)-1]
	}
	fmt.Printf("Loaded %d samples with %d columns, outcome %q\n", frame.NumRows(), len(frame.Columns), outcomeCol)

	if X, labels, _, err := frame.Partition(outcomeCol); err == nil {
		stats := data.NewValidator().DatasetStats(X, labels)
		fmt.Printf("Features: %d, classes: %d, distribution: %v\n", stats.Features, stats.Classes(), stats.Distribution)
	}

	model, err := models.CreateModel(models.ModelConfig{
		Algorithm:    *algorithm,
		Hidden:       parseHidden(*hidden),
		LearningRate: *learningRate,
	})
	if err != nil {
		log.Fatalf("Failed to create model: %v", err)
	}

	store := persistence.NewStore(*outputDir)
	orch := training.New(model, store)

	if err := orch.Configure(frame, outcomeCol); err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	fmt.Printf("Training %s model...\n", model.GetName())
	startTime := time.Now()
	err = orch.Train(training.Options{
		Scale:         *scale,
		ScalingKind:   *scaling,
		Resample:      *resample,
		ResampleRatio: *resampleRatio,
		Epochs:        *epochs,
		BatchSize:     *batchSize,
		Verbose:       *verbose,
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	trainingTime := time.Since(startTime)

	trainRows, testRows, _ := orch.TestSetSize()
	fmt.Printf("Split: %d train / %d test rows\n", trainRows, testRows)

	report, _, err := orch.EvaluateOutcome()
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Printf("\n%s\n", cyan("Training Results"))
	fmt.Printf("Training time: %v\n", trainingTime)
	fmt.Printf("Test accuracy: %s\n", green(fmt.Sprintf("%.4f", report.Accuracy)))
	fmt.Printf("Precision: %.4f\n", report.MacroPrecision)
	fmt.Printf("Recall: %.4f\n", report.MacroRecall)
	fmt.Printf("F1-score: %.4f\n", report.MacroF1)
	fmt.Printf("\n%s\n", report)

	auc, _, err := orch.ShowROCCurve(*savePlots)
	if err != nil {
		fmt.Printf("%s %v\n", yellow("ROC curve skipped:"), err)
	} else {
		fmt.Printf("AUC: %s\n", green(fmt.Sprintf("%.4f", auc)))
	}

	if _, err := orch.ShowLearningCurve(*savePlots, models.MetricLoss); err != nil {
		fmt.Printf("%s %v\n", yellow("Learning curve skipped:"), err)
	}

	if *crossValidation {
		fmt.Printf("Running %d-fold cross-validation (diagnostic only for neural delegates)...\n", *cvFolds)
		scores, mean, err := orch.EvaluateCrossValidation(*cvFolds, 7)
		if err != nil {
			fmt.Printf("%s %v\n", yellow("Cross-validation failed:"), err)
		} else {
			fmt.Printf("CV scores: %v\n", scores)
			fmt.Printf("CV mean accuracy: %s\n", green(fmt.Sprintf("%.4f", mean)))
		}
	}

	fmt.Println("Saving bundle...")
	timestamp := time.Now().Format("20060102_150405")
	base := filepath.Base(*dataFile)
	name := fmt.Sprintf("%s_%s_%s.bundle", *algorithm, strings.TrimSuffix(base, filepath.Ext(base)), timestamp)
	if err := orch.SaveBundle(name); err != nil {
		log.Printf("Failed to save bundle: %v", err)
	} else {
		fmt.Printf("Bundle saved to: %s\n", filepath.Join(*outputDir, name))
	}

	fmt.Println("\nTraining completed successfully!")
}

func runFullExperiment(configFile, dataFile, outputDir string) {
	fmt.Println("Running full experiment...")

	runner, err := experiment.NewRunner(configFile)
	if err != nil {
		log.Fatalf("Failed to load experiment config: %v", err)
	}

	results, err := runner.RunAll(dataFile)
	if err != nil {
		log.Fatalf("Experiment failed: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	expDir := filepath.Join(outputDir, fmt.Sprintf("experiment_%s", timestamp))
	os.MkdirAll(expDir, 0755)

	resultsFile := filepath.Join(expDir, "experiment_results.csv")
	if err := runner.ExportResults(results, resultsFile); err != nil {
		log.Printf("Failed to export results: %v", err)
	} else {
		fmt.Printf("Experiment results saved to: %s\n", resultsFile)
	}

	fmt.Printf("\nExperiment Summary:\n")
	fmt.Printf("Total experiments: %d\n", len(results))

	if len(results) > 0 {
		best := results[0]
		for _, result := range results[1:] {
			if result.Accuracy > best.Accuracy {
				best = result
			}
		}
		fmt.Printf("Best accuracy: %.4f (%s scaling, layout %s, %d epochs)\n",
			best.Accuracy, best.Scaling, best.HiddenLayout, best.Epochs)
	}
}

func parseHidden(spec string) []int {
	if strings.TrimSpace(spec) == "" {
		return nil
	}

	var hidden []int
	for _, part := range strings.Split(spec, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || size <= 0 {
			continue
		}
		hidden = append(hidden, size)
	}
	return hidden
}
