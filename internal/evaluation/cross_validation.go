package evaluation

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/TQCAI/deploy-ml/internal/models"
)

// CrossValidator estimates generalization accuracy by retraining a fresh
// clone of the delegate on each fold. For a neural delegate this is a
// best-effort diagnostic: every fold starts from new random weights, so the
// spread reflects initialization as much as the data.
type CrossValidator struct {
	NFolds     int
	Shuffle    bool
	RandomSeed int64
	FitOptions models.FitOptions
	Parallel   bool
	MaxWorkers int
}

func NewCrossValidator(nFolds int, randomSeed int64, fitOpts models.FitOptions) *CrossValidator {
	return &CrossValidator{
		NFolds:     nFolds,
		Shuffle:    true,
		RandomSeed: randomSeed,
		FitOptions: fitOpts,
		MaxWorkers: 4,
	}
}

// CrossValidate returns the per-fold accuracy scores plus their mean and
// standard deviation.
func (cv *CrossValidator) CrossValidate(X [][]float64, y []int, model models.Model) ([]float64, float64, float64, error) {
	if cv.Parallel {
		return cv.crossValidateParallel(X, y, model)
	}
	return cv.crossValidateSerial(X, y, model)
}

func (cv *CrossValidator) crossValidateSerial(X [][]float64, y []int, model models.Model) ([]float64, float64, float64, error) {
	folds, err := cv.KFoldSplit(len(X))
	if err != nil {
		return nil, 0, 0, err
	}

	scores := make([]float64, cv.NFolds)

	for i, testIndices := range folds {
		score, err := cv.evaluateFold(X, y, model, testIndices)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("fold %d failed: %w", i, err)
		}
		scores[i] = score
	}

	mean, std := calculateStats(scores)
	return scores, mean, std, nil
}

func (cv *CrossValidator) crossValidateParallel(X [][]float64, y []int, model models.Model) ([]float64, float64, float64, error) {
	folds, err := cv.KFoldSplit(len(X))
	if err != nil {
		return nil, 0, 0, err
	}

	scores := make([]float64, cv.NFolds)
	errors := make([]error, cv.NFolds)

	workers := cv.MaxWorkers
	if workers > cv.NFolds {
		workers = cv.NFolds
	}
	if workers < 1 {
		workers = 1
	}

	type foldJob struct {
		index       int
		testIndices []int
	}

	jobs := make(chan foldJob, cv.NFolds)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				score, err := cv.evaluateFold(X, y, model, job.testIndices)
				scores[job.index] = score
				errors[job.index] = err
			}
		}()
	}

	for i, fold := range folds {
		jobs <- foldJob{index: i, testIndices: fold}
	}
	close(jobs)

	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return nil, 0, 0, fmt.Errorf("fold %d failed: %w", i, err)
		}
	}

	mean, std := calculateStats(scores)
	return scores, mean, std, nil
}

func (cv *CrossValidator) evaluateFold(X [][]float64, y []int, model models.Model, testIndices []int) (float64, error) {
	testSet := make(map[int]bool)
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	XTrain := make([][]float64, 0, len(X)-len(testIndices))
	yTrain := make([]int, 0, len(X)-len(testIndices))
	for i := 0; i < len(X); i++ {
		if !testSet[i] {
			XTrain = append(XTrain, X[i])
			yTrain = append(yTrain, y[i])
		}
	}

	XTest := make([][]float64, len(testIndices))
	yTest := make([]int, len(testIndices))
	for i, idx := range testIndices {
		XTest[i] = X[idx]
		yTest[i] = y[idx]
	}

	foldModel := model.Clone()
	defer foldModel.Reset()

	if _, err := foldModel.Fit(XTrain, yTrain, cv.FitOptions); err != nil {
		return 0, err
	}

	predictions := foldModel.PredictClasses(XTest)

	correct := 0
	for i, pred := range predictions {
		if pred == yTest[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(yTest)), nil
}

func (cv *CrossValidator) KFoldSplit(n int) ([][]int, error) {
	if cv.NFolds < 2 || cv.NFolds > n {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", cv.NFolds, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if cv.Shuffle {
		rng := rand.New(rand.NewSource(cv.RandomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([][]int, cv.NFolds)
	foldSize := n / cv.NFolds

	for i := 0; i < cv.NFolds; i++ {
		start := i * foldSize
		end := start + foldSize
		if i == cv.NFolds-1 {
			end = n
		}

		folds[i] = make([]int, end-start)
		copy(folds[i], indices[start:end])
	}

	return folds, nil
}

func calculateStats(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(len(scores))

	if len(scores) > 1 {
		variance := 0.0
		for _, s := range scores {
			diff := s - mean
			variance += diff * diff
		}
		variance /= float64(len(scores) - 1)
		std = math.Sqrt(variance)
	}

	return mean, std
}
