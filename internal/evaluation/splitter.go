package evaluation

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// DefaultTestSize and DefaultRandomSeed pin the orchestrator's split so
// repeated runs over the same frame produce the same partitions.
const (
	DefaultTestSize   = 0.33
	DefaultRandomSeed = 101
)

type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func DefaultSplitter() *TrainTestSplitter {
	return NewTrainTestSplitter(DefaultTestSize, DefaultRandomSeed, true)
}

func (tts *TrainTestSplitter) Split(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, [][]decimal.Decimal, []int, []int, error) {
	if len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("x and y must have the same length")
	}

	if len(X) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("cannot split empty dataset")
	}

	if tts.testSize <= 0 || tts.testSize >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test size must be between 0 and 1")
	}

	n := len(X)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if tts.shuffle {
		rng := rand.New(rand.NewSource(tts.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testCount := int(float64(n) * tts.testSize)
	trainCount := n - testCount

	XTrain := make([][]decimal.Decimal, trainCount)
	XTest := make([][]decimal.Decimal, testCount)
	yTrain := make([]int, trainCount)
	yTest := make([]int, testCount)

	for i := 0; i < trainCount; i++ {
		idx := indices[i]
		XTrain[i] = make([]decimal.Decimal, len(X[idx]))
		copy(XTrain[i], X[idx])
		yTrain[i] = y[idx]
	}

	for i := 0; i < testCount; i++ {
		idx := indices[trainCount+i]
		XTest[i] = make([]decimal.Decimal, len(X[idx]))
		copy(XTest[i], X[idx])
		yTest[i] = y[idx]
	}

	return XTrain, XTest, yTrain, yTest, nil
}
