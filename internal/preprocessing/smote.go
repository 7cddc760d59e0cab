package preprocessing

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// SMOTE rebalances a training set by synthesizing minority-class samples:
// each synthetic row is an interpolation between a real minority sample and
// one of its nearest minority neighbors.
type SMOTE struct {
	Ratio      float64
	K          int
	RandomSeed int64
}

func NewSMOTE(ratio float64, k int, randomSeed int64) *SMOTE {
	if k <= 0 {
		k = 5
	}
	return &SMOTE{
		Ratio:      ratio,
		K:          k,
		RandomSeed: randomSeed,
	}
}

// Resample oversamples every non-majority class toward Ratio times the
// majority class count. The input slices are not modified.
func (s *SMOTE) Resample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("x and y must have the same length")
	}
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("cannot resample empty dataset")
	}
	if s.Ratio <= 0 || s.Ratio > 1 {
		return nil, nil, fmt.Errorf("resample ratio must be in (0, 1], got %v", s.Ratio)
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	if len(classIndices) < 2 {
		return nil, nil, fmt.Errorf("resampling needs at least 2 classes, found %d", len(classIndices))
	}

	majorityCount := 0
	balanced := true
	first := -1
	for _, indices := range classIndices {
		if len(indices) > majorityCount {
			majorityCount = len(indices)
		}
		if first == -1 {
			first = len(indices)
		} else if len(indices) != first {
			balanced = false
		}
	}
	if balanced {
		return nil, nil, fmt.Errorf("classes are already balanced")
	}

	target := int(math.Round(s.Ratio * float64(majorityCount)))

	XOut := make([][]decimal.Decimal, len(X))
	for i := range X {
		XOut[i] = make([]decimal.Decimal, len(X[i]))
		copy(XOut[i], X[i])
	}
	yOut := make([]int, len(y))
	copy(yOut, y)

	rng := rand.New(rand.NewSource(s.RandomSeed))

	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	for _, class := range classes {
		indices := classIndices[class]
		need := target - len(indices)
		if need <= 0 {
			continue
		}
		if len(indices) < 2 {
			return nil, nil, fmt.Errorf("class %d has too few samples to synthesize from", class)
		}

		for n := 0; n < need; n++ {
			base := indices[rng.Intn(len(indices))]
			neighbors := s.nearestNeighbors(X, indices, base)
			partner := neighbors[rng.Intn(len(neighbors))]

			gap := decimal.NewFromFloat(rng.Float64())
			synth := make([]decimal.Decimal, len(X[base]))
			for j := range synth {
				diff := X[partner][j].Sub(X[base][j])
				synth[j] = X[base][j].Add(diff.Mul(gap))
			}

			XOut = append(XOut, synth)
			yOut = append(yOut, class)
		}
	}

	return XOut, yOut, nil
}

// nearestNeighbors returns the K closest same-class sample indices to base,
// excluding base itself.
func (s *SMOTE) nearestNeighbors(X [][]decimal.Decimal, indices []int, base int) []int {
	type neighbor struct {
		index    int
		distance float64
	}

	neighbors := make([]neighbor, 0, len(indices)-1)
	for _, idx := range indices {
		if idx == base {
			continue
		}
		neighbors = append(neighbors, neighbor{index: idx, distance: euclidean(X[base], X[idx])})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	k := s.K
	if k > len(neighbors) {
		k = len(neighbors)
	}

	result := make([]int, k)
	for i := 0; i < k; i++ {
		result[i] = neighbors[i].index
	}
	return result
}

func euclidean(a, b []decimal.Decimal) float64 {
	sum := 0.0
	for i := range a {
		diff, _ := a[i].Sub(b[i]).Float64()
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
