package models

import (
	"fmt"
	"math"
	"math/rand"

	deep "github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
)

// NeuralNetwork is a feedforward classifier backed by go-deep. Binary
// problems get a single sigmoid output, anything wider trains a softmax
// head per class.
type NeuralNetwork struct {
	BaseModel
	Hidden       []int
	LearningRate float64
	net          *deep.Neural
}

func NewNeuralNetwork(hidden []int, learningRate float64) *NeuralNetwork {
	if learningRate <= 0 {
		learningRate = 0.01
	}

	return &NeuralNetwork{
		Hidden:       hidden,
		LearningRate: learningRate,
		BaseModel: BaseModel{
			Name: "NeuralNetwork",
			Params: map[string]any{
				"hidden":        hidden,
				"learning_rate": learningRate,
			},
		},
	}
}

// NewLogistic builds a delegate with no hidden layers, which reduces the
// network to a logistic regression.
func NewLogistic(learningRate float64) *NeuralNetwork {
	nn := NewNeuralNetwork(nil, learningRate)
	nn.Name = "LogisticRegression"
	return nn
}

func (nn *NeuralNetwork) Fit(X [][]float64, y []int, opts FitOptions) (*History, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot fit on empty training set")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("x and y must have the same length")
	}

	opts = opts.withDefaults()
	nn.Classes = ExtractClasses(y)
	if len(nn.Classes) < 2 {
		return nil, fmt.Errorf("training set must contain at least 2 classes")
	}

	outputs := len(nn.Classes)
	mode := deep.ModeMultiClass
	if outputs == 2 {
		outputs = 1
		mode = deep.ModeBinary
	}

	layout := make([]int, 0, len(nn.Hidden)+1)
	layout = append(layout, nn.Hidden...)
	layout = append(layout, outputs)

	nn.net = deep.NewNeural(&deep.Config{
		Inputs:     len(X[0]),
		Layout:     layout,
		Activation: deep.ActivationSigmoid,
		Mode:       mode,
		Weight:     deep.NewNormal(0.5, 0.1),
		Bias:       true,
	})

	examples := nn.makeExamples(X, y)
	rng := rand.New(rand.NewSource(opts.RandomSeed))
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	cut := int(float64(len(examples)) * (1 - opts.ValidationSplit))
	if cut < 1 {
		cut = 1
	}
	train := examples[:cut]
	val := examples[cut:]

	batchSize := opts.BatchSize
	if batchSize > len(train) {
		batchSize = len(train)
	}
	trainer := training.NewBatchTrainer(training.NewAdam(nn.LearningRate, 0, 0, 0), 0, batchSize, 1)

	history := &History{}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		trainer.Train(nn.net, train, nil, 1)

		loss, acc := nn.score(train)
		valLoss, valAcc := nn.score(val)
		history.Loss = append(history.Loss, loss)
		history.Accuracy = append(history.Accuracy, acc)
		history.ValLoss = append(history.ValLoss, valLoss)
		history.ValAccuracy = append(history.ValAccuracy, valAcc)

		if opts.Verbose > 0 {
			fmt.Printf("epoch %d/%d loss=%.4f acc=%.4f val_loss=%.4f val_acc=%.4f\n",
				epoch, opts.Epochs, loss, acc, valLoss, valAcc)
		}
	}

	return history, nil
}

// Predict returns one probability per class for each row, in GetClasses
// order.
func (nn *NeuralNetwork) Predict(X [][]float64) [][]float64 {
	if nn.net == nil {
		return nil
	}

	proba := make([][]float64, len(X))
	for i, row := range X {
		out := nn.net.Predict(row)
		if len(nn.Classes) == 2 {
			proba[i] = []float64{1 - out[0], out[0]}
		} else {
			probs := make([]float64, len(out))
			copy(probs, out)
			proba[i] = probs
		}
	}

	return proba
}

func (nn *NeuralNetwork) PredictClasses(X [][]float64) []int {
	proba := nn.Predict(X)
	predictions := make([]int, len(proba))

	for i, probs := range proba {
		best := 0
		for j := 1; j < len(probs); j++ {
			if probs[j] > probs[best] {
				best = j
			}
		}
		predictions[i] = nn.Classes[best]
	}

	return predictions
}

func (nn *NeuralNetwork) Clone() Model {
	clone := NewNeuralNetwork(nn.Hidden, nn.LearningRate)
	clone.Name = nn.Name
	return clone
}

func (nn *NeuralNetwork) Reset() {
	nn.net = nil
	nn.Classes = nil
}

// MarshalWeights serializes the trained network for bundling.
func (nn *NeuralNetwork) MarshalWeights() ([]byte, error) {
	if nn.net == nil {
		return nil, fmt.Errorf("network has not been trained")
	}
	return nn.net.Marshal()
}

func (nn *NeuralNetwork) UnmarshalWeights(raw []byte) error {
	net, err := deep.Unmarshal(raw)
	if err != nil {
		return fmt.Errorf("failed to decode network weights: %w", err)
	}
	nn.net = net
	return nil
}

func (nn *NeuralNetwork) makeExamples(X [][]float64, y []int) training.Examples {
	classIndex := make(map[int]int, len(nn.Classes))
	for i, class := range nn.Classes {
		classIndex[class] = i
	}

	examples := make(training.Examples, len(X))
	for i, row := range X {
		input := make([]float64, len(row))
		copy(input, row)

		var response []float64
		if len(nn.Classes) == 2 {
			response = []float64{float64(classIndex[y[i]])}
		} else {
			response = make([]float64, len(nn.Classes))
			response[classIndex[y[i]]] = 1
		}

		examples[i] = training.Example{Input: input, Response: response}
	}

	return examples
}

// score computes mean cross-entropy loss and accuracy over a set of
// examples.
func (nn *NeuralNetwork) score(examples training.Examples) (loss, accuracy float64) {
	if len(examples) == 0 {
		return 0, 0
	}

	const eps = 1e-12
	correct := 0

	for _, ex := range examples {
		out := nn.net.Predict(ex.Input)

		if len(nn.Classes) == 2 {
			p := clamp(out[0], eps, 1-eps)
			target := ex.Response[0]
			loss += -(target*math.Log(p) + (1-target)*math.Log(1-p))
			if (p >= 0.5) == (target >= 0.5) {
				correct++
			}
			continue
		}

		best, targetIdx := 0, 0
		for j := range out {
			if out[j] > out[best] {
				best = j
			}
			if ex.Response[j] == 1 {
				targetIdx = j
			}
		}
		loss += -math.Log(clamp(out[targetIdx], eps, 1))
		if best == targetIdx {
			correct++
		}
	}

	n := float64(len(examples))
	return loss / n, float64(correct) / n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
