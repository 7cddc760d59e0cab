package models

import "sort"

// Model is the contract for the trainable delegate the orchestrator wraps.
// The orchestrator never looks past this interface: Fit mutates the
// delegate's parameters, Predict returns per-class probabilities, and
// PredictClasses returns hard labels.
type Model interface {
	Fit(X [][]float64, y []int, opts FitOptions) (*History, error)
	Predict(X [][]float64) [][]float64
	PredictClasses(X [][]float64) []int
	Clone() Model
	GetName() string
	GetParams() map[string]any
	GetClasses() []int
	Reset()
}

// FitOptions carries the knobs a single training run needs.
type FitOptions struct {
	Epochs          int
	BatchSize       int
	ValidationSplit float64
	Verbose         int
	RandomSeed      int64
}

func (opts FitOptions) withDefaults() FitOptions {
	if opts.Epochs <= 0 {
		opts.Epochs = 150
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.ValidationSplit <= 0 || opts.ValidationSplit >= 1 {
		opts.ValidationSplit = 0.33
	}
	if opts.RandomSeed == 0 {
		opts.RandomSeed = 101
	}
	return opts
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}
