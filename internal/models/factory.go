package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm    string
	Hidden       []int
	LearningRate float64
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "neural":
		if len(config.Hidden) == 0 {
			config.Hidden = []int{8}
		}
		if config.LearningRate <= 0 {
			config.LearningRate = 0.01
		}
		return NewNeuralNetwork(config.Hidden, config.LearningRate), nil

	case "logistic":
		if config.LearningRate <= 0 {
			config.LearningRate = 0.05
		}
		return NewLogistic(config.LearningRate), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{Algorithm: algorithm}

	switch algorithm {
	case "neural":
		config.Hidden = []int{8}
		config.LearningRate = 0.01
	case "logistic":
		config.LearningRate = 0.05
	}

	return config
}
