package models

import "fmt"

const (
	MetricLoss     = "loss"
	MetricAccuracy = "accuracy"
)

// History records the per-epoch curves of one Fit call, for the training
// portion and the internal validation holdout.
type History struct {
	Loss        []float64
	ValLoss     []float64
	Accuracy    []float64
	ValAccuracy []float64
}

func (h *History) Epochs() int {
	return len(h.Loss)
}

// Series returns the train and validation curves for a metric name.
func (h *History) Series(metric string) (train, val []float64, err error) {
	switch metric {
	case MetricLoss:
		return h.Loss, h.ValLoss, nil
	case MetricAccuracy:
		return h.Accuracy, h.ValAccuracy, nil
	default:
		return nil, nil, fmt.Errorf("unknown metric: %s", metric)
	}
}
