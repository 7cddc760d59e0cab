package training

import "fmt"

// ConfigurationError reports a bad dataset binding, most commonly an outcome
// column that does not exist in the frame.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ResampleError reports an invalid class-balancing request.
type ResampleError struct {
	Err error
}

func (e *ResampleError) Error() string {
	return fmt.Sprintf("resample error: %v", e.Err)
}

func (e *ResampleError) Unwrap() error {
	return e.Err
}

// NotTrainedError reports an evaluation call before Train has completed.
type NotTrainedError struct {
	Op string
}

func (e *NotTrainedError) Error() string {
	return fmt.Sprintf("%s requires a trained orchestrator: call Train first", e.Op)
}

// ShapeMismatchError reports an inference row incompatible with the fitted
// input order.
type ShapeMismatchError struct {
	Want int
	Got  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("input row has %d features, model was fitted on %d", e.Got, e.Want)
}
