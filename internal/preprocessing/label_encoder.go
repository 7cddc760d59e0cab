package preprocessing

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

type LabelEncoder struct {
	ClassToInt map[string]int
	IntToClass map[int]string
	IsFitted   bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
		IntToClass: make(map[int]string),
	}
}

// Fit assigns codes in sorted label order so the encoding is stable across
// runs of the same dataset.
func (le *LabelEncoder) Fit(labels []string) {
	le.ClassToInt = make(map[string]int)
	le.IntToClass = make(map[int]string)

	uniqueLabels := make(map[string]bool)
	for _, label := range labels {
		uniqueLabels[label] = true
	}

	ordered := make([]string, 0, len(uniqueLabels))
	for label := range uniqueLabels {
		ordered = append(ordered, label)
	}
	sort.Strings(ordered)

	for idx, label := range ordered {
		le.ClassToInt[label] = idx
		le.IntToClass[idx] = label
	}

	le.IsFitted = true
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	result := make([]int, len(labels))
	for i, label := range labels {
		val, ok := le.ClassToInt[label]
		if !ok {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
		result[i] = val
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before inverse transform")
	}

	result := make([]string, len(encoded))
	for i, val := range encoded {
		label, ok := le.IntToClass[val]
		if !ok {
			return nil, fmt.Errorf("unknown encoding: %d", val)
		}
		result[i] = label
	}

	return result, nil
}

// ClassName returns the original label for a class code, falling back to the
// numeric code when the encoder never saw it.
func (le *LabelEncoder) ClassName(code int) string {
	if label, ok := le.IntToClass[code]; ok {
		return label
	}
	return fmt.Sprintf("%d", code)
}

func (le *LabelEncoder) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(le)
}

func (le *LabelEncoder) Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	return decoder.Decode(le)
}
