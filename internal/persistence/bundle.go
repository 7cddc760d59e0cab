package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TQCAI/deploy-ml/internal/models"
	"github.com/TQCAI/deploy-ml/internal/preprocessing"
)

// Bundle is everything a deployment needs to score rows without the
// orchestrator: serialized delegate weights plus the fitted scaler, label
// encoder, and the feature order the model was trained in.
type Bundle struct {
	ModelName    string
	Hidden       []int
	LearningRate float64
	Weights      []byte
	Classes      []int

	Scaler     *preprocessing.Scaler
	Encoder    *preprocessing.LabelEncoder
	InputOrder []string

	Metadata  Metadata
	CreatedAt time.Time

	model *models.NeuralNetwork
}

type Metadata struct {
	Dataset   string
	Accuracy  float64
	Precision float64
	Recall    float64
	F1Score   float64
	AUC       float64
}

type weightMarshaler interface {
	MarshalWeights() ([]byte, error)
}

// NewBundle captures a trained delegate. The delegate must be one of this
// package's serializable model types.
func NewBundle(model models.Model, scaler *preprocessing.Scaler, encoder *preprocessing.LabelEncoder, inputOrder []string) (*Bundle, error) {
	marshaler, ok := model.(weightMarshaler)
	if !ok {
		return nil, fmt.Errorf("model %s does not support weight serialization", model.GetName())
	}

	weights, err := marshaler.MarshalWeights()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize model: %w", err)
	}

	bundle := &Bundle{
		ModelName:  model.GetName(),
		Weights:    weights,
		Classes:    model.GetClasses(),
		Scaler:     scaler,
		Encoder:    encoder,
		InputOrder: inputOrder,
		CreatedAt:  time.Now(),
	}

	if nn, ok := model.(*models.NeuralNetwork); ok {
		bundle.Hidden = nn.Hidden
		bundle.LearningRate = nn.LearningRate
	}

	return bundle, nil
}

// Calculate scores one feature row with the bundled model and scaler,
// returning the positive-class probability. Mirrors the orchestrator's
// Calculate for deployments that only load a bundle.
func (b *Bundle) Calculate(row []decimal.Decimal) (float64, error) {
	if len(b.InputOrder) > 0 && len(row) != len(b.InputOrder) {
		return 0, fmt.Errorf("input row has %d features, bundle expects %d", len(row), len(b.InputOrder))
	}

	input := row
	if b.Scaler != nil {
		scaled, err := b.Scaler.TransformRow(row)
		if err != nil {
			return 0, err
		}
		input = scaled
	}

	model, err := b.restoreModel()
	if err != nil {
		return 0, err
	}

	floats := make([]float64, len(input))
	for j, v := range input {
		floats[j], _ = v.Float64()
	}

	proba := model.Predict([][]float64{floats})
	if len(proba) == 0 || len(proba[0]) == 0 {
		return 0, fmt.Errorf("bundled model returned no probabilities")
	}
	return proba[0][len(proba[0])-1], nil
}

func (b *Bundle) restoreModel() (*models.NeuralNetwork, error) {
	if b.model != nil {
		return b.model, nil
	}

	nn := models.NewNeuralNetwork(b.Hidden, b.LearningRate)
	nn.Name = b.ModelName
	nn.Classes = b.Classes
	if err := nn.UnmarshalWeights(b.Weights); err != nil {
		return nil, err
	}

	b.model = nn
	return nn, nil
}

// Store is the deployment capability the orchestrator composes: it owns a
// directory of saved bundles.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Save(bundle *Bundle, name string) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	file, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(bundle); err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	return nil
}

func (s *Store) Load(name string) (*Bundle, error) {
	file, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var bundle Bundle
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	return &bundle, nil
}

// LoadBundle reads a saved bundle from an arbitrary path, for deployments
// that only carry the file.
func LoadBundle(path string) (*Bundle, error) {
	dir, name := filepath.Split(path)
	return NewStore(dir).Load(name)
}

func (s *Store) SaveMetadata(bundle *Bundle, name string) error {
	file, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Model: %s\n", bundle.ModelName)
	fmt.Fprintf(file, "Dataset: %s\n", bundle.Metadata.Dataset)
	fmt.Fprintf(file, "Created: %s\n", bundle.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(file, "Accuracy: %.4f\n", bundle.Metadata.Accuracy)
	fmt.Fprintf(file, "Precision: %.4f\n", bundle.Metadata.Precision)
	fmt.Fprintf(file, "Recall: %.4f\n", bundle.Metadata.Recall)
	fmt.Fprintf(file, "F1 Score: %.4f\n", bundle.Metadata.F1Score)
	fmt.Fprintf(file, "AUC: %.4f\n", bundle.Metadata.AUC)

	return nil
}
