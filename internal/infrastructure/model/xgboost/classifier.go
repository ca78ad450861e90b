// Package xgboost runs inference over a serialized gradient-boosted tree
// ensemble via the leaves library, plus the label decoder that maps class
// indices back to category names.
package xgboost

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitryikh/leaves"

	"github.com/antonvlasov/documind/internal/core/domain"
)

// ensemble is the slice of the leaves API the classifier needs.
type ensemble interface {
	NFeatures() int
	NRawOutputGroups() int
	Predict(fvals []float64, nEstimators int, predictions []float64) error
}

type Classifier struct {
	model  ensemble
	labels []string
}

// Load reads the model dump and the label decoder. The label set is closed
// at load time: every class group the model can emit must be decodable, so
// a group/label count skew fails here instead of misclassifying later.
func Load(modelPath, labelsPath string) (*Classifier, error) {
	model, err := leaves.XGEnsembleFromFile(modelPath, false)
	if err != nil {
		return nil, fmt.Errorf("load classifier model: %w", err)
	}
	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	return newClassifier(model, labels)
}

func newClassifier(model ensemble, labels []string) (*Classifier, error) {
	groups := model.NRawOutputGroups()
	switch {
	case groups == len(labels):
	case groups == 1 && len(labels) == 2:
		// Binary models emit a single margin; two labels decode it.
	default:
		return nil, fmt.Errorf("model emits %d class groups but label decoder has %d labels", groups, len(labels))
	}
	return &Classifier{model: model, labels: labels}, nil
}

func loadLabels(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label decoder: %w", err)
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("parse label decoder: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("label decoder %s is empty", path)
	}
	return labels, nil
}

// Features reports the dimensionality the loaded model expects.
func (c *Classifier) Features() int { return c.model.NFeatures() }

func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Classify maps a feature vector to exactly one label from the closed set.
// A vector of the wrong dimensionality means the vectorizer and model
// artifacts are out of sync, which is a configuration fault.
func (c *Classifier) Classify(vector []float64) (string, error) {
	if len(vector) != c.model.NFeatures() {
		return "", domain.WrapError(
			domain.ErrDimensionMismatch,
			"classify",
			fmt.Errorf("vector has %d features, model expects %d", len(vector), c.model.NFeatures()),
		)
	}

	predictions := make([]float64, c.model.NRawOutputGroups())
	if err := c.model.Predict(vector, 0, predictions); err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}

	idx := decodeIndex(predictions)
	return c.labels[idx], nil
}

func decodeIndex(predictions []float64) int {
	if len(predictions) == 1 {
		// Binary margin: positive means the second class.
		if predictions[0] > 0 {
			return 1
		}
		return 0
	}
	best := 0
	for i, p := range predictions {
		if p > predictions[best] {
			best = i
		}
	}
	return best
}
