package model

import (
	"errors"
	"fmt"
)

// ErrBadOutput reports a model that did not produce one probability per
// category.
var ErrBadOutput = errors.New("model output is not a 4-way distribution")

// Classifier selects the most likely category from a Model's output.
type Classifier struct {
	model Model
}

// NewClassifier wraps m. The classifier does not own m; callers close it.
func NewClassifier(m Model) *Classifier {
	return &Classifier{model: m}
}

// Kind reports the backend of the wrapped model.
func (c *Classifier) Kind() string {
	return c.model.Kind()
}

// Classify runs inference and returns the argmax category and its
// probability. The first index wins ties.
func (c *Classifier) Classify(in Tensor) (Prediction, error) {
	probs, err := c.model.Predict(in)
	if err != nil {
		return Prediction{}, fmt.Errorf("inference failed: %w", err)
	}
	if len(probs) != NumClasses {
		return Prediction{}, fmt.Errorf("%w: got %d values", ErrBadOutput, len(probs))
	}

	var p Prediction
	copy(p.Probabilities[:], probs)

	maxIdx := 0
	for i, v := range p.Probabilities {
		if v > p.Probabilities[maxIdx] {
			maxIdx = i
		}
	}
	p.Category = Categories[maxIdx]
	p.Confidence = p.Probabilities[maxIdx]
	return p, nil
}
