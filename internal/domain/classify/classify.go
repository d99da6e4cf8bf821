// Package classify adapts an external swing classifier to the feature pipeline.
package classify

import (
	"context"
	"slices"
)

// Label is a swing class.
type Label string

// Labels produced by classifiers.
const (
	LabelGoodSwing Label = "good_swing"
	LabelTooSteep  Label = "too_steep"
	LabelTooFlat   Label = "too_flat"

	// LabelUnclassified marks reports produced without a classifier call.
	LabelUnclassified Label = "unclassified"
)

// Labels returns the closed set a classifier may answer with.
func Labels() []Label {
	return []Label{LabelGoodSwing, LabelTooSteep, LabelTooFlat}
}

// Known reports whether l belongs to the classifier label set.
func (l Label) Known() bool {
	return slices.Contains(Labels(), l)
}

// Prediction is the raw classifier answer.
type Prediction struct {
	Label      Label
	Confidence float64
	// Probabilities is optional.
	Probabilities map[Label]float64
}

// Classifier maps a feature vector to a label. Implementations may block and
// must honor ctx.
type Classifier interface {
	Classify(ctx context.Context, features []float64) (Prediction, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, features []float64) (Prediction, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, features []float64) (Prediction, error) {
	return f(ctx, features)
}

// Result is a validated prediction with the values echoed from the vector.
type Result struct {
	Label         Label
	Confidence    float64
	ConfidenceGap float64
	Probabilities map[Label]float64
	PlaneAngle    float64
	TempoRatio    float64
}
