package classify

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/swinglab/internal/domain/features"
)

// Default stand-in model parameters.
const (
	defaultRandomSeed = 42
	steepAbove        = 55.0
	flatBelow         = 35.0
	idealPlane        = 45.0
	idealTempo        = 2.5
	planeSoftness     = 5.0
)

// InMemoryOption configures an InMemoryClassifier.
type InMemoryOption func(*InMemoryClassifier)

// WithLatencyRange simulates a remote model call taking between min and max.
func WithLatencyRange(minLatency, maxLatency time.Duration) InMemoryOption {
	return func(c *InMemoryClassifier) {
		if minLatency >= 0 && maxLatency > minLatency {
			c.minLatency = minLatency
			c.maxLatency = maxLatency
		}
	}
}

// WithPlaneBounds overrides the plane angles beyond which a swing is steep or flat.
func WithPlaneBounds(flat, steep float64) InMemoryOption {
	return func(c *InMemoryClassifier) {
		if flat < steep {
			c.flatBelow = flat
			c.steepAbove = steep
		}
	}
}

// InMemoryClassifier is a deterministic stand-in for the external model. It
// scores each label from the plane angle and tempo ratio and takes a softmax.
type InMemoryClassifier struct {
	flatBelow  float64
	steepAbove float64
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewInMemoryClassifier creates a classifier with no simulated latency.
func NewInMemoryClassifier(opts ...InMemoryOption) *InMemoryClassifier {
	c := &InMemoryClassifier{
		flatBelow:  flatBelow,
		steepAbove: steepAbove,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic latency for reproducible runs
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify implements Classifier.
func (c *InMemoryClassifier) Classify(ctx context.Context, vec []float64) (Prediction, error) {
	if len(vec) != features.Size {
		return Prediction{}, fmt.Errorf("%w: got %d", ErrInvalidFeatureCount, len(vec))
	}
	if err := c.wait(ctx); err != nil {
		return Prediction{}, err
	}

	plane := vec[features.SlotPlaneAngle]
	tempo := vec[features.SlotTempoRatio]
	scores := map[Label]float64{
		LabelTooSteep:  (plane - c.steepAbove) / planeSoftness,
		LabelTooFlat:   (c.flatBelow - plane) / planeSoftness,
		LabelGoodSwing: 1 - math.Abs(plane-idealPlane)/(2*planeSoftness) - math.Abs(tempo-idealTempo)/2,
	}

	probs := softmax(scores)
	best := LabelGoodSwing
	for _, l := range Labels() {
		if probs[l] > probs[best] {
			best = l
		}
	}
	return Prediction{Label: best, Confidence: probs[best], Probabilities: probs}, nil
}

func (c *InMemoryClassifier) wait(ctx context.Context) error {
	if c.maxLatency <= 0 {
		return nil
	}
	c.mu.Lock()
	latency := c.minLatency + time.Duration(c.rng.Int63n(int64(c.maxLatency-c.minLatency)))
	c.mu.Unlock()

	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func softmax(scores map[Label]float64) map[Label]float64 {
	peak := math.Inf(-1)
	for _, s := range scores {
		peak = math.Max(peak, s)
	}
	sum := 0.0
	out := make(map[Label]float64, len(scores))
	for l, s := range scores {
		out[l] = math.Exp(s - peak)
		sum += out[l]
	}
	for l := range out {
		out[l] /= sum
	}
	return out
}
