package classify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/swinglab/internal/domain/features"
	"github.com/okian/swinglab/pkg/logger"
)

// confidenceBaseline is subtracted from the confidence to form the gap.
const confidenceBaseline = 0.5

// Option configures an Adapter.
type Option func(*Adapter)

// WithName sets the classifier name used in errors and logs.
func WithName(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.name = name
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// Adapter makes exactly one classifier call per Classify and validates the answer.
type Adapter struct {
	classifier Classifier
	name       string
	log        logger.Logger
}

// NewAdapter wraps c.
func NewAdapter(c Classifier, opts ...Option) *Adapter {
	a := &Adapter{classifier: c, name: "classifier", log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Classify validates the vector length, calls the classifier once and checks
// its answer. Cancellation is only observed right before and right after the
// call; a canceled context is returned as the context error.
func (a *Adapter) Classify(ctx context.Context, vec []float64) (Result, error) {
	if len(vec) != features.Size {
		return Result{}, fmt.Errorf("%w: got %d, want %d", ErrInvalidFeatureCount, len(vec), features.Size)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("classify: before inference: %w", err)
	}

	in := make([]float64, len(vec))
	copy(in, vec)

	start := time.Now()
	pred, err := a.classifier.Classify(ctx, in)
	elapsed := time.Since(start)

	if cerr := ctx.Err(); cerr != nil {
		return Result{}, fmt.Errorf("classify: after inference: %w", cerr)
	}
	if err != nil {
		a.log.Warn(ctx, "classifier call failed", logger.String("classifier", a.name), logger.Duration("elapsed", elapsed), logger.Error(err))
		return Result{}, &InferenceError{Classifier: a.name, Err: err}
	}
	if err := check(pred); err != nil {
		a.log.Warn(ctx, "classifier returned malformed output", logger.String("classifier", a.name), logger.Error(err))
		return Result{}, &InferenceError{Classifier: a.name, Err: err}
	}

	a.log.Debug(ctx, "classified swing",
		logger.String("label", string(pred.Label)),
		logger.Float64("confidence", pred.Confidence),
		logger.Duration("elapsed", elapsed))

	probs := make(map[Label]float64, len(pred.Probabilities))
	for l, p := range pred.Probabilities {
		probs[l] = p
	}
	return Result{
		Label:         pred.Label,
		Confidence:    pred.Confidence,
		ConfidenceGap: pred.Confidence - confidenceBaseline,
		Probabilities: probs,
		PlaneAngle:    vec[features.SlotPlaneAngle],
		TempoRatio:    vec[features.SlotTempoRatio],
	}, nil
}

func check(p Prediction) error {
	if !p.Label.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, p.Label)
	}
	if !unit(p.Confidence) {
		return fmt.Errorf("%w: confidence %v", ErrConfidenceRange, p.Confidence)
	}
	for l, v := range p.Probabilities {
		if !l.Known() {
			return fmt.Errorf("%w: probability for %q", ErrUnknownLabel, l)
		}
		if !unit(v) {
			return fmt.Errorf("%w: probability %v for %s", ErrConfidenceRange, v, l)
		}
	}
	return nil
}

func unit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
