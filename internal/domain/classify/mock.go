package classify

import (
	"context"
	"sync"
	"time"
)

// Mock implements Classifier for testing.
type Mock struct {
	// ClassifyFunc is called when Classify is invoked.
	ClassifyFunc func(ctx context.Context, features []float64) (Prediction, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Classify invocation.
type MockCall struct {
	Features []float64
	Time     time.Time
}

// NewMock returns a mock answering good_swing with confidence 0.8.
func NewMock() *Mock {
	return &Mock{
		ClassifyFunc: func(context.Context, []float64) (Prediction, error) {
			return Prediction{
				Label:      LabelGoodSwing,
				Confidence: 0.8,
				Probabilities: map[Label]float64{
					LabelGoodSwing: 0.8,
					LabelTooSteep:  0.1,
					LabelTooFlat:   0.1,
				},
			}, nil
		},
	}
}

// Classify calls ClassifyFunc and records the call.
func (m *Mock) Classify(ctx context.Context, features []float64) (Prediction, error) {
	m.record(features)
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, features)
	}
	return Prediction{}, ErrInferenceFailure
}

func (m *Mock) record(features []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := make([]float64, len(features))
	copy(in, features)
	m.calls = append(m.calls, MockCall{Features: in, Time: time.Now()})
}

// Calls returns all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Classify calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
