// Package service wires the swing analysis pipeline and exposes it to the
// transport layer.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/swinglab/internal/domain/classify"
	"github.com/okian/swinglab/internal/domain/features"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/domain/report"
	"github.com/okian/swinglab/internal/domain/validate"
	"github.com/okian/swinglab/pkg/logger"
	"github.com/okian/swinglab/pkg/metrics"
)

// Pipeline runs validation, feature assembly, classification and report
// synthesis for one swing.
type Pipeline struct {
	assembler *features.Assembler
	adapter   *classify.Adapter
	logger    logger.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	logger         logger.Logger
	classifierName string
	assemblerOpts  []features.Option
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(l logger.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClassifierName names the classifier in errors and logs.
func WithClassifierName(name string) PipelineOption {
	return func(c *pipelineConfig) { c.classifierName = name }
}

// WithAssemblerOptions passes options through to the feature assembler.
func WithAssemblerOptions(opts ...features.Option) PipelineOption {
	return func(c *pipelineConfig) { c.assemblerOpts = append(c.assemblerOpts, opts...) }
}

// NewPipeline builds a pipeline around classifier c.
func NewPipeline(c classify.Classifier, opts ...PipelineOption) *Pipeline {
	cfg := pipelineConfig{logger: logger.Nop(), classifierName: "classifier"}
	for _, opt := range opts {
		opt(&cfg)
	}
	asmOpts := append([]features.Option{features.WithLogger(cfg.logger.Named("features"))}, cfg.assemblerOpts...)
	return &Pipeline{
		assembler: features.NewAssembler(asmOpts...),
		adapter: classify.NewAdapter(c,
			classify.WithName(cfg.classifierName),
			classify.WithLogger(cfg.logger.Named("classify"))),
		logger: cfg.logger,
	}
}

// Analyze produces the report for seq. Sequences too short to analyze yield
// a degraded report without consulting the classifier. Errors are limited to
// classifier failures, a wrong vector length and context cancellation.
func (p *Pipeline) Analyze(ctx context.Context, seq pose.Sequence) (report.Report, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPipelineLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	v := validate.Validate(seq)
	if !v.OK {
		rep := report.Synthesize(report.Input{Validation: v, Assembly: features.Assembly{Frames: v.Frames}})
		metrics.RecordAnalysis(string(report.StatusDegraded), string(v.Tier))
		p.logger.Info(ctx, "swing degraded", logger.Int("frames", v.Frames), logger.Error(v.Err()))
		return rep, nil
	}

	asm := p.assembler.Assemble(ctx, seq)
	if asm.Recovered() {
		metrics.RecordRecovery(string(asm.Recovery.Step))
	}

	cstart := time.Now()
	res, err := p.adapter.Classify(ctx, asm.Vector.Slice())
	metrics.RecordClassifierLatency(float64(time.Since(cstart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordInferenceError(ErrorKind(err))
		return report.Report{}, err
	}

	rep := report.Synthesize(report.Input{Validation: v, Assembly: asm, Classification: res})
	metrics.RecordAnalysis(string(report.StatusSuccess), string(v.Tier))
	metrics.RecordClassification(string(res.Label))
	p.logger.Debug(ctx, "swing analyzed",
		logger.String("label", string(res.Label)),
		logger.Float64("confidence", res.Confidence),
		logger.Float64("plane_angle", res.PlaneAngle),
		logger.String("tier", string(v.Tier)),
		logger.Bool("plane_recovered", asm.Recovered()),
	)
	return rep, nil
}

// Error kinds reported by ErrorKind.
const (
	KindInvalidFeatureCount = "invalid_feature_count"
	KindInferenceFailure    = "inference_failure"
	KindCanceled            = "canceled"
	KindDeadline            = "deadline_exceeded"
	KindInternal            = "internal"
)

// ErrorKind classifies a pipeline error for metrics and transport mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, classify.ErrInvalidFeatureCount):
		return KindInvalidFeatureCount
	case errors.Is(err, classify.ErrInferenceFailure):
		return KindInferenceFailure
	case errors.Is(err, context.DeadlineExceeded):
		return KindDeadline
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}
