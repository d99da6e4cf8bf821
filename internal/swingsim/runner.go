package swingsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/swinglab/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// ErrVerification is returned when the service disagrees with the generated profiles.
var ErrVerification = errors.New("verification failed")

// Run executes the complete load run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting swing simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("swings", config.NumSwings),
		logger.Int("frames", config.Frames),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	swings := generateSwings(config, stats)

	if err := checkSync(ctx, config); err != nil {
		return fmt.Errorf("synchronous analysis failed: %w", err)
	}

	submitSwings(ctx, config, swings, stats)

	log.Info(ctx, "waiting for analyses to complete")
	results, err := awaitResults(ctx, config, swings, stats)
	if err != nil {
		return fmt.Errorf("result retrieval failed: %w", err)
	}

	verifyErr := verifyResults(ctx, swings, results, stats)

	if config.OutputFile != "" {
		if err := saveSwingsToFile(ctx, config.OutputFile, swings); err != nil {
			log.Warn(ctx, "failed to save swings to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return verifyErr
	}
	log.Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readResponseBody(resp)

	// Any 200 is healthy; the body is the Prometheus exposition.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// generateSwings cycles through the built-in profiles.
func generateSwings(config *Config, stats *Stats) []Swing {
	profiles := Profiles()
	swings := make([]Swing, config.NumSwings)
	for i := range swings {
		p := profiles[i%len(profiles)]
		gen := NewGenerator(
			WithProfile(p),
			WithFrames(config.Frames),
			WithSeed(config.Seed+int64(i)),
		)
		swings[i] = Swing{Request: Encode(uuid.NewString(), gen.Swing()), Profile: p.Name}
	}
	stats.SwingsGenerated = len(swings)
	return swings
}

// checkSync analyzes one swing per profile through POST /v1/analyze.
func checkSync(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	for _, p := range Profiles() {
		req := Encode("", NewGenerator(WithProfile(p), WithFrames(config.Frames), WithSeed(config.Seed)).Swing())
		resp, err := client.Post(ctx, config.BaseURL+"/v1/analyze", req)
		if err != nil {
			return err
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return err
		}
		if resp.StatusCode != StatusOK {
			return fmt.Errorf("profile %s: status %d", p.Name, resp.StatusCode)
		}
		var rep Report
		if err := json.Unmarshal(body, &rep); err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}
		if rep.Label != string(p.Expected) {
			return fmt.Errorf("%w: profile %s classified %s, want %s", ErrVerification, p.Name, rep.Label, p.Expected)
		}
	}
	logger.Get().Info(ctx, "synchronous analysis verified", logger.Int("profiles", len(Profiles())))
	return nil
}

// awaitResults polls every accepted swing until it leaves pending or the wait times out.
func awaitResults(ctx context.Context, config *Config, swings []Swing, stats *Stats) (map[string]Analysis, error) {
	client := newHTTPClient(config.Timeout)
	results := make(map[string]Analysis, len(swings))
	pending := make(map[string]struct{}, len(swings))
	for _, s := range swings {
		pending[s.Request.ID] = struct{}{}
	}

	waitCtx, cancel := context.WithTimeout(ctx, config.WaitTimeout)
	defer cancel()
	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for len(pending) > 0 {
		for id := range pending {
			var a Analysis
			err := client.GetJSON(waitCtx, config.BaseURL+"/v1/analyses/"+id, &a)
			if err != nil {
				if waitCtx.Err() != nil {
					break
				}
				// Rejected submissions were never stored.
				delete(pending, id)
				continue
			}
			if a.Status != StatusPending {
				results[id] = a
				delete(pending, id)
			}
		}
		if len(pending) == 0 {
			break
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			stats.ResultsPending = len(pending)
			logger.Get().Warn(ctx, "stopped waiting for analyses", logger.Int("pending", len(pending)))
			return results, nil
		case <-ticker.C:
		}
	}
	return results, nil
}

// saveSwingsToFile writes the generated swings as a JSON array.
func saveSwingsToFile(ctx context.Context, filename string, swings []Swing) error {
	if len(swings) == 0 {
		return errors.New("no swings to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(swings); err != nil {
		return fmt.Errorf("failed to write swings: %w", err)
	}
	logger.Get().Info(ctx, "swings saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var matchRate, swingsPerSecond float64
	if checked := stats.LabelMatches + stats.LabelMismatches; checked > 0 {
		matchRate = float64(stats.LabelMatches) / float64(checked) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		swingsPerSecond = float64(stats.SwingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("swingsGenerated", stats.SwingsGenerated),
		logger.Int("swingsSubmitted", stats.SwingsSubmitted),
		logger.Int("swingsAccepted", stats.SwingsAccepted),
		logger.Int("swingsDuplicate", stats.SwingsDuplicate),
		logger.Int("swingsRejected", stats.SwingsRejected),
		logger.Int("swingsFailed", stats.SwingsFailed),
		logger.Int("resultsCompleted", stats.ResultsCompleted),
		logger.Int("resultsFailed", stats.ResultsFailed),
		logger.Int("resultsPending", stats.ResultsPending),
		logger.Duration("duration", stats.Duration),
		logger.Float64("labelMatchRate", matchRate),
		logger.Float64("swingsPerSecond", swingsPerSecond))
}
