package swingsim

import (
	"context"
	"fmt"

	"github.com/okian/swinglab/pkg/logger"
)

// ProfileResult tallies the outcomes for one profile.
type ProfileResult struct {
	Profile    string
	Completed  int
	Matches    int
	Failed     int
	Mismatches map[string]int
}

// verifyResults checks every completed analysis against its profile's expected label.
func verifyResults(ctx context.Context, swings []Swing, results map[string]Analysis, stats *Stats) error {
	log := logger.Get()
	if len(results) == 0 {
		return fmt.Errorf("%w: no analyses completed", ErrVerification)
	}

	byProfile := tally(swings, results)
	for _, p := range Profiles() {
		r, ok := byProfile[p.Name]
		if !ok {
			continue
		}
		stats.ResultsCompleted += r.Completed
		stats.ResultsFailed += r.Failed
		stats.LabelMatches += r.Matches
		stats.LabelMismatches += r.Completed - r.Matches

		log.Info(ctx, "profile results",
			logger.String("profile", p.Name),
			logger.String("expected", string(p.Expected)),
			logger.Int("completed", r.Completed),
			logger.Int("matches", r.Matches),
			logger.Int("failed", r.Failed),
			logger.Any("mismatches", r.Mismatches))
	}

	if stats.ResultsFailed > 0 || stats.LabelMismatches > 0 {
		return fmt.Errorf("%w: %d failed, %d mislabeled", ErrVerification, stats.ResultsFailed, stats.LabelMismatches)
	}
	log.Info(ctx, "result verification completed")
	return nil
}

func tally(swings []Swing, results map[string]Analysis) map[string]*ProfileResult {
	out := make(map[string]*ProfileResult)
	for _, s := range swings {
		a, ok := results[s.Request.ID]
		if !ok {
			continue
		}
		r := out[s.Profile]
		if r == nil {
			r = &ProfileResult{Profile: s.Profile, Mismatches: map[string]int{}}
			out[s.Profile] = r
		}
		if a.Status == StatusFailed || a.Report == nil {
			r.Failed++
			continue
		}
		r.Completed++
		p, _ := ProfileByName(s.Profile)
		if a.Report.Label == string(p.Expected) {
			r.Matches++
		} else {
			r.Mismatches[a.Report.Label]++
		}
	}
	return out
}
