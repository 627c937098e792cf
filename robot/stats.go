package robot

import (
	"context"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"go.viam.com/frcbot/logging"
)

// Telemetry keys of the loop statistics.
const (
	KeyLoopMean     = "RobotLoopMeanMs"
	KeyLoopP95      = "RobotLoopP95Ms"
	KeyLoopMax      = "RobotLoopMaxMs"
	KeyLoopOverruns = "RobotLoopOverruns"
)

// LoopStats records how long cycles take. A cycle taking longer than the loop period is an
// overrun.
type LoopStats struct {
	mu        sync.Mutex
	period    time.Duration
	durations stats.Float64Data
	overruns  int
}

// LoopSummary summarizes the cycles recorded since the last reset.
type LoopSummary struct {
	Cycles   int
	Overruns int
	Mean     time.Duration
	P95      time.Duration
	Max      time.Duration
}

// NewLoopStats returns empty statistics for a loop running every period.
func NewLoopStats(period time.Duration) *LoopStats {
	return &LoopStats{period: period}
}

// Record adds the duration of one cycle.
func (ls *LoopStats) Record(d time.Duration) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.durations = append(ls.durations, float64(d)/float64(time.Millisecond))
	if d > ls.period {
		ls.overruns++
	}
}

// Summary summarizes the recorded cycles.
func (ls *LoopStats) Summary() LoopSummary {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	summary := LoopSummary{Cycles: len(ls.durations), Overruns: ls.overruns}
	if len(ls.durations) == 0 {
		return summary
	}
	// errors only on empty input
	mean, _ := ls.durations.Mean()
	p95, _ := ls.durations.Percentile(95)
	maxDuration, _ := ls.durations.Max()
	summary.Mean = millis(mean)
	summary.P95 = millis(p95)
	summary.Max = millis(maxDuration)
	return summary
}

// Reset forgets every recorded cycle.
func (ls *LoopStats) Reset() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.durations = nil
	ls.overruns = 0
}

// Report logs the summary and publishes it to telemetry, then resets.
func (ls *LoopStats) Report(ctx context.Context, telemetry logging.Telemetry, logger logging.Logger) LoopSummary {
	summary := ls.Summary()
	ls.Reset()
	if summary.Cycles == 0 {
		return summary
	}
	telemetry.LogNumber(KeyLoopMean, toMillis(summary.Mean))
	telemetry.LogNumber(KeyLoopP95, toMillis(summary.P95))
	telemetry.LogNumber(KeyLoopMax, toMillis(summary.Max))
	telemetry.LogNumber(KeyLoopOverruns, float64(summary.Overruns))
	logger.CInfow(ctx, "loop stats",
		"cycles", summary.Cycles,
		"overruns", summary.Overruns,
		"mean", summary.Mean,
		"p95", summary.P95,
		"max", summary.Max,
	)
	return summary
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
