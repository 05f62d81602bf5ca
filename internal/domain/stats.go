package domain

import (
	"math"
	"time"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// BoostPercentage returns the size reduction as a percentage of initial,
// rounded half to even to two decimals. An empty input has no boost.
func BoostPercentage(initial, optimized int) float64 {
	if initial == 0 {
		return 0
	}

	boost := 100 * float64(initial-optimized) / float64(initial)

	return math.RoundToEven(boost*100) / 100
}

// Summarize totals a batch of reports. Failed files count toward Files only.
func Summarize(reports []m.Report) m.Summary {
	var (
		summary m.Summary
		elapsed time.Duration
	)

	for _, report := range reports {
		summary.Files++

		if report.Failed() {
			summary.Failed++
			continue
		}

		summary.InitialSize += report.Stats.InitialSize
		summary.OptimizedSize += report.Stats.OptimizedSize
		elapsed += report.Stats.Elapsed
	}

	summary.Boost = BoostPercentage(summary.InitialSize, summary.OptimizedSize)
	summary.Elapsed = elapsed

	return summary
}
