package indicators

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

type ZScoreStats struct {
	Mean              float64
	StandardDeviation float64
	ZScore            float64
}

// ZScore measures x against window using the sample standard deviation.
// epsilon is added to the deviation so a flat window yields a finite score.
func ZScore(x float64, window []float64, epsilon float64) (ZScoreStats, error) {
	if len(window) < 2 {
		return ZScoreStats{}, fmt.Errorf("ZScore: window needs at least 2 values, got %d", len(window))
	}

	mean, err := stats.Mean(window)
	if err != nil {
		return ZScoreStats{}, fmt.Errorf("ZScore: failed to calculate mean: %w", err)
	}

	sd, err := stats.StandardDeviationSample(window)
	if err != nil {
		return ZScoreStats{}, fmt.Errorf("ZScore: failed to calculate the standard deviation: %w", err)
	}

	return ZScoreStats{
		Mean:              mean,
		StandardDeviation: sd,
		ZScore:            (x - mean) / (sd + epsilon),
	}, nil
}
