package main

import (
	"sort"
	"strings"
)

const bottleneckMeanFactor = 1.5
const bottleneckFallbackCount = 3

// RankBottlenecks selects statuses with abnormal dwell times. Terminal
// statuses (names containing "done" or "complete") are excluded from the
// ranking but still count toward the overall mean. A status is significant
// when its average exceeds 1.5x the mean; if none clears the bar, the top 3
// non-terminal statuses are returned instead.
func RankBottlenecks(durations map[string]StatusDuration) []Bottleneck {
	if len(durations) == 0 {
		return nil
	}

	var sum float64
	var candidates []Bottleneck
	for status, d := range durations {
		sum += d.AverageHours
		if isTerminalStatus(status) {
			continue
		}
		candidates = append(candidates, Bottleneck{
			Status:       status,
			AverageHours: d.AverageHours,
			ItemCount:    d.TotalItems,
		})
	}
	mean := sum / float64(len(durations))

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].AverageHours != candidates[j].AverageHours {
			return candidates[i].AverageHours > candidates[j].AverageHours
		}
		return candidates[i].Status < candidates[j].Status
	})

	threshold := bottleneckMeanFactor * mean
	var significant []Bottleneck
	for _, c := range candidates {
		if c.AverageHours > threshold {
			significant = append(significant, c)
		}
	}
	if len(significant) > 0 {
		return significant
	}
	if len(candidates) > bottleneckFallbackCount {
		candidates = candidates[:bottleneckFallbackCount]
	}
	return candidates
}

func isTerminalStatus(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "done") || strings.Contains(s, "complete")
}
