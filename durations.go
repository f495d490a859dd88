package main

import "time"

// ItemStatusDurations is the per-item dwell-time breakdown, in hours per
// status. Retained for item-level detail views; not part of AnalysisResult.
type ItemStatusDurations struct {
	ItemID   string
	ItemName string
	Hours    map[string]float64
}

// AggregateDurations converts status changes into per-status dwell durations.
// For consecutive changes of one item, the earlier change's resulting status
// accrues the time until the next change; the most recent status accrues time
// until now. Results therefore depend on the evaluation instant: re-running
// at a later time grows the open status's dwell time. That is by contract,
// not a bug.
func AggregateDurations(changes []StatusChange, now time.Time) (map[string]StatusDuration, []ItemStatusDurations) {
	byItem := make(map[string][]StatusChange)
	names := make(map[string]string)
	var itemOrder []string
	for _, c := range changes {
		if _, seen := byItem[c.ItemID]; !seen {
			itemOrder = append(itemOrder, c.ItemID)
		}
		byItem[c.ItemID] = append(byItem[c.ItemID], c)
		names[c.ItemID] = c.ItemName
	}

	totals := make(map[string]float64)
	contributors := make(map[string]map[string]bool)
	var breakdown []ItemStatusDurations

	for _, itemID := range itemOrder {
		itemChanges := byItem[itemID]
		sortChangesByTime(itemChanges)

		hours := make(map[string]float64)
		for i, c := range itemChanges {
			var until time.Time
			if i+1 < len(itemChanges) {
				until = itemChanges[i+1].Timestamp
			} else {
				until = now
			}
			dwell := until.Sub(c.Timestamp).Hours()
			if dwell <= 0 {
				continue
			}
			hours[c.New] += dwell
		}

		for status, h := range hours {
			totals[status] += h
			if contributors[status] == nil {
				contributors[status] = make(map[string]bool)
			}
			contributors[status][itemID] = true
		}
		breakdown = append(breakdown, ItemStatusDurations{
			ItemID:   itemID,
			ItemName: names[itemID],
			Hours:    hours,
		})
	}

	durations := make(map[string]StatusDuration, len(totals))
	for status, total := range totals {
		count := len(contributors[status])
		durations[status] = StatusDuration{
			AverageHours: total / float64(count),
			TotalItems:   count,
		}
	}
	return durations, breakdown
}
