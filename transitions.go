package main

import (
	"encoding/json"
	"sort"
	"strings"
)

// statusChangePayload is the shape of an activity event's data once decoded.
// The board API sometimes double-encodes it as a JSON string.
type statusChangePayload struct {
	ColumnID      string          `json:"column_id"`
	ColumnTitle   string          `json:"column_title"`
	Value         json.RawMessage `json:"value"`
	PreviousValue json.RawMessage `json:"previous_value"`
}

// ExtractStatusChanges reconstructs ordered status transitions from the raw
// activity log. Events that are not column-value changes, do not target the
// status column, fail to decode, or would be no-ops are dropped silently.
func ExtractStatusChanges(events []ActivityEvent) []StatusChange {
	var changes []StatusChange
	for _, ev := range events {
		if ev.Event != eventColumnValueChanged {
			continue
		}
		payload, ok := decodeEventPayload(ev.Data)
		if !ok {
			continue
		}
		if !isStatusColumn(payload.ColumnID, payload.ColumnTitle) {
			continue
		}
		prev := decodeStatusValue(payload.PreviousValue)
		next := decodeStatusValue(payload.Value)
		if next == "" || prev == next {
			continue
		}
		changes = append(changes, StatusChange{
			ItemID:    ev.EntityID,
			ItemName:  ev.EntityName,
			Previous:  prev,
			New:       next,
			Timestamp: ev.CreatedAt,
			UserID:    ev.UserID,
		})
	}
	return changes
}

func decodeEventPayload(data string) (statusChangePayload, bool) {
	var payload statusChangePayload
	if data == "" {
		return payload, false
	}
	raw := []byte(data)
	// Double-encoded payloads arrive as a JSON string containing JSON.
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		raw = []byte(inner)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, false
	}
	if payload.ColumnID == "" && payload.ColumnTitle == "" {
		return payload, false
	}
	return payload, true
}

func isStatusColumn(columnID, columnTitle string) bool {
	id := strings.ToLower(columnID)
	if id == "status" || strings.Contains(id, "status") {
		return true
	}
	return strings.Contains(strings.ToLower(columnTitle), "status")
}

// decodeStatusValue extracts the status label from a raw value. Values are
// usually JSON objects like {"label": "In Progress"}; anything undecodable
// falls back to the raw text with quotes stripped.
func decodeStatusValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var labeled struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(raw, &labeled); err == nil && labeled.Label != "" {
		return labeled.Label
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Trim(string(raw), `"`))
}

// BuildTransitionMatrix counts observed status -> target transitions.
func BuildTransitionMatrix(changes []StatusChange) map[string]map[string]int {
	matrix := make(map[string]map[string]int)
	for _, c := range changes {
		if c.Previous == "" {
			continue
		}
		if matrix[c.Previous] == nil {
			matrix[c.Previous] = make(map[string]int)
		}
		matrix[c.Previous][c.New]++
	}
	return matrix
}

// sortChangesByTime orders a single item's changes chronologically.
func sortChangesByTime(changes []StatusChange) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Timestamp.Before(changes[j].Timestamp)
	})
}
