package main

import (
	"math"
	"strings"
)

var essentialColumnTypes = []ColumnType{ColumnStatus, ColumnPeople, ColumnDate, ColumnNumbers}

var recommendedColumnText = map[ColumnType]string{
	ColumnStatus:  "Add a Status column to track item progress",
	ColumnPeople:  "Add a People column to assign owners",
	ColumnDate:    "Add a Date column to track deadlines",
	ColumnNumbers: "Add a Numbers column to track effort or estimates",
}

// AnalyzeColumns scores the column set for completeness. The score weighs
// essential-type coverage at 0.7 and column count at 0.3; boards over 10
// columns lose count score linearly.
func AnalyzeColumns(columns []Column) ColumnAnalysis {
	present := make(map[ColumnType]bool, len(columns))
	seenTitles := make(map[string]bool, len(columns))
	var analysis ColumnAnalysis

	for _, col := range columns {
		present[col.Type] = true
		key := strings.ToLower(col.Title)
		if seenTitles[key] {
			analysis.DuplicateTitles = append(analysis.DuplicateTitles, col.Title)
		}
		seenTitles[key] = true
	}

	for _, t := range essentialColumnTypes {
		if !present[t] {
			analysis.MissingTypes = append(analysis.MissingTypes, t)
			analysis.Recommended = append(analysis.Recommended, recommendedColumnText[t])
		}
	}

	countScore := 1.0
	if len(columns) > 10 {
		countScore = clamp01(1.0 - float64(len(columns)-10)/10.0)
	}
	coverage := float64(len(essentialColumnTypes)-len(analysis.MissingTypes)) / float64(len(essentialColumnTypes))
	analysis.Score = scorePercent(0.7*coverage + 0.3*countScore)
	return analysis
}

const overloadedGroupThreshold = 20

// AnalyzeGroups compares group titles against the canonical workflow
// templates and checks item distribution. A group is imbalanced when it holds
// more than 20 items, or none at all and is not the terminal "done" group.
func AnalyzeGroups(groups []Group, items []Item, templates []WorkflowTemplate) GroupAnalysis {
	analysis := GroupAnalysis{
		ItemCounts: make(map[string]int, len(groups)),
	}
	if len(groups) == 0 {
		return analysis
	}

	bestScore := 0.0
	for _, tpl := range templates {
		score := templateMatchScore(tpl, groups)
		if score > bestScore {
			bestScore = score
			analysis.BestTemplate = tpl.Name
		}
	}
	analysis.MatchesKnownWorkflow = bestScore > 0.5

	countByGroupID := make(map[string]int, len(groups))
	for _, item := range items {
		countByGroupID[item.GroupID]++
	}
	for _, g := range groups {
		count := countByGroupID[g.ID]
		analysis.ItemCounts[g.Title] = count
		if count > overloadedGroupThreshold {
			analysis.ImbalancedGroups = append(analysis.ImbalancedGroups, g.Title)
		} else if count == 0 && !strings.EqualFold(g.Title, "done") {
			analysis.ImbalancedGroups = append(analysis.ImbalancedGroups, g.Title)
		}
	}

	alignment := 0.3
	if analysis.MatchesKnownWorkflow {
		alignment = bestScore
	}
	distribution := 1.0 - float64(len(analysis.ImbalancedGroups))/float64(len(groups))
	analysis.Score = scorePercent(0.6*alignment + 0.4*distribution)
	return analysis
}

func templateMatchScore(tpl WorkflowTemplate, groups []Group) float64 {
	if len(tpl.Stages) == 0 {
		return 0
	}
	matched := 0
	for _, stage := range tpl.Stages {
		stageLower := strings.ToLower(stage)
		for _, g := range groups {
			if strings.Contains(strings.ToLower(g.Title), stageLower) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tpl.Stages))
}

// AnalyzeWorkflow checks item data completeness: every item should carry a
// non-empty status, owner, and due date.
func AnalyzeWorkflow(items []Item) WorkflowAnalysis {
	analysis := WorkflowAnalysis{TotalItems: len(items)}
	if len(items) == 0 {
		return analysis
	}

	for _, item := range items {
		missing := false
		if !hasValue(item, isStatusValue) {
			analysis.MissingStatus++
			missing = true
		}
		if !hasValue(item, isOwnerValue) {
			analysis.MissingOwner++
			missing = true
		}
		if !hasValue(item, isDueDateValue) {
			analysis.MissingDueDate++
			missing = true
		}
		if missing {
			analysis.IncompleteItems++
		}
	}

	complete := analysis.TotalItems - analysis.IncompleteItems
	analysis.Score = scorePercent(float64(complete) / float64(analysis.TotalItems))
	return analysis
}

func hasValue(item Item, matches func(ColumnValue) bool) bool {
	for _, v := range item.Values {
		if matches(v) && strings.TrimSpace(v.Text) != "" {
			return true
		}
	}
	return false
}

func isStatusValue(v ColumnValue) bool {
	return v.Type == ColumnStatus
}

func isOwnerValue(v ColumnValue) bool {
	if v.Type == ColumnPeople {
		return true
	}
	title := strings.ToLower(v.Title)
	return strings.Contains(title, "owner") || strings.Contains(title, "assignee")
}

func isDueDateValue(v ColumnValue) bool {
	if v.Type == ColumnDate {
		return true
	}
	return strings.Contains(strings.ToLower(v.Title), "due")
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// scorePercent converts a [0,1] fraction to an integer score in [0,100].
func scorePercent(f float64) int {
	return int(math.Round(100 * clamp01(f)))
}
