package main

import (
	"regexp"
	"strconv"
	"strings"
)

type Intent string

const (
	IntentAnalyzeWorkflow    Intent = "analyze_workflow"
	IntentShowBottlenecks    Intent = "show_bottlenecks"
	IntentShowEfficiency     Intent = "show_efficiency"
	IntentGetRecommendations Intent = "get_recommendations"
	IntentCreateWorkspace    Intent = "create_workspace"
	IntentTeamAnalysis       Intent = "team_analysis"
	IntentVisualizeWorkflow  Intent = "visualize_workflow"
	IntentStatusReport       Intent = "status_report"
	IntentGeneralQuery       Intent = "general_query"
)

// Timeframe is a relative time window extracted from a query.
type Timeframe struct {
	Unit  string // "day", "week", "month"
	Value int
}

type QueryEntities struct {
	Board         string // board name or id; "current" for the selected board
	Timeframe     *Timeframe
	Category      string
	Person        string
	Visualization string
	WorkspaceType string
	RawQuery      string
}

type QueryClassification struct {
	Intent           Intent
	Score            float64
	Entities         QueryEntities
	RequiresAnalysis bool
}

type intentRule struct {
	Intent           Intent
	Patterns         []string
	RequiresAnalysis bool
	Extract          func(query string, e *QueryEntities)
}

// intentRules is ordered: the scorer updates its pick only on a strictly
// greater score, so the earlier-declared intent wins ties.
var intentRules = []intentRule{
	{
		Intent:           IntentAnalyzeWorkflow,
		Patterns:         []string{"analyze", "analysis", "workflow", "how is my board", "board health"},
		RequiresAnalysis: true,
		Extract:          func(q string, e *QueryEntities) { e.Board = extractBoardRef(q) },
	},
	{
		Intent:           IntentShowBottlenecks,
		Patterns:         []string{"bottleneck", "stuck", "slow", "delay", "wait time"},
		RequiresAnalysis: true,
		Extract: func(q string, e *QueryEntities) {
			e.Board = extractBoardRef(q)
			e.Timeframe = extractTimeframe(q)
		},
	},
	{
		Intent:           IntentShowEfficiency,
		Patterns:         []string{"efficiency", "score", "how efficient", "performance", "rating"},
		RequiresAnalysis: true,
		Extract:          func(q string, e *QueryEntities) { e.Board = extractBoardRef(q) },
	},
	{
		Intent:           IntentGetRecommendations,
		Patterns:         []string{"recommend", "suggest", "improve", "optimize", "what should"},
		RequiresAnalysis: true,
		Extract: func(q string, e *QueryEntities) {
			e.Board = extractBoardRef(q)
			e.Category = extractCategory(q)
		},
	},
	{
		Intent:           IntentCreateWorkspace,
		Patterns:         []string{"create workspace", "new workspace", "set up a workspace", "create a board", "new board"},
		RequiresAnalysis: false,
		Extract:          func(q string, e *QueryEntities) { e.WorkspaceType = extractWorkspaceType(q) },
	},
	{
		Intent:           IntentTeamAnalysis,
		Patterns:         []string{"team", "who is", "workload", "assigned to", "working on"},
		RequiresAnalysis: true,
		Extract: func(q string, e *QueryEntities) {
			e.Board = extractBoardRef(q)
			e.Person = extractPerson(q)
		},
	},
	{
		Intent:           IntentVisualizeWorkflow,
		Patterns:         []string{"visualize", "chart", "graph", "show me a chart", "diagram"},
		RequiresAnalysis: true,
		Extract: func(q string, e *QueryEntities) {
			e.Board = extractBoardRef(q)
			e.Visualization = extractVisualizationKind(q)
		},
	},
	{
		Intent:           IntentStatusReport,
		Patterns:         []string{"status report", "summary", "overview", "report", "what happened"},
		RequiresAnalysis: true,
		Extract: func(q string, e *QueryEntities) {
			e.Board = extractBoardRef(q)
			e.Timeframe = extractTimeframe(q)
		},
	},
}

const intentScoreThreshold = 0.3

// ClassifyQuery scores a free-text query against the intent table. Score per
// intent is the fraction of its patterns found as substrings of the
// lower-cased query. Below the 0.3 threshold the query becomes a
// general_query carrying the raw text. Classification never fails.
func ClassifyQuery(query string) QueryClassification {
	lower := strings.ToLower(query)

	var best *intentRule
	bestScore := 0.0
	for i := range intentRules {
		rule := &intentRules[i]
		matched := 0
		for _, p := range rule.Patterns {
			if strings.Contains(lower, p) {
				matched++
			}
		}
		score := float64(matched) / float64(len(rule.Patterns))
		if score > bestScore {
			bestScore = score
			best = rule
		}
	}

	if best == nil || bestScore < intentScoreThreshold {
		return QueryClassification{
			Intent:   IntentGeneralQuery,
			Score:    bestScore,
			Entities: QueryEntities{RawQuery: query},
		}
	}

	entities := QueryEntities{RawQuery: query}
	best.Extract(lower, &entities)
	return QueryClassification{
		Intent:           best.Intent,
		Score:            bestScore,
		Entities:         entities,
		RequiresAnalysis: best.RequiresAnalysis,
	}
}

var boardNameRegex = regexp.MustCompile(`board\s+(?:called|named)?\s*"([^"]+)"`)
var boardIDRegex = regexp.MustCompile(`board\s+#?(\d+)`)

func extractBoardRef(query string) string {
	if m := boardNameRegex.FindStringSubmatch(query); len(m) > 1 {
		return m[1]
	}
	if m := boardIDRegex.FindStringSubmatch(query); len(m) > 1 {
		return m[1]
	}
	for _, phrase := range []string{"current board", "this board", "my board", "the board"} {
		if strings.Contains(query, phrase) {
			return "current"
		}
	}
	return ""
}

var timeframeRegex = regexp.MustCompile(`(?:last|past|previous)?\s*(\d+)\s*(day|week|month)s?`)

func extractTimeframe(query string) *Timeframe {
	switch {
	case strings.Contains(query, "today"):
		return &Timeframe{Unit: "day", Value: 1}
	case strings.Contains(query, "this week"):
		return &Timeframe{Unit: "week", Value: 1}
	case strings.Contains(query, "last week"):
		return &Timeframe{Unit: "week", Value: 1}
	case strings.Contains(query, "this month"):
		return &Timeframe{Unit: "month", Value: 1}
	}
	if m := timeframeRegex.FindStringSubmatch(query); len(m) > 2 {
		value, err := strconv.Atoi(m[1])
		if err != nil || value <= 0 {
			return nil
		}
		return &Timeframe{Unit: m[2], Value: value}
	}
	return nil
}

func extractCategory(query string) string {
	for _, category := range []string{"structure", "workflow", "bottleneck", "data quality", "automation"} {
		if strings.Contains(query, category) {
			return category
		}
	}
	return ""
}

var quotedPersonRegex = regexp.MustCompile(`"([^"]+)"`)
var forPersonRegex = regexp.MustCompile(`(?:for|by|about)\s+([a-z]+(?:\s+[a-z]+)?)\s*\??$`)

func extractPerson(query string) string {
	if m := quotedPersonRegex.FindStringSubmatch(query); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := forPersonRegex.FindStringSubmatch(query); len(m) > 1 {
		name := strings.TrimSpace(m[1])
		switch name {
		case "me", "everyone", "the team", "us":
			return ""
		}
		return name
	}
	return ""
}

func extractVisualizationKind(query string) string {
	switch {
	case strings.Contains(query, "bottleneck"):
		return "bottleneck_chart"
	case strings.Contains(query, "workload") || strings.Contains(query, "distribution"):
		return "workload_distribution"
	case strings.Contains(query, "flow"):
		return "status_flow"
	case strings.Contains(query, "status"):
		return "status_distribution"
	}
	return ""
}

func extractWorkspaceType(query string) string {
	for _, kind := range []string{"project", "crm", "marketing", "development", "hr"} {
		if strings.Contains(query, kind) {
			return kind
		}
	}
	return ""
}
