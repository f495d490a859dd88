package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type ActionType string

const (
	ActionSelectBoard       ActionType = "select_board"
	ActionRunAnalysis       ActionType = "run_analysis"
	ActionViewVisualization ActionType = "view_visualization"
	ActionCreateWorkspace   ActionType = "create_workspace"
)

// ResponseAction is a typed directive for the caller; the core never executes
// board mutations or renders anything itself.
type ResponseAction struct {
	Type              ActionType
	BoardID           string
	VisualizationType string
	WorkspaceType     string
}

type ChartPoint struct {
	Label string
	Value float64
}

// Visualization is a typed summary of data to display, not rendered output.
type Visualization struct {
	Kind  string // bottleneck_chart, workload_distribution, status_flow, status_distribution
	Title string
	Data  []ChartPoint
}

type Response struct {
	Text           string
	Actions        []ResponseAction
	Visualizations []Visualization
	FollowUps      []string
}

// efficiencyLabel maps a 0-100 score to its qualitative tier.
func efficiencyLabel(score int) string {
	switch {
	case score >= 80:
		return "highly efficient"
	case score >= 60:
		return "good"
	case score >= 40:
		return "moderate"
	default:
		return "low"
	}
}

// SynthesizeResponse produces a templated answer for a classified query,
// grounded in the current analysis state. Pure dispatch on intent: it never
// fails for well-formed input, and absent optional data simply skips the
// corresponding branch.
func SynthesizeResponse(c QueryClassification, analysis *AnalysisResult, selected *BoardRef, boards []BoardRef) Response {
	if c.Intent == IntentGeneralQuery {
		return generalQueryResponse(c, selected)
	}
	if c.Intent == IntentCreateWorkspace {
		return createWorkspaceResponse(c)
	}

	if c.RequiresAnalysis && selected == nil {
		return selectBoardResponse(boards)
	}
	if c.RequiresAnalysis && analysis == nil {
		return Response{
			Text: fmt.Sprintf("I haven't analyzed %q yet. Want me to run an analysis now?", selected.Name),
			Actions: []ResponseAction{
				{Type: ActionRunAnalysis, BoardID: selected.ID},
			},
			FollowUps: []string{"Analyze my board"},
		}
	}

	switch c.Intent {
	case IntentAnalyzeWorkflow:
		return analyzeWorkflowResponse(analysis)
	case IntentShowBottlenecks:
		return bottlenecksResponse(analysis)
	case IntentShowEfficiency:
		return efficiencyResponse(analysis)
	case IntentGetRecommendations:
		return recommendationsResponse(analysis, c.Entities.Category)
	case IntentTeamAnalysis:
		return teamAnalysisResponse(analysis, c.Entities.Person)
	case IntentVisualizeWorkflow:
		return visualizeResponse(analysis, c.Entities.Visualization)
	case IntentStatusReport:
		return statusReportResponse(analysis, c.Entities.Timeframe)
	}
	return clarifyResponse()
}

// boardListLimit caps board listings everywhere boards are enumerated for the
// user, in /boards as well as in selection prompts.
const boardListLimit = 10

func selectBoardResponse(boards []BoardRef) Response {
	text := "Which board should I look at? Pick one with `/board <name or id>`."
	if len(boards) > 0 {
		var names []string
		for i, b := range boards {
			if i >= boardListLimit {
				names = append(names, "…")
				break
			}
			names = append(names, fmt.Sprintf("%s (#%s)", b.Name, b.ID))
		}
		text += "\nAvailable boards: " + strings.Join(names, ", ")
	}
	return Response{
		Text:    text,
		Actions: []ResponseAction{{Type: ActionSelectBoard}},
	}
}

func generalQueryResponse(c QueryClassification, selected *BoardRef) Response {
	q := strings.ToLower(c.Entities.RawQuery)
	switch {
	case containsAny(q, "hello", "hi ", "hey") || q == "hi":
		return Response{
			Text: "Hi! I analyze project boards: structure scores, status bottlenecks, and optimization suggestions. " +
				"Try \"analyze my board\" or \"show me bottlenecks\".",
			FollowUps: []string{"Analyze my board", "Show me bottlenecks", "Give me recommendations"},
		}
	case containsAny(q, "what can you do", "help", "capabilities"):
		return Response{
			Text: "I can analyze a board's workflow, surface status bottlenecks, score efficiency, " +
				"recommend improvements, summarize team workload, and describe visualizations of the data.",
			FollowUps: []string{"Analyze my board", "How efficient is my workflow?"},
		}
	case selected == nil:
		return Response{
			Text:    "I'm not sure what you mean, and no board is selected yet. Pick a board first with `/board <name or id>`.",
			Actions: []ResponseAction{{Type: ActionSelectBoard}},
		}
	}
	return clarifyResponse()
}

func clarifyResponse() Response {
	return Response{
		Text:      "I didn't catch that. Could you rephrase? For example: \"show me bottlenecks\" or \"how efficient is my board?\"",
		FollowUps: []string{"Analyze my board", "Show me bottlenecks"},
	}
}

func createWorkspaceResponse(c QueryClassification) Response {
	text := "I can set up a workspace from a template or a custom layout. Which would you like?"
	if c.Entities.WorkspaceType != "" {
		text = fmt.Sprintf("I can set up a %s workspace from a template, or build a custom layout. Which would you like?", c.Entities.WorkspaceType)
	}
	return Response{
		Text: text,
		Actions: []ResponseAction{
			{Type: ActionCreateWorkspace, WorkspaceType: c.Entities.WorkspaceType},
		},
		FollowUps: []string{"Use a template", "Start from scratch"},
	}
}

func analyzeWorkflowResponse(a *AnalysisResult) Response {
	overall := (a.Columns.Score + a.Groups.Score + a.Workflow.Score) / 3
	text := fmt.Sprintf("Here's the workflow analysis for %q — overall it looks %s.\n", a.BoardName, efficiencyLabel(overall)) +
		fmt.Sprintf("• Structure: %d/100\n• Groups: %d/100\n• Data completeness: %d/100", a.Columns.Score, a.Groups.Score, a.Workflow.Score)
	if len(a.Bottlenecks) > 0 {
		text += fmt.Sprintf("\nBiggest bottleneck: %q at %d hours on average.", a.Bottlenecks[0].Status, int(math.Round(a.Bottlenecks[0].AverageHours)))
	}
	if n := len(a.Suggestions); n > 0 {
		text += fmt.Sprintf("\nI have %d suggestion(s) to improve this board.", n)
	}
	return Response{
		Text:      text,
		FollowUps: []string{"Show me bottlenecks", "Give me recommendations", "Visualize the workflow"},
	}
}

func bottlenecksResponse(a *AnalysisResult) Response {
	if len(a.Bottlenecks) == 0 {
		return Response{
			Text:      fmt.Sprintf("No status bottlenecks stand out on %q right now.", a.BoardName),
			FollowUps: []string{"Show efficiency scores", "Give me recommendations"},
		}
	}
	var lines []string
	var points []ChartPoint
	for _, b := range a.Bottlenecks {
		lines = append(lines, fmt.Sprintf("• %q: %d hours on average across %d item(s)", b.Status, int(math.Round(b.AverageHours)), b.ItemCount))
		points = append(points, ChartPoint{Label: b.Status, Value: b.AverageHours})
	}
	return Response{
		Text: fmt.Sprintf("Top bottlenecks on %q:\n%s", a.BoardName, strings.Join(lines, "\n")),
		Visualizations: []Visualization{{
			Kind:  "bottleneck_chart",
			Title: fmt.Sprintf("Average hours in status — %s", a.BoardName),
			Data:  points,
		}},
		FollowUps: []string{"Give me recommendations", "Show the status flow"},
	}
}

func efficiencyResponse(a *AnalysisResult) Response {
	text := fmt.Sprintf("Efficiency breakdown for %q:\n", a.BoardName) +
		fmt.Sprintf("• Structure: %d/100 (%s)\n", a.Columns.Score, efficiencyLabel(a.Columns.Score)) +
		fmt.Sprintf("• Groups: %d/100 (%s)\n", a.Groups.Score, efficiencyLabel(a.Groups.Score)) +
		fmt.Sprintf("• Data completeness: %d/100 (%s)", a.Workflow.Score, efficiencyLabel(a.Workflow.Score))
	return Response{
		Text:      text,
		FollowUps: []string{"Give me recommendations", "Show me bottlenecks"},
	}
}

func recommendationsResponse(a *AnalysisResult, category string) Response {
	suggestions := a.Suggestions
	if category != "" {
		var filtered []Suggestion
		for _, s := range suggestions {
			if strings.EqualFold(string(s.Category), category) {
				filtered = append(filtered, s)
			}
		}
		suggestions = filtered
	}
	if len(suggestions) == 0 {
		return Response{
			Text:      fmt.Sprintf("No %s recommendations for %q right now.", strings.ToLower(orDefault(category, "open")), a.BoardName),
			FollowUps: []string{"Analyze my board again"},
		}
	}
	var lines []string
	for i, s := range suggestions {
		if i >= 5 {
			lines = append(lines, fmt.Sprintf("…and %d more.", len(suggestions)-i))
			break
		}
		lines = append(lines, fmt.Sprintf("• [%s impact] %s — %s", s.Impact, s.Title, s.Description))
	}
	return Response{
		Text:      fmt.Sprintf("Recommendations for %q:\n%s", a.BoardName, strings.Join(lines, "\n")),
		FollowUps: []string{"Show me bottlenecks", "Show efficiency scores"},
	}
}

func teamAnalysisResponse(a *AnalysisResult, person string) Response {
	text := fmt.Sprintf("Team view for %q: %d item(s) total, %d without an owner.",
		a.BoardName, a.Workflow.TotalItems, a.Workflow.MissingOwner)
	if person != "" {
		text += fmt.Sprintf(" I can't break down items for %s yet — owner-level filtering needs every item to carry a People value.", person)
	}
	viz := Visualization{
		Kind:  "workload_distribution",
		Title: fmt.Sprintf("Items per group — %s", a.BoardName),
		Data:  sortedCountPoints(a.Groups.ItemCounts),
	}
	return Response{
		Text:           text,
		Visualizations: []Visualization{viz},
		FollowUps:      []string{"Show me bottlenecks", "Give me data quality recommendations"},
	}
}

func visualizeResponse(a *AnalysisResult, kind string) Response {
	if kind == "" {
		kind = "status_flow"
	}
	viz := Visualization{Kind: kind}
	switch kind {
	case "bottleneck_chart":
		viz.Title = fmt.Sprintf("Average hours in status — %s", a.BoardName)
		for _, b := range a.Bottlenecks {
			viz.Data = append(viz.Data, ChartPoint{Label: b.Status, Value: b.AverageHours})
		}
	case "workload_distribution":
		viz.Title = fmt.Sprintf("Items per group — %s", a.BoardName)
		viz.Data = sortedCountPoints(a.Groups.ItemCounts)
	case "status_distribution":
		viz.Title = fmt.Sprintf("Items per status — %s", a.BoardName)
		viz.Data = sortedCountPoints(a.StatusCounts)
	default:
		viz.Kind = "status_flow"
		viz.Title = fmt.Sprintf("Status flow — %s", a.BoardName)
	}
	return Response{
		Text: fmt.Sprintf("Here's the %s for %q.", strings.ReplaceAll(viz.Kind, "_", " "), a.BoardName),
		Actions: []ResponseAction{
			{Type: ActionViewVisualization, BoardID: a.BoardID, VisualizationType: viz.Kind},
		},
		Visualizations: []Visualization{viz},
		FollowUps:      []string{"Show me bottlenecks", "Show efficiency scores"},
	}
}

func statusReportResponse(a *AnalysisResult, tf *Timeframe) Response {
	scope := ""
	if tf != nil {
		unit := tf.Unit
		if tf.Value != 1 {
			unit += "s"
		}
		scope = fmt.Sprintf(" (last %d %s)", tf.Value, unit)
	}
	overall := (a.Columns.Score + a.Groups.Score + a.Workflow.Score) / 3
	text := fmt.Sprintf("Status report for %q%s:\n", a.BoardName, scope) +
		fmt.Sprintf("• Overall health: %s (%d/100)\n", efficiencyLabel(overall), overall) +
		fmt.Sprintf("• Items: %d total, %d incomplete\n", a.Workflow.TotalItems, a.Workflow.IncompleteItems) +
		fmt.Sprintf("• Bottlenecks: %d\n• Open suggestions: %d", len(a.Bottlenecks), len(a.Suggestions))
	return Response{
		Text:      text,
		FollowUps: []string{"Show me bottlenecks", "Give me recommendations"},
	}
}

func sortedCountPoints(counts map[string]int) []ChartPoint {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	points := make([]ChartPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, ChartPoint{Label: k, Value: float64(counts[k])})
	}
	return points
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
