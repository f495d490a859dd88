package main

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func sampleAnalysis() *AnalysisResult {
	return &AnalysisResult{
		BoardID:   "42",
		BoardName: "Q3 Launch",
		Columns:   ColumnAnalysis{Score: 65},
		Groups: GroupAnalysis{
			Score:      70,
			ItemCounts: map[string]int{"To Do": 4, "In Progress": 2},
		},
		Workflow:     WorkflowAnalysis{Score: 70, TotalItems: 10, IncompleteItems: 3, MissingOwner: 2},
		StatusCounts: map[string]int{"Working on it": 5, "Done": 3},
		Bottlenecks: []Bottleneck{
			{Status: "Review", AverageHours: 40.4, ItemCount: 3},
			{Status: "Blocked", AverageHours: 12, ItemCount: 1},
		},
		Suggestions: []Suggestion{
			{Category: CategoryStructure, Title: "Add a Numbers column", Description: "desc", Impact: ImpactMedium},
			{Category: CategoryAutomation, Title: "Notify on status changes", Description: "desc", Impact: ImpactMedium},
		},
		EvaluatedAt: time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestSynthesizeResponseNeedsBoardSelection(t *testing.T) {
	c := QueryClassification{Intent: IntentShowBottlenecks, RequiresAnalysis: true}
	boards := []BoardRef{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}}

	resp := SynthesizeResponse(c, nil, nil, boards)

	if len(resp.Actions) != 1 || resp.Actions[0].Type != ActionSelectBoard {
		t.Fatalf("actions = %+v, want one select_board", resp.Actions)
	}
	if !strings.Contains(resp.Text, "Alpha (#1)") {
		t.Errorf("text %q should list available boards", resp.Text)
	}
}

func TestSelectBoardResponseTruncatesList(t *testing.T) {
	boards := make([]BoardRef, boardListLimit+2)
	for i := range boards {
		boards[i] = BoardRef{ID: fmt.Sprintf("%d", i+1), Name: fmt.Sprintf("Board %d", i+1)}
	}

	resp := selectBoardResponse(boards)

	if !strings.Contains(resp.Text, "…") {
		t.Errorf("text %q should mark the truncated tail", resp.Text)
	}
	last := fmt.Sprintf("Board %d (#%d)", boardListLimit, boardListLimit)
	if !strings.Contains(resp.Text, last) {
		t.Errorf("text %q should include the last board within the limit (%s)", resp.Text, last)
	}
	over := fmt.Sprintf("Board %d", boardListLimit+1)
	if strings.Contains(resp.Text, over) {
		t.Errorf("text %q should not list boards past the limit (%s)", resp.Text, over)
	}
}

func TestSynthesizeResponseOffersAnalysisRun(t *testing.T) {
	c := QueryClassification{Intent: IntentShowEfficiency, RequiresAnalysis: true}
	selected := &BoardRef{ID: "42", Name: "Q3 Launch"}

	resp := SynthesizeResponse(c, nil, selected, nil)

	if len(resp.Actions) != 1 || resp.Actions[0].Type != ActionRunAnalysis || resp.Actions[0].BoardID != "42" {
		t.Fatalf("actions = %+v, want run_analysis for board 42", resp.Actions)
	}
}

func TestSynthesizeResponseGreeting(t *testing.T) {
	c := ClassifyQuery("hello")
	resp := SynthesizeResponse(c, nil, nil, nil)

	if !strings.Contains(resp.Text, "Hi!") {
		t.Errorf("text = %q, want a greeting", resp.Text)
	}
	if len(resp.FollowUps) == 0 {
		t.Error("greeting should carry follow-up prompts")
	}
}

func TestSynthesizeResponseCreateWorkspace(t *testing.T) {
	c := QueryClassification{
		Intent:   IntentCreateWorkspace,
		Entities: QueryEntities{WorkspaceType: "marketing"},
	}
	resp := SynthesizeResponse(c, nil, nil, nil)

	if len(resp.Actions) != 1 || resp.Actions[0].Type != ActionCreateWorkspace {
		t.Fatalf("actions = %+v, want one create_workspace", resp.Actions)
	}
	if resp.Actions[0].WorkspaceType != "marketing" {
		t.Errorf("WorkspaceType = %q, want marketing", resp.Actions[0].WorkspaceType)
	}
	if !strings.Contains(resp.Text, "marketing workspace") {
		t.Errorf("text = %q, want workspace type mentioned", resp.Text)
	}
}

func TestBottlenecksResponseVisualization(t *testing.T) {
	resp := bottlenecksResponse(sampleAnalysis())

	if !strings.Contains(resp.Text, `"Review": 40 hours`) {
		t.Errorf("text = %q, want rounded Review hours", resp.Text)
	}
	if len(resp.Visualizations) != 1 {
		t.Fatalf("visualizations = %+v, want one", resp.Visualizations)
	}
	viz := resp.Visualizations[0]
	if viz.Kind != "bottleneck_chart" {
		t.Errorf("viz kind = %q, want bottleneck_chart", viz.Kind)
	}
	if len(viz.Data) != 2 || viz.Data[0].Label != "Review" || viz.Data[0].Value != 40.4 {
		t.Errorf("viz data = %+v, want Review first with raw hours", viz.Data)
	}
}

func TestBottlenecksResponseNoBottlenecks(t *testing.T) {
	a := sampleAnalysis()
	a.Bottlenecks = nil
	resp := bottlenecksResponse(a)

	if len(resp.Visualizations) != 0 {
		t.Errorf("visualizations = %+v, want none", resp.Visualizations)
	}
	if !strings.Contains(resp.Text, "No status bottlenecks") {
		t.Errorf("text = %q, want no-bottleneck message", resp.Text)
	}
}

func TestRecommendationsResponseCategoryFilter(t *testing.T) {
	resp := recommendationsResponse(sampleAnalysis(), "automation")
	if !strings.Contains(resp.Text, "Notify on status changes") {
		t.Errorf("text = %q, want automation suggestion", resp.Text)
	}
	if strings.Contains(resp.Text, "Add a Numbers column") {
		t.Errorf("text = %q, structure suggestion should be filtered out", resp.Text)
	}

	empty := recommendationsResponse(sampleAnalysis(), "bottleneck")
	if !strings.Contains(empty.Text, "No bottleneck recommendations") {
		t.Errorf("text = %q, want empty-category message", empty.Text)
	}
}

func TestVisualizeResponseDefaultsToStatusFlow(t *testing.T) {
	resp := visualizeResponse(sampleAnalysis(), "")
	if len(resp.Visualizations) != 1 || resp.Visualizations[0].Kind != "status_flow" {
		t.Errorf("visualizations = %+v, want status_flow", resp.Visualizations)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Type != ActionViewVisualization {
		t.Errorf("actions = %+v, want view_visualization", resp.Actions)
	}
}

func TestVisualizeResponseStatusDistribution(t *testing.T) {
	resp := visualizeResponse(sampleAnalysis(), "status_distribution")
	viz := resp.Visualizations[0]
	if viz.Kind != "status_distribution" {
		t.Fatalf("kind = %q, want status_distribution", viz.Kind)
	}
	// Points sorted by label.
	if len(viz.Data) != 2 || viz.Data[0].Label != "Done" || viz.Data[1].Label != "Working on it" {
		t.Errorf("data = %+v, want sorted status counts", viz.Data)
	}
}

func TestStatusReportResponseTimeframe(t *testing.T) {
	resp := statusReportResponse(sampleAnalysis(), &Timeframe{Unit: "day", Value: 3})
	if !strings.Contains(resp.Text, "(last 3 days)") {
		t.Errorf("text = %q, want timeframe scope", resp.Text)
	}
	// (65 + 70 + 70) / 3 = 68.
	if !strings.Contains(resp.Text, "good (68/100)") {
		t.Errorf("text = %q, want overall health 68", resp.Text)
	}
}

func TestEfficiencyLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{95, "highly efficient"},
		{80, "highly efficient"},
		{79, "good"},
		{60, "good"},
		{59, "moderate"},
		{40, "moderate"},
		{39, "low"},
		{0, "low"},
	}
	for _, tt := range tests {
		if got := efficiencyLabel(tt.score); got != tt.want {
			t.Errorf("efficiencyLabel(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
