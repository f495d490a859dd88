package main

import (
	"strings"
	"testing"
)

func suggestionTitles(suggestions []Suggestion) []string {
	titles := make([]string, len(suggestions))
	for i, s := range suggestions {
		titles[i] = s.Title
	}
	return titles
}

func TestGenerateSuggestionsEmissionOrder(t *testing.T) {
	columns := ColumnAnalysis{MissingTypes: []ColumnType{ColumnStatus, ColumnPeople}}
	groups := GroupAnalysis{
		MatchesKnownWorkflow: false,
		BestTemplate:         "Basic Kanban",
		ItemCounts:           map[string]int{"Sprint backlog": 25, "Done": 3},
	}
	bottlenecks := []Bottleneck{
		{Status: "Review", AverageHours: 40, ItemCount: 3},
		{Status: "Blocked", AverageHours: 30, ItemCount: 2},
		{Status: "To Do", AverageHours: 10, ItemCount: 5},
	}
	workflow := WorkflowAnalysis{TotalItems: 10, IncompleteItems: 3}

	suggestions := GenerateSuggestions(columns, groups, bottlenecks, workflow, builtinTemplates)

	want := []string{
		"Add a Status column",
		"Add a People column",
		"Align groups with a standard workflow",
		"Split overloaded groups",
		`Reduce time in "Review"`,
		`Reduce time in "Blocked"`,
		"Fill in missing item fields",
		"Notify on status changes",
		"Remind before due dates",
	}
	got := suggestionTitles(suggestions)
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Only the top two bottlenecks produce suggestions.
	for _, title := range got {
		if title == `Reduce time in "To Do"` {
			t.Error("third bottleneck produced a suggestion, want only top 2")
		}
	}
}

func TestGenerateSuggestionsImpactAndCategory(t *testing.T) {
	columns := ColumnAnalysis{MissingTypes: []ColumnType{ColumnStatus, ColumnDate}}
	suggestions := GenerateSuggestions(columns, GroupAnalysis{}, nil, WorkflowAnalysis{}, builtinTemplates)

	byTitle := make(map[string]Suggestion)
	for _, s := range suggestions {
		byTitle[s.Title] = s
	}

	if s := byTitle["Add a Status column"]; s.Impact != ImpactHigh || s.Category != CategoryStructure {
		t.Errorf("status suggestion = %+v, want High/Structure", s)
	}
	if s := byTitle["Add a Date column"]; s.Impact != ImpactMedium {
		t.Errorf("date suggestion impact = %s, want Medium", s.Impact)
	}
	if s := byTitle["Notify on status changes"]; s.Category != CategoryAutomation || s.Impact != ImpactMedium {
		t.Errorf("notification suggestion = %+v, want Automation/Medium", s)
	}
}

func TestGenerateSuggestionsDueDateReminderRequiresDateColumn(t *testing.T) {
	withDate := GenerateSuggestions(ColumnAnalysis{}, GroupAnalysis{}, nil, WorkflowAnalysis{}, builtinTemplates)
	if !containsTitle(withDate, "Remind before due dates") {
		t.Error("date column present but no due-date reminder suggestion")
	}

	missingDate := ColumnAnalysis{MissingTypes: []ColumnType{ColumnDate}}
	withoutDate := GenerateSuggestions(missingDate, GroupAnalysis{}, nil, WorkflowAnalysis{}, builtinTemplates)
	if containsTitle(withoutDate, "Remind before due dates") {
		t.Error("due-date reminder suggested although the board has no date column")
	}
}

func TestGenerateSuggestionsDataQualityThreshold(t *testing.T) {
	// Exactly 20% incomplete does not trigger the data-quality suggestion.
	atThreshold := GenerateSuggestions(ColumnAnalysis{}, GroupAnalysis{}, nil,
		WorkflowAnalysis{TotalItems: 10, IncompleteItems: 2}, builtinTemplates)
	if containsTitle(atThreshold, "Fill in missing item fields") {
		t.Error("data-quality suggestion emitted at exactly 20%")
	}

	above := GenerateSuggestions(ColumnAnalysis{}, GroupAnalysis{}, nil,
		WorkflowAnalysis{TotalItems: 10, IncompleteItems: 3}, builtinTemplates)
	if !containsTitle(above, "Fill in missing item fields") {
		t.Error("data-quality suggestion missing at 30% incomplete")
	}
}

func TestGenerateSuggestionsHealthyBoard(t *testing.T) {
	groups := GroupAnalysis{
		MatchesKnownWorkflow: true,
		BestTemplate:         "Basic Kanban",
		ItemCounts:           map[string]int{"To Do": 4, "Done": 2},
	}
	suggestions := GenerateSuggestions(ColumnAnalysis{}, groups, nil,
		WorkflowAnalysis{TotalItems: 6}, builtinTemplates)

	// A healthy board still gets the two automation suggestions, nothing else.
	want := []string{"Notify on status changes", "Remind before due dates"}
	got := suggestionTitles(suggestions)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("suggestions = %v, want %v", got, want)
	}
}

func TestGenerateSuggestionsOverloadedGroupsSorted(t *testing.T) {
	groups := GroupAnalysis{
		ItemCounts: map[string]int{"Zeta": 30, "Alpha": 25, "Small": 5},
	}
	suggestions := GenerateSuggestions(ColumnAnalysis{}, groups, nil, WorkflowAnalysis{}, builtinTemplates)

	var desc string
	for _, s := range suggestions {
		if s.Title == "Split overloaded groups" {
			desc = s.Description
		}
	}
	if desc == "" {
		t.Fatal("no overloaded-groups suggestion")
	}
	if !strings.Contains(desc, "Alpha, Zeta") {
		t.Errorf("description %q should list groups alphabetically", desc)
	}
	if strings.Contains(desc, "Small") {
		t.Errorf("description %q names a group under the threshold", desc)
	}
}

func containsTitle(suggestions []Suggestion, title string) bool {
	for _, s := range suggestions {
		if s.Title == title {
			return true
		}
	}
	return false
}
