package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type missingColumnRule struct {
	Type        ColumnType
	Title       string
	Description string
	Impact      Impact
	Benefits    []string
}

// Rule order below is the emission order of the suggestion list and is part
// of the contract; tests assert on sequence.
var missingColumnRules = []missingColumnRule{
	{
		Type:        ColumnStatus,
		Title:       "Add a Status column",
		Description: "The board has no status column, so item progress cannot be tracked or analyzed.",
		Impact:      ImpactHigh,
		Benefits:    []string{"Track item progress at a glance", "Enable bottleneck and dwell-time analysis"},
	},
	{
		Type:        ColumnPeople,
		Title:       "Add a People column",
		Description: "Items have no owner field, so accountability and workload cannot be tracked.",
		Impact:      ImpactHigh,
		Benefits:    []string{"Assign clear owners to every item", "Enable workload distribution views"},
	},
	{
		Type:        ColumnDate,
		Title:       "Add a Date column",
		Description: "Without due dates, deadline tracking and reminders are unavailable.",
		Impact:      ImpactMedium,
		Benefits:    []string{"Track deadlines per item", "Unlock due-date reminder automations"},
	},
	{
		Type:        ColumnNumbers,
		Title:       "Add a Numbers column",
		Description: "A numeric column lets the team size or estimate work consistently.",
		Impact:      ImpactMedium,
		Benefits:    []string{"Capture estimates or effort", "Compare planned versus actual work"},
	},
}

const incompletePercentThreshold = 20
const bottleneckSuggestionLimit = 2

// GenerateSuggestions maps analysis findings into a prioritized
// recommendation list. Emission follows the fixed rule order: missing
// columns, workflow template, overloaded groups, top bottlenecks, data
// quality, then the automation suggestions.
func GenerateSuggestions(
	columns ColumnAnalysis,
	groups GroupAnalysis,
	bottlenecks []Bottleneck,
	workflow WorkflowAnalysis,
	templates []WorkflowTemplate,
) []Suggestion {
	var suggestions []Suggestion

	missing := make(map[ColumnType]bool, len(columns.MissingTypes))
	for _, t := range columns.MissingTypes {
		missing[t] = true
	}
	for _, rule := range missingColumnRules {
		if !missing[rule.Type] {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Category:    CategoryStructure,
			Title:       rule.Title,
			Description: rule.Description,
			Impact:      rule.Impact,
			Benefits:    rule.Benefits,
		})
	}

	if !groups.MatchesKnownWorkflow && groups.BestTemplate != "" {
		if tpl, ok := findTemplate(templates, groups.BestTemplate); ok {
			suggestions = append(suggestions, Suggestion{
				Category:    CategoryWorkflow,
				Title:       "Align groups with a standard workflow",
				Description: fmt.Sprintf("Group names only partially match a known workflow. Consider the %s stages: %s.", tpl.Name, tpl.StageList()),
				Impact:      ImpactMedium,
				Benefits:    []string{"Make stage progression obvious", "Improve cross-board consistency"},
			})
		}
	}

	if overloaded := overloadedGroups(groups.ItemCounts); len(overloaded) > 0 {
		suggestions = append(suggestions, Suggestion{
			Category:    CategoryWorkflow,
			Title:       "Split overloaded groups",
			Description: fmt.Sprintf("These groups hold more than %d items: %s. Large groups hide stalled work.", overloadedGroupThreshold, strings.Join(overloaded, ", ")),
			Impact:      ImpactMedium,
			Benefits:    []string{"Keep stages reviewable", "Surface stalled items sooner"},
		})
	}

	for i, b := range bottlenecks {
		if i >= bottleneckSuggestionLimit {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Category:    CategoryBottleneck,
			Title:       fmt.Sprintf("Reduce time in %q", b.Status),
			Description: fmt.Sprintf("Items spend an average of %d hours in %q across %d item(s). Investigate what blocks progress out of this status.", int(math.Round(b.AverageHours)), b.Status, b.ItemCount),
			Impact:      ImpactHigh,
			Benefits:    []string{"Shorten cycle time", "Unblock stalled items"},
		})
	}

	if workflow.TotalItems > 0 {
		pct := int(math.Round(float64(workflow.IncompleteItems) / float64(workflow.TotalItems) * 100))
		if pct > incompletePercentThreshold {
			suggestions = append(suggestions, Suggestion{
				Category:    CategoryDataQuality,
				Title:       "Fill in missing item fields",
				Description: fmt.Sprintf("%d%% of items lack a status, owner, or due date. Incomplete items weaken every report built on this board.", pct),
				Impact:      ImpactMedium,
				Benefits:    []string{"Improve report accuracy", "Make ownership and deadlines visible"},
			})
		}
	}

	suggestions = append(suggestions, Suggestion{
		Category:    CategoryAutomation,
		Title:       "Notify on status changes",
		Description: "Add an automation that notifies the item owner when its status changes.",
		Impact:      ImpactMedium,
		Benefits:    []string{"Keep owners informed without manual pings", "React faster to blocked items"},
	})

	if !missing[ColumnDate] {
		suggestions = append(suggestions, Suggestion{
			Category:    CategoryAutomation,
			Title:       "Remind before due dates",
			Description: "Add an automation that reminds owners shortly before an item's due date.",
			Impact:      ImpactHigh,
			Benefits:    []string{"Reduce missed deadlines", "Spread work ahead of due dates"},
		})
	}

	return suggestions
}

func findTemplate(templates []WorkflowTemplate, name string) (WorkflowTemplate, bool) {
	for _, tpl := range templates {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return WorkflowTemplate{}, false
}

func overloadedGroups(itemCounts map[string]int) []string {
	var overloaded []string
	for title, count := range itemCounts {
		if count > overloadedGroupThreshold {
			overloaded = append(overloaded, title)
		}
	}
	sort.Strings(overloaded)
	return overloaded
}
