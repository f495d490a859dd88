package main

import (
	"strings"
	"time"
)

// ColumnType is the recognized type of a board column. The board API reports
// types as loose strings with several synonyms; ResolveColumnType maps them
// once at ingestion.
type ColumnType string

const (
	ColumnStatus     ColumnType = "status"
	ColumnPeople     ColumnType = "people"
	ColumnDate       ColumnType = "date"
	ColumnNumbers    ColumnType = "numbers"
	ColumnText       ColumnType = "text"
	ColumnDropdown   ColumnType = "dropdown"
	ColumnTimeline   ColumnType = "timeline"
	ColumnDependency ColumnType = "dependency"
	ColumnUnknown    ColumnType = "unknown"
)

var columnTypeSynonyms = map[string]ColumnType{
	"status":          ColumnStatus,
	"color":           ColumnStatus,
	"people":          ColumnPeople,
	"person":          ColumnPeople,
	"multiple-person": ColumnPeople,
	"date":            ColumnDate,
	"numbers":         ColumnNumbers,
	"numeric":         ColumnNumbers,
	"number":          ColumnNumbers,
	"text":            ColumnText,
	"long-text":       ColumnText,
	"dropdown":        ColumnDropdown,
	"timeline":        ColumnTimeline,
	"dependency":      ColumnDependency,
}

func ResolveColumnType(raw string) ColumnType {
	if t, ok := columnTypeSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return ColumnUnknown
}

type Column struct {
	ID    string
	Title string
	Type  ColumnType
}

type Group struct {
	ID    string
	Title string
}

type ColumnValue struct {
	ColumnID string
	Title    string
	Type     ColumnType
	Text     string
	Value    string // raw, often JSON-encoded
}

type Item struct {
	ID      string
	Name    string
	GroupID string
	Values  []ColumnValue
}

// ActivityEvent is one entry of the board's activity log. Data is the raw
// payload; only column-value-change events are consumed downstream.
type ActivityEvent struct {
	ID         string
	Event      string
	CreatedAt  time.Time
	EntityID   string
	EntityName string
	UserID     string
	UserName   string
	Data       string
}

const eventColumnValueChanged = "update_column_value"

// BoardSnapshot is one immutable fetch of a board. A new analysis run always
// fetches a fresh snapshot.
type BoardSnapshot struct {
	ID       string
	Name     string
	Columns  []Column
	Groups   []Group
	Items    []Item
	Activity []ActivityEvent
}

type BoardRef struct {
	ID   string
	Name string
}

// StatusChange is a retained status transition for one item. Previous and New
// always differ; no-op changes are dropped during extraction.
type StatusChange struct {
	ItemID    string
	ItemName  string
	Previous  string
	New       string
	Timestamp time.Time
	UserID    string
}

// StatusDuration aggregates dwell time for one status across items.
type StatusDuration struct {
	AverageHours float64
	TotalItems   int
}

type Bottleneck struct {
	Status       string
	AverageHours float64
	ItemCount    int
}

type SuggestionCategory string

const (
	CategoryStructure   SuggestionCategory = "Structure"
	CategoryWorkflow    SuggestionCategory = "Workflow"
	CategoryBottleneck  SuggestionCategory = "Bottleneck"
	CategoryDataQuality SuggestionCategory = "Data Quality"
	CategoryAutomation  SuggestionCategory = "Automation"
)

type Impact string

const (
	ImpactLow    Impact = "Low"
	ImpactMedium Impact = "Medium"
	ImpactHigh   Impact = "High"
)

type Suggestion struct {
	Category    SuggestionCategory
	Title       string
	Description string
	Impact      Impact
	Benefits    []string
}

type ColumnAnalysis struct {
	MissingTypes    []ColumnType
	DuplicateTitles []string
	Recommended     []string
	Score           int
}

type GroupAnalysis struct {
	MatchesKnownWorkflow bool
	BestTemplate         string
	ItemCounts           map[string]int // group title -> item count
	ImbalancedGroups     []string
	Score                int
}

// WorkflowAnalysis covers item data completeness.
type WorkflowAnalysis struct {
	MissingStatus   int
	MissingOwner    int
	MissingDueDate  int
	IncompleteItems int
	TotalItems      int
	Score           int
}

// AnalysisResult is the artifact of one analysis run over one snapshot.
type AnalysisResult struct {
	BoardID      string
	BoardName    string
	Columns      ColumnAnalysis
	Groups       GroupAnalysis
	Workflow     WorkflowAnalysis
	Transitions  map[string]map[string]int // status -> target -> count
	StatusCounts map[string]int            // current status value -> item count
	Bottlenecks  []Bottleneck
	Suggestions  []Suggestion
	EvaluatedAt  time.Time
}

// CountItemStatuses tallies items by their current status value. Items
// without a status are skipped.
func CountItemStatuses(items []Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		for _, v := range item.Values {
			if v.Type == ColumnStatus && strings.TrimSpace(v.Text) != "" {
				counts[v.Text]++
				break
			}
		}
	}
	return counts
}
