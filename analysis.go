package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// AnalysisFailedError wraps any unexpected failure in the analysis pipeline,
// carrying the underlying cause.
type AnalysisFailedError struct {
	BoardID string
	Err     error
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("analysis failed for board %s: %v", e.BoardID, e.Err)
}

func (e *AnalysisFailedError) Unwrap() error { return e.Err }

// RunAnalysis runs the full pipeline over one snapshot. It is pure: the same
// snapshot and evaluation instant always produce the same result. Only the
// open status's dwell time varies across instants.
func RunAnalysis(snapshot BoardSnapshot, templates []WorkflowTemplate, now time.Time) AnalysisResult {
	columns := AnalyzeColumns(snapshot.Columns)
	groups := AnalyzeGroups(snapshot.Groups, snapshot.Items, templates)
	workflow := AnalyzeWorkflow(snapshot.Items)

	changes := ExtractStatusChanges(snapshot.Activity)
	durations, _ := AggregateDurations(changes, now)
	bottlenecks := RankBottlenecks(durations)

	return AnalysisResult{
		BoardID:      snapshot.ID,
		BoardName:    snapshot.Name,
		Columns:      columns,
		Groups:       groups,
		Workflow:     workflow,
		Transitions:  BuildTransitionMatrix(changes),
		StatusCounts: CountItemStatuses(snapshot.Items),
		Bottlenecks:  bottlenecks,
		Suggestions:  GenerateSuggestions(columns, groups, bottlenecks, workflow, templates),
		EvaluatedAt:  now,
	}
}

// AnalysisCache holds the current AnalysisResult per board with
// last-writer-wins semantics. Each run takes a generation before fetching; a
// completed result is installed only if its generation is the highest issued
// for that board, so a stale run that finishes late is discarded. Boards are
// independent.
type AnalysisCache struct {
	mu     sync.Mutex
	boards map[string]*boardEntry
}

type boardEntry struct {
	issued    uint64
	installed uint64
	current   *AnalysisResult
}

func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{boards: make(map[string]*boardEntry)}
}

// Begin issues the next generation for a board.
func (c *AnalysisCache) Begin(boardID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.boards[boardID]
	if entry == nil {
		entry = &boardEntry{}
		c.boards[boardID] = entry
	}
	entry.issued++
	return entry.issued
}

// Complete installs a finished result if its generation is still the highest
// issued for the board. Returns false when the result was discarded as stale.
func (c *AnalysisCache) Complete(boardID string, gen uint64, result *AnalysisResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.boards[boardID]
	if entry == nil || gen != entry.issued || gen <= entry.installed {
		return false
	}
	entry.installed = gen
	entry.current = result
	return true
}

// Current returns the board's installed result, if any.
func (c *AnalysisCache) Current(boardID string) (*AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.boards[boardID]
	if entry == nil || entry.current == nil {
		return nil, false
	}
	return entry.current, true
}

// Analyzer ties the board client, the generation cache, and the run-metadata
// log together for the bot and the scheduler.
type Analyzer struct {
	client    *BoardClient
	cache     *AnalysisCache
	templates []WorkflowTemplate
	db        *sql.DB
}

func NewAnalyzer(client *BoardClient, templates []WorkflowTemplate, db *sql.DB) *Analyzer {
	return &Analyzer{
		client:    client,
		cache:     NewAnalysisCache(),
		templates: templates,
		db:        db,
	}
}

// Analyze fetches a fresh snapshot and runs the pipeline, installing the
// result under last-writer-wins. A NotFound from the fetcher passes through
// untouched; any other failure is wrapped as AnalysisFailedError.
func (a *Analyzer) Analyze(boardID string) (*AnalysisResult, error) {
	gen := a.cache.Begin(boardID)

	snapshot, err := a.client.FetchBoard(boardID)
	if err != nil {
		if errors.Is(err, ErrBoardNotFound) {
			return nil, err
		}
		return nil, &AnalysisFailedError{BoardID: boardID, Err: err}
	}

	result := RunAnalysis(snapshot, a.templates, time.Now())
	if !a.cache.Complete(boardID, gen, &result) {
		log.Printf("analysis discarded as stale board=%s gen=%d", boardID, gen)
		return &result, nil
	}
	log.Printf("analysis complete board=%s gen=%d columns=%d groups=%d items=%d bottlenecks=%d suggestions=%d",
		boardID, gen, len(snapshot.Columns), len(snapshot.Groups), len(snapshot.Items),
		len(result.Bottlenecks), len(result.Suggestions))

	if a.db != nil {
		if err := InsertAnalysisRun(a.db, result, gen); err != nil {
			log.Printf("analysis run log error board=%s: %v", boardID, err)
		}
	}
	return &result, nil
}

// Current returns the board's installed result, if any.
func (a *Analyzer) Current(boardID string) (*AnalysisResult, bool) {
	return a.cache.Current(boardID)
}
