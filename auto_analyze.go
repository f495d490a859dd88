package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// AnalyzeRunSummary tracks the outcome of one scheduled sweep over every
// channel's selected board.
type AnalyzeRunSummary struct {
	BoardsAnalyzed int
	Failures       []string
}

// AnalyzeSelectedBoards runs a fresh analysis for every board any channel has
// selected. It has no Slack dependency so it can be called from both the
// slash command and the scheduler. Boards selected by several channels are
// analyzed once.
func AnalyzeSelectedBoards(analyzer *Analyzer, db *sql.DB) AnalyzeRunSummary {
	var summary AnalyzeRunSummary

	channelBoards, err := ListChannelBoards(db)
	if err != nil {
		summary.Failures = append(summary.Failures, fmt.Sprintf("listing selected boards: %v", err))
		return summary
	}

	seen := make(map[string]bool)
	for _, board := range channelBoards {
		if seen[board.ID] {
			continue
		}
		seen[board.ID] = true

		if _, err := analyzer.Analyze(board.ID); err != nil {
			log.Printf("scheduled analysis error board=%s: %v", board.ID, err)
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %v", board.Name, err))
			continue
		}
		summary.BoardsAnalyzed++
	}
	return summary
}

// FormatAnalyzeRunSummary returns a human-readable summary of a sweep.
func FormatAnalyzeRunSummary(summary AnalyzeRunSummary) string {
	if summary.BoardsAnalyzed == 0 && len(summary.Failures) == 0 {
		return "Scheduled analysis: no boards selected yet."
	}
	msg := fmt.Sprintf("Scheduled analysis: %d board(s) refreshed.", summary.BoardsAnalyzed)
	if len(summary.Failures) > 0 {
		msg += fmt.Sprintf("\nFailures:\n%s", strings.Join(summary.Failures, "\n"))
	}
	return msg
}

// StartAutoAnalyzeScheduler periodically refreshes the analysis of every
// selected board and posts a digest to the report channel.
// The schedule is a standard 5-field cron expression (minute hour day-of-month month day-of-week).
// Examples: "0 8 * * *" (daily 8am), "0 8 * * 1-5" (weekdays 8am).
func StartAutoAnalyzeScheduler(cfg Config, analyzer *Analyzer, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.AutoAnalyzeSchedule)
	if schedule == "" {
		log.Println("Auto-analyze disabled (auto_analyze_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid auto_analyze_schedule '%s': %v (auto-analyze disabled)", schedule, err)
		return
	}

	log.Printf("Auto-analyze scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next auto-analyze at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			summary := AnalyzeSelectedBoards(analyzer, db)
			text := FormatAnalyzeRunSummary(summary)
			log.Printf("Auto-analyze complete: %s", text)

			if cfg.ReportChannelID != "" {
				_, _, postErr := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(text, false))
				if postErr != nil {
					log.Printf("Auto-analyze post error: %v", postErr)
				}
			}
		}
	}()
}
