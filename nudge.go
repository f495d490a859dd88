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

// StartStaleNudgeScheduler reminds channels whose board analysis has gone
// stale. On each tick it checks every channel's selected board against the
// last recorded run; channels past the staleness threshold get a gentle
// prompt to re-run /analyze.
func StartStaleNudgeScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.StaleNudgeSchedule)
	if schedule == "" {
		log.Println("Stale nudge disabled (stale_nudge_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid stale_nudge_schedule '%s': %v (stale nudge disabled)", schedule, err)
		return
	}

	log.Printf("Stale nudge scheduled (cron: %s, stale after %dh)", schedule, cfg.StaleAfterHours)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			time.Sleep(next.Sub(now))

			sendStaleNudges(cfg, db, api, time.Now())
		}
	}()
}

func sendStaleNudges(cfg Config, db *sql.DB, api *slack.Client, now time.Time) {
	channelBoards, err := ListChannelBoards(db)
	if err != nil {
		log.Printf("Stale nudge list error: %v", err)
		return
	}

	staleAfter := time.Duration(cfg.StaleAfterHours) * time.Hour
	for channelID, board := range channelBoards {
		run, found, err := GetLatestAnalysisRun(db, board.ID)
		if err != nil {
			log.Printf("Stale nudge lookup error board=%s: %v", board.ID, err)
			continue
		}

		var text string
		switch {
		case !found:
			text = fmt.Sprintf("Board *%s* has never been analyzed. Run `/analyze` to get a first health check.", board.Name)
		case now.Sub(run.RanAt) > staleAfter:
			text = fmt.Sprintf("The last analysis of *%s* was %s ago. Run `/analyze` for a fresh look.",
				board.Name, formatAge(now.Sub(run.RanAt)))
		default:
			continue
		}

		_, _, postErr := api.PostMessage(channelID, slack.MsgOptionText(text, false))
		if postErr != nil {
			log.Printf("Stale nudge post error channel=%s: %v", channelID, postErr)
		} else {
			log.Printf("Stale nudge sent channel=%s board=%s", channelID, board.ID)
		}
	}
}

func formatAge(d time.Duration) string {
	hours := int(d.Hours())
	if hours < 48 {
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d days", hours/24)
}
