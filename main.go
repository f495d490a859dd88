package main

import (
	"log"
	"os"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.ReportOutputDir, 0755)

	templates, err := LoadWorkflowTemplates(cfg.WorkflowTemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load workflow templates: %v", err)
	}

	boardClient := NewBoardClient(cfg)
	analyzer := NewAnalyzer(boardClient, templates, db)

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	StartAutoAnalyzeScheduler(cfg, analyzer, db, api)
	StartStaleNudgeScheduler(cfg, db, api)

	log.Println("Starting Board Assistant Bot...")
	if err := StartSlackBot(cfg, db, boardClient, analyzer, api); err != nil {
		log.Fatalf("Slack bot error: %v", err)
	}
}
