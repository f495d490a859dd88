package main

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

const actionRunAnalysis = "board_run_analysis"

func StartSlackBot(cfg Config, db *sql.DB, boardClient *BoardClient, analyzer *Analyzer, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, db, cfg, boardClient, analyzer, cmd)
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go handleEventsAPI(api, db, cfg, boardClient, analyzer, eventsAPIEvent)
			case socketmode.EventTypeInteractive:
				client.Ack(*evt.Request)
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				go handleInteraction(api, db, cfg, analyzer, callback)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleSlashCommand(api *slack.Client, db *sql.DB, cfg Config, boardClient *BoardClient, analyzer *Analyzer, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/board":
		handleBoard(api, db, boardClient, cmd)
	case "/boards":
		handleBoards(api, boardClient, cmd)
	case "/analyze":
		handleAnalyze(api, db, cfg, analyzer, cmd)
	case "/bottlenecks":
		handleBottlenecks(api, db, analyzer, cmd)
	case "/suggestions":
		handleSuggestions(api, db, analyzer, cmd)
	case "/ask":
		handleAsk(api, db, cfg, boardClient, analyzer, cmd)
	case "/board-stats":
		handleBoardStats(api, db, cfg, cmd)
	case "/help":
		handleHelp(api, cmd)
	}
}

func handleEventsAPI(api *slack.Client, db *sql.DB, cfg Config, boardClient *BoardClient, analyzer *Analyzer, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		handleAppMention(api, db, cfg, boardClient, analyzer, ev)
	case *slackevents.MemberJoinedChannelEvent:
		handleMemberJoined(api, cfg, ev)
	}
}

func handleMemberJoined(api *slack.Client, cfg Config, ev *slackevents.MemberJoinedChannelEvent) {
	log.Printf("member-joined user=%s channel=%s", ev.User, ev.Channel)

	teamName := cfg.TeamName
	if teamName == "" {
		teamName = "the team"
	}

	intro := fmt.Sprintf("Welcome to %s! I'm BoardBot — I analyze project boards for structure, bottlenecks, and improvement opportunities.\n\n"+
		"Here's how to get started:\n"+
		"• `/board <name or id>` — Pick the board this channel should track\n"+
		"• `/analyze` — Run a full workflow analysis\n"+
		"• `/ask <question>` — Ask in plain language (e.g. `/ask show me bottlenecks`)\n"+
		"• `/help` — See all available commands",
		teamName,
	)

	_, _, err := api.PostMessage(ev.Channel,
		slack.MsgOptionText(intro, false),
		slack.MsgOptionPostEphemeral(ev.User),
	)
	if err != nil {
		log.Printf("member-joined intro error user=%s channel=%s: %v", ev.User, ev.Channel, err)
	}
}

// handleAppMention treats the mention text (minus the bot tag) as a free-text
// query, same path as /ask but answered in-channel.
func handleAppMention(api *slack.Client, db *sql.DB, cfg Config, boardClient *BoardClient, analyzer *Analyzer, ev *slackevents.AppMentionEvent) {
	query := stripMentions(ev.Text)
	if query == "" {
		return
	}

	resp := answerQuery(cfg, db, boardClient, analyzer, ev.Channel, ev.User, query)
	_, _, err := api.PostMessage(ev.Channel, responseMsgOptions(resp)...)
	if err != nil {
		log.Printf("app-mention post error channel=%s: %v", ev.Channel, err)
	}
}

func stripMentions(text string) string {
	for {
		start := strings.Index(text, "<@")
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end < 0 {
			break
		}
		text = text[:start] + text[start+end+1:]
	}
	return strings.TrimSpace(text)
}

func handleBoard(api *slack.Client, db *sql.DB, boardClient *BoardClient, cmd slack.SlashCommand) {
	query := strings.TrimSpace(cmd.Text)
	if query == "" {
		board, found, err := GetChannelBoard(db, cmd.ChannelID)
		if err != nil {
			postEphemeral(api, cmd, fmt.Sprintf("Error loading selection: %v", err))
			return
		}
		if !found {
			postEphemeral(api, cmd, "No board selected for this channel yet. Usage: /board <name or id>")
			return
		}
		postEphemeral(api, cmd, fmt.Sprintf("This channel tracks *%s* (#%s).", board.Name, board.ID))
		return
	}

	boards, err := boardClient.ListBoards()
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error listing boards: %v", err))
		log.Printf("board list error user=%s: %v", cmd.UserID, err)
		return
	}

	match, found := matchBoard(boards, query)
	if !found {
		postEphemeral(api, cmd, fmt.Sprintf("No board matching %q. Use /boards to see what's available.", query))
		return
	}

	if err := SetChannelBoard(db, cmd.ChannelID, match, cmd.UserName); err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error saving selection: %v", err))
		log.Printf("board select save error channel=%s: %v", cmd.ChannelID, err)
		return
	}

	postEphemeral(api, cmd, fmt.Sprintf("This channel now tracks *%s* (#%s). Run `/analyze` for a health check.", match.Name, match.ID))
	log.Printf("board selected channel=%s board=%s user=%s", cmd.ChannelID, match.ID, cmd.UserID)
}

// matchBoard resolves a user-supplied reference: exact id first, then exact
// name (case-insensitive), then unique substring.
func matchBoard(boards []BoardRef, query string) (BoardRef, bool) {
	for _, b := range boards {
		if b.ID == query {
			return b, true
		}
	}
	lower := strings.ToLower(query)
	for _, b := range boards {
		if strings.ToLower(b.Name) == lower {
			return b, true
		}
	}
	var partial []BoardRef
	for _, b := range boards {
		if strings.Contains(strings.ToLower(b.Name), lower) {
			partial = append(partial, b)
		}
	}
	if len(partial) == 1 {
		return partial[0], true
	}
	return BoardRef{}, false
}

func handleBoards(api *slack.Client, boardClient *BoardClient, cmd slack.SlashCommand) {
	boards, err := boardClient.ListBoards()
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error listing boards: %v", err))
		log.Printf("boards list error user=%s: %v", cmd.UserID, err)
		return
	}
	if len(boards) == 0 {
		postEphemeral(api, cmd, "No boards found for this account.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Boards (%d)*\n", len(boards)))
	for i, b := range boards {
		if i >= boardListLimit {
			sb.WriteString(fmt.Sprintf("… and %d more\n", len(boards)-boardListLimit))
			break
		}
		sb.WriteString(fmt.Sprintf("• %s (#%s)\n", b.Name, b.ID))
	}
	postEphemeral(api, cmd, sb.String())
	log.Printf("boards listed count=%d user=%s", len(boards), cmd.UserID)
}

func handleAnalyze(api *slack.Client, db *sql.DB, cfg Config, analyzer *Analyzer, cmd slack.SlashCommand) {
	board, found, err := GetChannelBoard(db, cmd.ChannelID)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error loading selection: %v", err))
		return
	}
	if !found {
		postEphemeral(api, cmd, "No board selected for this channel. Pick one first: /board <name or id>")
		return
	}

	postEphemeral(api, cmd, fmt.Sprintf("Analyzing *%s*...", board.Name))

	result, err := analyzer.Analyze(board.ID)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Analysis failed: %v", err))
		log.Printf("analyze error board=%s: %v", board.ID, err)
		return
	}

	report := BuildAnalysisReport(*result)
	filePath, err := WriteReportFile(report, cfg.ReportOutputDir, result.EvaluatedAt, result.BoardName)
	if err != nil {
		log.Printf("analyze report write error board=%s: %v", board.ID, err)
	}

	summaryLine := ""
	if cfg.SummaryConfigured() {
		if summary, usage, llmErr := SummarizeAnalysis(cfg, *result); llmErr == nil {
			summaryLine = "\n\n" + summary
			log.Printf("analyze summary tokens=%d board=%s", usage.TotalTokens(), board.ID)
		} else {
			log.Printf("analyze summary error (non-fatal) board=%s: %v", board.ID, llmErr)
		}
	}

	overall := (result.Columns.Score + result.Groups.Score + result.Workflow.Score) / 3
	msg := fmt.Sprintf("Analysis of *%s* complete — overall %s (%d/100).\n"+
		"Structure %d · Groups %d · Data completeness %d\n"+
		"Bottlenecks: %d · Suggestions: %d%s",
		result.BoardName, efficiencyLabel(overall), overall,
		result.Columns.Score, result.Groups.Score, result.Workflow.Score,
		len(result.Bottlenecks), len(result.Suggestions), summaryLine)

	if filePath != "" {
		uploadReport(api, cmd.ChannelID, filePath, fmt.Sprintf("%s analysis report", result.BoardName), msg)
		return
	}
	_, _, postErr := api.PostMessage(cmd.ChannelID, slack.MsgOptionText(msg, false))
	if postErr != nil {
		log.Printf("analyze post error channel=%s: %v", cmd.ChannelID, postErr)
	}
}

func uploadReport(api *slack.Client, channelID, filePath, title, comment string) {
	fi, err := os.Stat(filePath)
	if err != nil || fi.Size() <= 0 {
		log.Printf("report upload skipped path=%s: %v", filePath, err)
		_, _, postErr := api.PostMessage(channelID, slack.MsgOptionText(comment, false))
		if postErr != nil {
			log.Printf("report fallback post error channel=%s: %v", channelID, postErr)
		}
		return
	}
	_, err = api.UploadFileV2(slack.UploadFileV2Parameters{
		File:           filePath,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(filePath),
		Channel:        channelID,
		Title:          title,
		InitialComment: comment,
	})
	if err != nil {
		log.Printf("report upload error channel=%s: %v", channelID, err)
		_, _, postErr := api.PostMessage(channelID, slack.MsgOptionText(comment, false))
		if postErr != nil {
			log.Printf("report fallback post error channel=%s: %v", channelID, postErr)
		}
	}
}

func handleBottlenecks(api *slack.Client, db *sql.DB, analyzer *Analyzer, cmd slack.SlashCommand) {
	result, msg := currentAnalysisFor(db, analyzer, cmd.ChannelID)
	if result == nil {
		postEphemeral(api, cmd, msg)
		return
	}
	resp := bottlenecksResponse(result)
	postEphemeral(api, cmd, renderResponse(resp))
}

func handleSuggestions(api *slack.Client, db *sql.DB, analyzer *Analyzer, cmd slack.SlashCommand) {
	result, msg := currentAnalysisFor(db, analyzer, cmd.ChannelID)
	if result == nil {
		postEphemeral(api, cmd, msg)
		return
	}
	resp := recommendationsResponse(result, strings.TrimSpace(strings.ToLower(cmd.Text)))
	postEphemeral(api, cmd, renderResponse(resp))
}

// currentAnalysisFor resolves the channel's board and its cached analysis.
// When nil is returned, the second value is the user-facing explanation.
func currentAnalysisFor(db *sql.DB, analyzer *Analyzer, channelID string) (*AnalysisResult, string) {
	board, found, err := GetChannelBoard(db, channelID)
	if err != nil {
		return nil, fmt.Sprintf("Error loading selection: %v", err)
	}
	if !found {
		return nil, "No board selected for this channel. Pick one first: /board <name or id>"
	}
	result, ok := analyzer.Current(board.ID)
	if !ok {
		return nil, fmt.Sprintf("I haven't analyzed *%s* yet. Run `/analyze` first.", board.Name)
	}
	return result, ""
}

func handleAsk(api *slack.Client, db *sql.DB, cfg Config, boardClient *BoardClient, analyzer *Analyzer, cmd slack.SlashCommand) {
	query := strings.TrimSpace(cmd.Text)
	if query == "" {
		postEphemeral(api, cmd, "Usage: /ask <question>\nExample: /ask where are items getting stuck?")
		return
	}
	resp := answerQuery(cfg, db, boardClient, analyzer, cmd.ChannelID, cmd.UserID, query)
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, responseMsgOptions(resp)...)
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}

// answerQuery is the shared /ask and app-mention path: classify, resolve the
// channel's board and analysis, synthesize, and log the query.
func answerQuery(cfg Config, db *sql.DB, boardClient *BoardClient, analyzer *Analyzer, channelID, userID, query string) Response {
	classification := ClassifyQuery(query)
	log.Printf("query classified intent=%s score=%.2f user=%s", classification.Intent, classification.Score, userID)

	if err := InsertQueryLog(db, channelID, userID, classification); err != nil {
		log.Printf("query log error channel=%s: %v", channelID, err)
	}

	var selected *BoardRef
	if board, found, err := GetChannelBoard(db, channelID); err == nil && found {
		selected = &board
	}

	var analysis *AnalysisResult
	if selected != nil {
		if result, ok := analyzer.Current(selected.ID); ok {
			analysis = result
		}
	}

	var boards []BoardRef
	if classification.RequiresAnalysis && selected == nil {
		if list, err := boardClient.ListBoards(); err == nil {
			boards = list
		} else {
			log.Printf("query board list error (non-fatal): %v", err)
		}
	}

	resp := SynthesizeResponse(classification, analysis, selected, boards)

	if person := classification.Entities.Person; person != "" && len(cfg.TeamMembers) > 0 && !cfg.IsTeamMember(person) {
		resp.Text += fmt.Sprintf("\n_Note: %s isn't on the configured team roster._", person)
	}
	return resp
}

// responseMsgOptions builds the message options for a synthesized response.
// A response offering to run an analysis is posted as blocks so the button
// reaches the interaction handler; everything else is plain mrkdwn text.
func responseMsgOptions(resp Response) []slack.MsgOption {
	if blocks, ok := runAnalysisBlocks(resp); ok {
		return []slack.MsgOption{slack.MsgOptionBlocks(blocks...)}
	}
	return []slack.MsgOption{slack.MsgOptionText(renderResponse(resp), false)}
}

// runAnalysisBlocks renders a response carrying a run-analysis action as a
// section block plus a button wired to actionRunAnalysis. The button value
// carries the board id so the handler knows what to analyze.
func runAnalysisBlocks(resp Response) ([]slack.Block, bool) {
	boardID := ""
	offered := false
	for _, action := range resp.Actions {
		if action.Type == ActionRunAnalysis {
			boardID = action.BoardID
			offered = true
			break
		}
	}
	if !offered {
		return nil, false
	}

	button := slack.NewButtonBlockElement(actionRunAnalysis, boardID,
		slack.NewTextBlockObject(slack.PlainTextType, "Run analysis", false, false))
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, renderResponse(resp), false, false),
			nil, nil,
		),
		slack.NewActionBlock("board_analysis_offer", button),
	}
	return blocks, true
}

// renderResponse flattens a Response into Slack mrkdwn: body text, then each
// visualization as a labeled value list, then follow-up prompts.
func renderResponse(resp Response) string {
	var sb strings.Builder
	sb.WriteString(resp.Text)

	for _, viz := range resp.Visualizations {
		if len(viz.Data) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n\n*%s*\n", viz.Title))
		for _, point := range viz.Data {
			if point.Value == math.Trunc(point.Value) {
				sb.WriteString(fmt.Sprintf("• %s: %d\n", point.Label, int(point.Value)))
			} else {
				sb.WriteString(fmt.Sprintf("• %s: %.1f\n", point.Label, point.Value))
			}
		}
	}

	if len(resp.FollowUps) > 0 {
		sb.WriteString("\n_You could ask:_ ")
		sb.WriteString(strings.Join(resp.FollowUps, " · "))
	}
	return sb.String()
}

func handleBoardStats(api *slack.Client, db *sql.DB, cfg Config, cmd slack.SlashCommand) {
	fourWeeksAgo := time.Now().In(cfg.Location).AddDate(0, 0, -28)

	stats, err := GetIntentStats(db, fourWeeksAgo)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error loading stats: %v", err))
		log.Printf("board-stats intent error: %v", err)
		return
	}
	runCount, err := CountAnalysisRuns(db, fourWeeksAgo)
	if err != nil {
		log.Printf("board-stats run count error (non-fatal): %v", err)
	}

	var sb strings.Builder
	sb.WriteString("*Board Assistant Stats (last 4 weeks)*\n\n")
	sb.WriteString(fmt.Sprintf("Analyses run: %d\n", runCount))

	if len(stats) == 0 {
		sb.WriteString("No queries recorded yet.\n")
	} else {
		total := 0
		for _, s := range stats {
			total += s.Count
		}
		sb.WriteString(fmt.Sprintf("Queries: %d\n\n*By intent*\n", total))
		for _, s := range stats {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", s.Intent, s.Count))
		}
	}

	if board, found, _ := GetChannelBoard(db, cmd.ChannelID); found {
		if run, ok, runErr := GetLatestAnalysisRun(db, board.ID); runErr == nil && ok {
			sb.WriteString(fmt.Sprintf("\nLast analysis of *%s*: %s (scores %d/%d/%d)\n",
				board.Name, run.RanAt.In(cfg.Location).Format("Jan 2 15:04"),
				run.ColumnScore, run.GroupScore, run.WorkflowScore))
		}
	}

	postEphemeral(api, cmd, sb.String())
	log.Printf("board-stats user=%s intents=%d", cmd.UserID, len(stats))
}

func handleHelp(api *slack.Client, cmd slack.SlashCommand) {
	help := "*BoardBot commands*\n\n" +
		"• `/board <name or id>` — Select the board this channel tracks (`/board` shows the current one)\n" +
		"• `/boards` — List available boards\n" +
		"• `/analyze` — Run a full workflow analysis of the selected board\n" +
		"• `/bottlenecks` — Show where items spend the most time\n" +
		"• `/suggestions [category]` — Show improvement suggestions (categories: structure, workflow, bottleneck, data quality, automation)\n" +
		"• `/ask <question>` — Ask in plain language, e.g. `/ask how efficient is my board?`\n" +
		"• `/board-stats` — Usage and analysis stats\n" +
		"• `/help` — This message\n\n" +
		"You can also @mention me with a question in any channel I'm in."
	postEphemeral(api, cmd, help)
}

func handleInteraction(api *slack.Client, db *sql.DB, cfg Config, analyzer *Analyzer, cb slack.InteractionCallback) {
	if cb.Type != slack.InteractionTypeBlockActions {
		return
	}
	if len(cb.ActionCallback.BlockActions) == 0 {
		return
	}
	act := cb.ActionCallback.BlockActions[0]
	channelID := cb.Channel.ID
	if channelID == "" {
		channelID = cb.Container.ChannelID
	}
	userID := cb.User.ID

	switch act.ActionID {
	case actionRunAnalysis:
		boardID := strings.TrimSpace(act.Value)
		if boardID == "" {
			if board, found, _ := GetChannelBoard(db, channelID); found {
				boardID = board.ID
			}
		}
		if boardID == "" {
			postEphemeralTo(api, channelID, userID, "No board selected for this channel. Pick one first: /board <name or id>")
			return
		}
		result, err := analyzer.Analyze(boardID)
		if err != nil {
			postEphemeralTo(api, channelID, userID, fmt.Sprintf("Analysis failed: %v", err))
			return
		}
		resp := analyzeWorkflowResponse(result)
		postEphemeralTo(api, channelID, userID, renderResponse(resp))
	}
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	postEphemeralTo(api, cmd.ChannelID, cmd.UserID, text)
}

func postEphemeralTo(api *slack.Client, channelID, userID, text string) {
	_, err := api.PostEphemeral(channelID, userID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
