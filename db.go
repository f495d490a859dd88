package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS channel_boards (
		channel_id  TEXT PRIMARY KEY,
		board_id    TEXT NOT NULL,
		board_name  TEXT NOT NULL DEFAULT '',
		selected_by TEXT NOT NULL DEFAULT '',
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS query_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		channel_id TEXT NOT NULL,
		user_id    TEXT NOT NULL DEFAULT '',
		query      TEXT NOT NULL,
		intent     TEXT NOT NULL,
		score      REAL NOT NULL DEFAULT 0,
		asked_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ql_channel ON query_log(channel_id);
	CREATE INDEX IF NOT EXISTS idx_ql_date ON query_log(asked_at);

	CREATE TABLE IF NOT EXISTS analysis_runs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id       TEXT NOT NULL,
		board_name     TEXT NOT NULL DEFAULT '',
		generation     INTEGER NOT NULL,
		column_score   INTEGER NOT NULL DEFAULT 0,
		group_score    INTEGER NOT NULL DEFAULT 0,
		workflow_score INTEGER NOT NULL DEFAULT 0,
		item_count     INTEGER NOT NULL DEFAULT 0,
		ran_at         DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ar_board ON analysis_runs(board_id);
	CREATE INDEX IF NOT EXISTS idx_ar_date ON analysis_runs(ran_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// --- Channel board selection ---

func SetChannelBoard(db *sql.DB, channelID string, board BoardRef, selectedBy string) error {
	_, err := db.Exec(
		`INSERT INTO channel_boards (channel_id, board_id, board_name, selected_by, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(channel_id) DO UPDATE SET
		   board_id = excluded.board_id,
		   board_name = excluded.board_name,
		   selected_by = excluded.selected_by,
		   updated_at = CURRENT_TIMESTAMP`,
		channelID, board.ID, board.Name, selectedBy,
	)
	return err
}

// GetChannelBoard returns the channel's selected board, or ok=false when the
// channel has not picked one yet.
func GetChannelBoard(db *sql.DB, channelID string) (BoardRef, bool, error) {
	var board BoardRef
	err := db.QueryRow(
		`SELECT board_id, board_name FROM channel_boards WHERE channel_id = ?`,
		channelID,
	).Scan(&board.ID, &board.Name)
	if err == sql.ErrNoRows {
		return BoardRef{}, false, nil
	}
	if err != nil {
		return BoardRef{}, false, err
	}
	return board, true, nil
}

// ListChannelBoards returns every channel with a selected board.
func ListChannelBoards(db *sql.DB) (map[string]BoardRef, error) {
	rows, err := db.Query(`SELECT channel_id, board_id, board_name FROM channel_boards`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := make(map[string]BoardRef)
	for rows.Next() {
		var channelID string
		var board BoardRef
		if err := rows.Scan(&channelID, &board.ID, &board.Name); err != nil {
			return nil, err
		}
		boards[channelID] = board
	}
	return boards, rows.Err()
}

// --- Query log ---

func InsertQueryLog(db *sql.DB, channelID, userID string, c QueryClassification) error {
	_, err := db.Exec(
		`INSERT INTO query_log (channel_id, user_id, query, intent, score) VALUES (?, ?, ?, ?, ?)`,
		channelID, userID, c.Entities.RawQuery, string(c.Intent), c.Score,
	)
	return err
}

type IntentStat struct {
	Intent string
	Count  int
}

func GetIntentStats(db *sql.DB, since time.Time) ([]IntentStat, error) {
	rows, err := db.Query(
		`SELECT intent, COUNT(*) as cnt FROM query_log
		 WHERE asked_at >= ?
		 GROUP BY intent ORDER BY cnt DESC, intent`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []IntentStat
	for rows.Next() {
		var s IntentStat
		if err := rows.Scan(&s.Intent, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// --- Analysis run metadata ---
//
// Only run metadata is stored; full AnalysisResults stay in memory.

type AnalysisRun struct {
	ID            int64
	BoardID       string
	BoardName     string
	Generation    uint64
	ColumnScore   int
	GroupScore    int
	WorkflowScore int
	ItemCount     int
	RanAt         time.Time
}

func InsertAnalysisRun(db *sql.DB, result AnalysisResult, generation uint64) error {
	_, err := db.Exec(
		`INSERT INTO analysis_runs (board_id, board_name, generation, column_score, group_score, workflow_score, item_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.BoardID, result.BoardName, generation,
		result.Columns.Score, result.Groups.Score, result.Workflow.Score,
		result.Workflow.TotalItems,
	)
	return err
}

func GetLatestAnalysisRun(db *sql.DB, boardID string) (AnalysisRun, bool, error) {
	var run AnalysisRun
	err := db.QueryRow(
		`SELECT id, board_id, board_name, generation, column_score, group_score, workflow_score, item_count, ran_at
		 FROM analysis_runs WHERE board_id = ?
		 ORDER BY ran_at DESC, id DESC LIMIT 1`,
		boardID,
	).Scan(&run.ID, &run.BoardID, &run.BoardName, &run.Generation,
		&run.ColumnScore, &run.GroupScore, &run.WorkflowScore, &run.ItemCount, &run.RanAt)
	if err == sql.ErrNoRows {
		return AnalysisRun{}, false, nil
	}
	if err != nil {
		return AnalysisRun{}, false, err
	}
	return run, true, nil
}

func CountAnalysisRuns(db *sql.DB, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM analysis_runs WHERE ran_at >= ?`, since).Scan(&count)
	return count, err
}
