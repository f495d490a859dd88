package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrBoardNotFound reports a board id the service does not know, or an empty
// snapshot. The caller decides whether to retry; this client never does.
var ErrBoardNotFound = errors.New("board not found")

// BoardClient talks to the project-board service's GraphQL API.
type BoardClient struct {
	apiURL string
	token  string
}

func NewBoardClient(cfg Config) *BoardClient {
	return &BoardClient{apiURL: cfg.BoardAPIURL, token: cfg.BoardAPIToken}
}

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type entityRefWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type columnWire struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type groupWire struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type columnValueWire struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Type  string          `json:"type"`
	Text  string          `json:"text"`
	Value json.RawMessage `json:"value"`
}

type itemWire struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Group        groupWire         `json:"group"`
	ColumnValues []columnValueWire `json:"column_values"`
}

type activityWire struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	CreatedAt string          `json:"created_at"`
	Data      json.RawMessage `json:"data"`
	Entity    entityRefWire   `json:"entity"`
	User      entityRefWire   `json:"user"`
}

type boardWire struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Columns      []columnWire   `json:"columns"`
	Groups       []groupWire    `json:"groups"`
	Items        []itemWire     `json:"items"`
	ActivityLogs []activityWire `json:"activity_logs"`
}

const listBoardsQuery = `query { boards(limit: 50) { id name } }`

const boardSnapshotQueryFmt = `query {
  boards(ids: [%q]) {
    id
    name
    columns { id title type }
    groups { id title }
    items { id name group { id } column_values { id title type text value } }
    activity_logs(limit: 500) { id event created_at data entity { id name } user { id name } }
  }
}`

// ListBoards fetches the id and name of every board visible to the token.
func (c *BoardClient) ListBoards() ([]BoardRef, error) {
	var payload struct {
		Boards []entityRefWire `json:"boards"`
	}
	if err := c.query(listBoardsQuery, &payload); err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	var refs []BoardRef
	for _, b := range payload.Boards {
		refs = append(refs, BoardRef{ID: b.ID, Name: b.Name})
	}
	log.Printf("board list fetched count=%d", len(refs))
	return refs, nil
}

// FetchBoard fetches one board's full snapshot: columns, groups, items, and
// activity log.
func (c *BoardClient) FetchBoard(boardID string) (BoardSnapshot, error) {
	var payload struct {
		Boards []boardWire `json:"boards"`
	}
	if err := c.query(fmt.Sprintf(boardSnapshotQueryFmt, boardID), &payload); err != nil {
		return BoardSnapshot{}, fmt.Errorf("fetching board %s: %w", boardID, err)
	}
	if len(payload.Boards) == 0 {
		return BoardSnapshot{}, fmt.Errorf("board %s: %w", boardID, ErrBoardNotFound)
	}
	snapshot := convertBoard(payload.Boards[0])
	log.Printf("board fetched id=%s name=%q columns=%d groups=%d items=%d events=%d",
		snapshot.ID, snapshot.Name, len(snapshot.Columns), len(snapshot.Groups), len(snapshot.Items), len(snapshot.Activity))
	return snapshot, nil
}

func (c *BoardClient) query(query string, out any) error {
	bodyBytes, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("board API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("board API error: %s", envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("parsing data: %w", err)
	}
	return nil
}

func convertBoard(w boardWire) BoardSnapshot {
	snapshot := BoardSnapshot{ID: w.ID, Name: w.Name}

	for _, c := range w.Columns {
		snapshot.Columns = append(snapshot.Columns, Column{
			ID:    c.ID,
			Title: c.Title,
			Type:  ResolveColumnType(c.Type),
		})
	}
	for _, g := range w.Groups {
		snapshot.Groups = append(snapshot.Groups, Group{ID: g.ID, Title: g.Title})
	}
	for _, it := range w.Items {
		item := Item{ID: it.ID, Name: it.Name, GroupID: it.Group.ID}
		for _, v := range it.ColumnValues {
			item.Values = append(item.Values, ColumnValue{
				ColumnID: v.ID,
				Title:    v.Title,
				Type:     ResolveColumnType(v.Type),
				Text:     v.Text,
				Value:    string(v.Value),
			})
		}
		snapshot.Items = append(snapshot.Items, item)
	}
	for _, a := range w.ActivityLogs {
		createdAt, err := time.Parse(time.RFC3339, a.CreatedAt)
		if err != nil {
			// Events without a usable timestamp cannot be ordered; skip.
			continue
		}
		snapshot.Activity = append(snapshot.Activity, ActivityEvent{
			ID:         a.ID,
			Event:      a.Event,
			CreatedAt:  createdAt,
			EntityID:   a.Entity.ID,
			EntityName: a.Entity.Name,
			UserID:     a.User.ID,
			UserName:   a.User.Name,
			Data:       string(a.Data),
		})
	}
	return snapshot
}
