package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func boardAPIStub(t *testing.T, response string) *BoardClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "secret-token" {
			t.Errorf("Authorization = %q, want secret-token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return &BoardClient{apiURL: server.URL, token: "secret-token"}
}

func TestListBoards(t *testing.T) {
	client := boardAPIStub(t, `{"data":{"boards":[{"id":"42","name":"Q3 Launch"},{"id":"7","name":"Ops"}]}}`)

	boards, err := client.ListBoards()
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(boards) != 2 || boards[0].ID != "42" || boards[1].Name != "Ops" {
		t.Errorf("boards = %+v, want 42/Q3 Launch and 7/Ops", boards)
	}
}

func TestFetchBoardNotFound(t *testing.T) {
	client := boardAPIStub(t, `{"data":{"boards":[]}}`)

	_, err := client.FetchBoard("999")
	if !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("err = %v, want ErrBoardNotFound", err)
	}
}

func TestFetchBoardAPIError(t *testing.T) {
	client := boardAPIStub(t, `{"errors":[{"message":"invalid token"}]}`)

	_, err := client.FetchBoard("42")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("err = %v, want the API error message surfaced", err)
	}
	if errors.Is(err, ErrBoardNotFound) {
		t.Errorf("err = %v, must not be ErrBoardNotFound", err)
	}
}

func TestConvertBoard(t *testing.T) {
	wire := boardWire{
		ID:   "42",
		Name: "Q3 Launch",
		Columns: []columnWire{
			{ID: "status", Title: "Status", Type: "color"},
			{ID: "people", Title: "Owner", Type: "multiple-person"},
			{ID: "custom", Title: "Widget", Type: "widget"},
		},
		Groups: []groupWire{{ID: "g1", Title: "To Do"}},
		Items: []itemWire{
			{
				ID:    "1",
				Name:  "Fix login",
				Group: groupWire{ID: "g1"},
				ColumnValues: []columnValueWire{
					{ID: "status", Title: "Status", Type: "color", Text: "Working on it", Value: []byte(`{"label":"Working on it"}`)},
				},
			},
		},
		ActivityLogs: []activityWire{
			{
				ID: "e1", Event: eventColumnValueChanged, CreatedAt: "2026-08-01T09:00:00Z",
				Data:   []byte(`{"column_id":"status"}`),
				Entity: entityRefWire{ID: "1", Name: "Fix login"},
				User:   entityRefWire{ID: "U1", Name: "Dana"},
			},
			// Unparseable timestamp: the event is dropped.
			{ID: "e2", Event: eventColumnValueChanged, CreatedAt: "yesterday"},
		},
	}

	snapshot := convertBoard(wire)

	if snapshot.Columns[0].Type != ColumnStatus || snapshot.Columns[1].Type != ColumnPeople {
		t.Errorf("column types = %v, want synonyms resolved", snapshot.Columns)
	}
	if snapshot.Columns[2].Type != ColumnUnknown {
		t.Errorf("unrecognized type = %s, want unknown", snapshot.Columns[2].Type)
	}
	if len(snapshot.Items) != 1 || snapshot.Items[0].GroupID != "g1" {
		t.Errorf("items = %+v, want one item in g1", snapshot.Items)
	}
	if got := snapshot.Items[0].Values[0].Value; got != `{"label":"Working on it"}` {
		t.Errorf("raw value = %q, want original JSON preserved", got)
	}
	if len(snapshot.Activity) != 1 {
		t.Fatalf("activity = %+v, want the bad-timestamp event dropped", snapshot.Activity)
	}
	want := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	if !snapshot.Activity[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", snapshot.Activity[0].CreatedAt, want)
	}
	if snapshot.Activity[0].UserName != "Dana" {
		t.Errorf("UserName = %q, want Dana", snapshot.Activity[0].UserName)
	}
}

func TestResolveColumnType(t *testing.T) {
	tests := []struct {
		raw  string
		want ColumnType
	}{
		{"status", ColumnStatus},
		{"color", ColumnStatus},
		{"COLOR", ColumnStatus},
		{" person ", ColumnPeople},
		{"numeric", ColumnNumbers},
		{"long-text", ColumnText},
		{"mystery", ColumnUnknown},
		{"", ColumnUnknown},
	}
	for _, tt := range tests {
		if got := ResolveColumnType(tt.raw); got != tt.want {
			t.Errorf("ResolveColumnType(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
