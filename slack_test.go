package main

import (
	"strings"
	"testing"

	"github.com/slack-go/slack"
)

func TestMatchBoard(t *testing.T) {
	boards := []BoardRef{
		{ID: "42", Name: "Q3 Launch"},
		{ID: "7", Name: "Ops Tracker"},
		{ID: "9", Name: "Ops Archive"},
	}

	tests := []struct {
		query  string
		wantID string
		found  bool
	}{
		{"42", "42", true},
		{"q3 launch", "42", true},
		{"Tracker", "7", true},
		// "Ops" matches two boards: ambiguous.
		{"Ops", "", false},
		{"nothing", "", false},
	}
	for _, tt := range tests {
		got, found := matchBoard(boards, tt.query)
		if found != tt.found || got.ID != tt.wantID {
			t.Errorf("matchBoard(%q) = %+v/%v, want %s/%v", tt.query, got, found, tt.wantID, tt.found)
		}
	}
}

func TestStripMentions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<@U123> show me bottlenecks", "show me bottlenecks"},
		{"hey <@U123> and <@U456> analyze this", "hey  and  analyze this"},
		{"no mention here", "no mention here"},
		{"<@U123>", ""},
	}
	for _, tt := range tests {
		if got := stripMentions(tt.in); got != tt.want {
			t.Errorf("stripMentions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderResponse(t *testing.T) {
	resp := Response{
		Text: "Top bottlenecks:",
		Visualizations: []Visualization{
			{
				Kind:  "bottleneck_chart",
				Title: "Average hours in status",
				Data: []ChartPoint{
					{Label: "Review", Value: 40.4},
					{Label: "Blocked", Value: 12},
				},
			},
			// Empty visualizations render nothing.
			{Kind: "status_flow", Title: "Status flow"},
		},
		FollowUps: []string{"Give me recommendations", "Show efficiency scores"},
	}

	text := renderResponse(resp)

	for _, want := range []string{
		"Top bottlenecks:",
		"*Average hours in status*",
		"• Review: 40.4",
		"• Blocked: 12",
		"_You could ask:_ Give me recommendations · Show efficiency scores",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered response missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Status flow") {
		t.Error("empty visualization should not render a heading")
	}
}

func TestRenderResponsePlain(t *testing.T) {
	if got := renderResponse(Response{Text: "done"}); got != "done" {
		t.Errorf("renderResponse = %q, want just the text", got)
	}
}

// A "haven't analyzed yet" reply must carry a button the interaction
// handler's actionRunAnalysis case can receive.
func TestRunAnalysisOfferPostsButton(t *testing.T) {
	selected := &BoardRef{ID: "42", Name: "Q3 Launch"}
	c := QueryClassification{Intent: IntentShowBottlenecks, RequiresAnalysis: true}
	resp := SynthesizeResponse(c, nil, selected, nil)

	blocks, ok := runAnalysisBlocks(resp)
	if !ok {
		t.Fatal("expected blocks for a run-analysis offer")
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want section + actions", len(blocks))
	}
	actions, ok := blocks[1].(*slack.ActionBlock)
	if !ok {
		t.Fatalf("second block is %T, want *slack.ActionBlock", blocks[1])
	}
	if len(actions.Elements.ElementSet) != 1 {
		t.Fatalf("got %d action elements, want 1", len(actions.Elements.ElementSet))
	}
	button, ok := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	if !ok {
		t.Fatalf("action element is %T, want *slack.ButtonBlockElement", actions.Elements.ElementSet[0])
	}
	if button.ActionID != actionRunAnalysis {
		t.Errorf("button ActionID = %q, want %q", button.ActionID, actionRunAnalysis)
	}
	if button.Value != "42" {
		t.Errorf("button Value = %q, want the board id", button.Value)
	}
}

func TestResponseMsgOptionsPlainWithoutOffer(t *testing.T) {
	resp := Response{Text: "all good"}
	if _, ok := runAnalysisBlocks(resp); ok {
		t.Error("response without a run-analysis action should not build blocks")
	}
	if opts := responseMsgOptions(resp); len(opts) != 1 {
		t.Errorf("got %d message options, want 1", len(opts))
	}
}
