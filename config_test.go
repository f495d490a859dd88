package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigYAMLWithEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
slack_bot_token: xoxb-yaml
slack_app_token: xapp-yaml
board_api_url: https://boards.example.com/v2
board_api_token: yaml-token
team_name: Platform
team_members:
  - Dana
  - Riley
stale_after_hours: 48
timezone: UTC
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("TEAM_MEMBERS", "Jamie, Alex")

	cfg := LoadConfig()

	if cfg.SlackBotToken != "xoxb-env" {
		t.Errorf("SlackBotToken = %q, want the env override", cfg.SlackBotToken)
	}
	if cfg.SlackAppToken != "xapp-yaml" {
		t.Errorf("SlackAppToken = %q, want the yaml value", cfg.SlackAppToken)
	}
	if cfg.BoardAPIURL != "https://boards.example.com/v2" {
		t.Errorf("BoardAPIURL = %q", cfg.BoardAPIURL)
	}
	if cfg.TeamName != "Platform" {
		t.Errorf("TeamName = %q, want Platform", cfg.TeamName)
	}
	if len(cfg.TeamMembers) != 2 || cfg.TeamMembers[0] != "Jamie" || cfg.TeamMembers[1] != "Alex" {
		t.Errorf("TeamMembers = %v, want env list to replace yaml", cfg.TeamMembers)
	}
	if cfg.StaleAfterHours != 48 {
		t.Errorf("StaleAfterHours = %d, want 48", cfg.StaleAfterHours)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
slack_bot_token: xoxb-test
slack_app_token: xapp-test
board_api_url: https://boards.example.com/v2
board_api_token: test-token
`)
	t.Setenv("CONFIG_PATH", path)

	cfg := LoadConfig()

	if cfg.DBPath != "./boardbot.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.ReportOutputDir != "./reports" {
		t.Errorf("ReportOutputDir = %q, want default", cfg.ReportOutputDir)
	}
	if cfg.StaleAfterHours != 72 {
		t.Errorf("StaleAfterHours = %d, want 72", cfg.StaleAfterHours)
	}
	if cfg.TeamName != "My Team" {
		t.Errorf("TeamName = %q, want default", cfg.TeamName)
	}
	if cfg.ExternalHTTPTimeoutSeconds != 30 {
		t.Errorf("ExternalHTTPTimeoutSeconds = %d, want 30", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.Location == nil {
		t.Error("Location not resolved")
	}
	if cfg.SummaryEnabled {
		t.Error("SummaryEnabled = true, want false by default")
	}
}

func TestIsTeamMember(t *testing.T) {
	cfg := Config{TeamMembers: []string{"Dana Fox", "Riley"}}

	tests := []struct {
		name string
		want bool
	}{
		{"Dana Fox", true},
		{"dana fox", true},
		{"  Riley  ", true},
		{"Jamie", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.IsTeamMember(tt.name); got != tt.want {
			t.Errorf("IsTeamMember(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSummaryConfigured(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{SummaryEnabled: true, AnthropicAPIKey: "sk-test"}, true},
		{Config{SummaryEnabled: true}, false},
		{Config{AnthropicAPIKey: "sk-test"}, false},
		{Config{}, false},
	}
	for i, tt := range tests {
		if got := tt.cfg.SummaryConfigured(); got != tt.want {
			t.Errorf("case %d: SummaryConfigured = %v, want %v", i, got, tt.want)
		}
	}
}
