package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SlackBotToken string `yaml:"slack_bot_token"`
	SlackAppToken string `yaml:"slack_app_token"`

	BoardAPIURL   string `yaml:"board_api_url"`
	BoardAPIToken string `yaml:"board_api_token"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`
	ReportChannelID string `yaml:"report_channel_id"`

	AutoAnalyzeSchedule string `yaml:"auto_analyze_schedule"`
	StaleNudgeSchedule  string `yaml:"stale_nudge_schedule"`
	StaleAfterHours     int    `yaml:"stale_after_hours"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	LLMModel        string `yaml:"llm_model"`
	SummaryEnabled  bool   `yaml:"summary_enabled"`

	WorkflowTemplatesPath string `yaml:"workflow_templates_path"`

	TeamMembers []string `yaml:"team_members"`
	TeamName    string   `yaml:"team_name"`
	Timezone    string   `yaml:"timezone"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.BoardAPIURL, "BOARD_API_URL")
	envOverride(&cfg.BoardAPIToken, "BOARD_API_TOKEN")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.AutoAnalyzeSchedule, "AUTO_ANALYZE_SCHEDULE")
	envOverride(&cfg.StaleNudgeSchedule, "STALE_NUDGE_SCHEDULE")
	envOverrideInt(&cfg.StaleAfterHours, "STALE_AFTER_HOURS")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideBool(&cfg.SummaryEnabled, "SUMMARY_ENABLED")
	envOverride(&cfg.WorkflowTemplatesPath, "WORKFLOW_TEMPLATES_PATH")
	envOverride(&cfg.TeamName, "TEAM_NAME")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")

	if names := os.Getenv("TEAM_MEMBERS"); names != "" {
		cfg.TeamMembers = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.TeamMembers = append(cfg.TeamMembers, name)
			}
		}
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./boardbot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.StaleAfterHours == 0 {
		cfg.StaleAfterHours = 72
	}
	if cfg.TeamName == "" {
		cfg.TeamName = "My Team"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)
	}

	// Validate required fields
	required := map[string]string{
		"slack_bot_token": cfg.SlackBotToken,
		"slack_app_token": cfg.SlackAppToken,
		"board_api_url":   cfg.BoardAPIURL,
		"board_api_token": cfg.BoardAPIToken,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	if cfg.SummaryEnabled && cfg.AnthropicAPIKey == "" {
		log.Fatalf("anthropic_api_key is required when summary_enabled is true")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
		cfg.Timezone = time.Local.String()
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.StaleAfterHours < 1 {
		log.Fatalf("invalid stale_after_hours '%d': must be >= 1", cfg.StaleAfterHours)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 1 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 1", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.WorkflowTemplatesPath != "" {
		if _, err := LoadWorkflowTemplates(cfg.WorkflowTemplatesPath); err != nil {
			log.Fatalf("invalid workflow_templates_path '%s': %v", cfg.WorkflowTemplatesPath, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func (c Config) IsTeamMember(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, member := range c.TeamMembers {
		if strings.ToLower(strings.TrimSpace(member)) == name {
			return true
		}
	}
	return false
}

func (c Config) SummaryConfigured() bool {
	return c.SummaryEnabled && c.AnthropicAPIKey != ""
}
