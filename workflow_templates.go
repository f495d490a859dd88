package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WorkflowTemplate is a canonical ordering of workflow stages. Group titles
// are matched against stages by case-insensitive substring.
type WorkflowTemplate struct {
	Name   string   `yaml:"name"`
	Stages []string `yaml:"stages"`
}

// builtinTemplates is the fixed library. Declaration order matters: the first
// template wins score ties during matching.
var builtinTemplates = []WorkflowTemplate{
	{Name: "Basic Kanban", Stages: []string{"Backlog", "To Do", "In Progress", "Done"}},
	{Name: "Software Delivery", Stages: []string{"Planning", "Development", "Testing", "Deployment"}},
	{Name: "Simple Tracking", Stages: []string{"Not Started", "Working on it", "Stuck", "Done"}},
}

type templateOverlay struct {
	Templates []WorkflowTemplate `yaml:"templates"`
}

// LoadWorkflowTemplates returns the built-in template library, extended by
// the overlay file at path if one is configured. Overlay templates are
// appended after the built-ins so they can never steal a tie.
func LoadWorkflowTemplates(path string) ([]WorkflowTemplate, error) {
	templates := make([]WorkflowTemplate, len(builtinTemplates))
	copy(templates, builtinTemplates)
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow templates: %w", err)
	}
	var overlay templateOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse workflow templates yaml: %w", err)
	}
	for _, tpl := range overlay.Templates {
		if strings.TrimSpace(tpl.Name) == "" || len(tpl.Stages) == 0 {
			continue
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

func (t WorkflowTemplate) StageList() string {
	return strings.Join(t.Stages, " → ")
}
