package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BuildAnalysisReport renders one analysis as a markdown document, written to
// disk by WriteReportFile and reused for the Slack digest.
func BuildAnalysisReport(result AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Board Analysis: %s\n\n", result.BoardName)
	fmt.Fprintf(&b, "Evaluated at %s\n\n", result.EvaluatedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Scores\n\n")
	fmt.Fprintf(&b, "- Structure: **%d/100** (%s)\n", result.Columns.Score, efficiencyLabel(result.Columns.Score))
	fmt.Fprintf(&b, "- Groups: **%d/100** (%s)\n", result.Groups.Score, efficiencyLabel(result.Groups.Score))
	fmt.Fprintf(&b, "- Data completeness: **%d/100** (%s)\n", result.Workflow.Score, efficiencyLabel(result.Workflow.Score))

	if len(result.Columns.MissingTypes) > 0 {
		var types []string
		for _, t := range result.Columns.MissingTypes {
			types = append(types, string(t))
		}
		fmt.Fprintf(&b, "\nMissing essential columns: %s\n", strings.Join(types, ", "))
	}
	if len(result.Columns.DuplicateTitles) > 0 {
		fmt.Fprintf(&b, "Duplicate column titles: %s\n", strings.Join(result.Columns.DuplicateTitles, ", "))
	}

	if len(result.Bottlenecks) > 0 {
		b.WriteString("\n## Bottlenecks\n\n")
		for _, bn := range result.Bottlenecks {
			fmt.Fprintf(&b, "- **%s**: %d hours on average across %d item(s)\n",
				bn.Status, int(math.Round(bn.AverageHours)), bn.ItemCount)
		}
	}

	if len(result.Transitions) > 0 {
		b.WriteString("\n## Status flow\n\n")
		var froms []string
		for from := range result.Transitions {
			froms = append(froms, from)
		}
		sort.Strings(froms)
		for _, from := range froms {
			targets := result.Transitions[from]
			var tos []string
			for to := range targets {
				tos = append(tos, to)
			}
			sort.Strings(tos)
			for _, to := range tos {
				fmt.Fprintf(&b, "- %s → %s: %d\n", from, to, targets[to])
			}
		}
	}

	if len(result.Suggestions) > 0 {
		b.WriteString("\n## Suggestions\n\n")
		for i, s := range result.Suggestions {
			fmt.Fprintf(&b, "%d. **%s** [%s, %s impact]\n   %s\n", i+1, s.Title, s.Category, s.Impact, s.Description)
		}
	}

	return b.String()
}

func WriteReportFile(content, outputDir string, reportDate time.Time, boardName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.md", sanitizeFilename(boardName), reportDate.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
