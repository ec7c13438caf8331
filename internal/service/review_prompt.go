package service

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/review_system.md
var reviewSystemPrompt string

// JobDescriptor is the position metadata shown to the reviewer.
type JobDescriptor struct {
	Name        string
	Description string
	Tags        []string
}

// PromptEntry pairs an application id with its rendered answers.
type PromptEntry struct {
	ApplicationID string
	Info          string
}

// BuildBatchPrompt renders the reviewer instructions, the job and one numbered
// section per entry. The output depends only on its inputs.
func BuildBatchPrompt(job JobDescriptor, entries []PromptEntry) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(reviewSystemPrompt))
	builder.WriteString("\n\nUser Input:\n")
	builder.WriteString("Please review the following job applications.\n\n")
	builder.WriteString("Job Position: ")
	builder.WriteString(job.Name)
	builder.WriteString("\n\nJob Description:\n")
	builder.WriteString(job.Description)
	builder.WriteString("\n")

	if tags := nonBlank(job.Tags); len(tags) > 0 {
		builder.WriteString("\nJob Tags: ")
		builder.WriteString(strings.Join(tags, ", "))
		builder.WriteString("\n")
	}

	fmt.Fprintf(&builder, "\nNumber of applications: %d\n", len(entries))
	for i, entry := range entries {
		fmt.Fprintf(&builder, "\n<application number=\"%d\" application_id=\"%s\">\n", i+1, entry.ApplicationID)
		builder.WriteString(entry.Info)
		builder.WriteString("\n</application>\n")
	}

	return builder.String()
}

func nonBlank(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
