package service

import (
	"fmt"
	"strings"

	"github.com/GDSC-UTSC/gdg-website/internal/models"
)

// NormalizedQuestion is one question of an application as presented to the reviewer.
type NormalizedQuestion struct {
	Label  string `json:"label"`
	Answer string `json:"answer"`
	Type   string `json:"type"`
}

// NormalizeApplication projects answers onto the position's question order.
// File questions are left out and unanswered questions get an empty answer.
// Answers are keyed by the stored label; a blank label is only renamed for display.
func NormalizeApplication(questions []models.PositionQuestion, answers map[string]string) []NormalizedQuestion {
	normalized := make([]NormalizedQuestion, 0, len(questions))
	for i, question := range questions {
		questionType := strings.TrimSpace(question.Type)
		if questionType == "" {
			questionType = models.QuestionTypeText
		}
		if strings.EqualFold(questionType, models.QuestionTypeFile) {
			continue
		}

		label := question.Label
		if strings.TrimSpace(label) == "" {
			label = fmt.Sprintf("Question %d", i+1)
		}

		normalized = append(normalized, NormalizedQuestion{
			Label:  label,
			Answer: answers[question.Label],
			Type:   questionType,
		})
	}
	return normalized
}

// ApplicationInfo renders the answered questions as "label: answer" paragraphs.
// Blank answers are skipped, so an empty result means nothing is reviewable.
func ApplicationInfo(questions []NormalizedQuestion) string {
	parts := make([]string, 0, len(questions))
	for _, question := range questions {
		if strings.TrimSpace(question.Answer) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", question.Label, question.Answer))
	}
	return strings.Join(parts, "\n\n")
}
