package models

// Position lifecycle states.
const (
	PositionStatusDraft  = "draft"
	PositionStatusActive = "active"
	PositionStatusClosed = "closed"
)

// QuestionTypeFile marks questions answered by an upload; they are never sent for review.
const QuestionTypeFile = "file"

// QuestionTypeText is assumed when a stored question carries no type.
const QuestionTypeText = "text"

// PositionQuestion is one entry of a position's ordered question schema.
type PositionQuestion struct {
	Label string `mapstructure:"label" json:"label"`
	Type  string `mapstructure:"type" json:"type"`
}

// Position is a job opening that applications answer.
type Position struct {
	ID          string             `mapstructure:"-" json:"id"`
	Name        string             `mapstructure:"name" json:"name" validate:"required"`
	Description string             `mapstructure:"description" json:"description" validate:"required"`
	Tags        []string           `mapstructure:"tags" json:"tags"`
	Status      string             `mapstructure:"status" json:"status" validate:"required,oneof=draft active closed"`
	Questions   []PositionQuestion `mapstructure:"questions" json:"questions"`
}

// IsActive reports whether the position accepts reviews.
func (p Position) IsActive() bool {
	return p.Status == PositionStatusActive
}
