package models

// Application review states.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
	ApplicationStatusReviewed = "reviewed"
)

// Application is a candidate's answers to a position's questions, keyed by question label.
type Application struct {
	ID        string            `mapstructure:"-" json:"id"`
	Name      string            `mapstructure:"name" json:"name" validate:"required"`
	Email     string            `mapstructure:"email" json:"email" validate:"required"`
	Status    string            `mapstructure:"status" json:"status" validate:"required,oneof=pending accepted rejected reviewed"`
	Questions map[string]string `mapstructure:"questions" json:"questions" validate:"required,min=1"`
}
