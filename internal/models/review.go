package models

import "time"

// Review is the persisted rating and comment for one application of a position.
type Review struct {
	ID            string    `mapstructure:"-" json:"id"`
	ApplicationID string    `mapstructure:"applicationId" json:"application_id"`
	Rating        int       `mapstructure:"rating" json:"rating"`
	Comment       string    `mapstructure:"comment" json:"comment"`
	CreatedAt     time.Time `mapstructure:"createdAt" json:"created_at"`
}
