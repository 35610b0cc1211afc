package models

import (
	"time"
)

const (
	DispatchKindLead         = "lead"
	DispatchKindRegistration = "registration"

	DispatchStatusSent   = "sent"
	DispatchStatusFailed = "failed"
)

// Dispatch records one hand-off of a lead to the WhatsApp destination.
// Only metadata is kept; the lead text itself never reaches the database.
type Dispatch struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"type:varchar(64);index" json:"session_id"`
	Kind        string    `gorm:"type:varchar(20);not null;index" json:"kind"`
	Channel     string    `gorm:"type:varchar(20);not null" json:"channel"`
	Destination string    `gorm:"type:varchar(32)" json:"destination"`
	Status      string    `gorm:"type:varchar(20)" json:"status"`
	TextLength  int       `json:"text_length"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Dispatch) TableName() string {
	return "dispatches"
}
