package models

import "time"

// Appeal asks a moderator to reconsider hidden content. One per content item.
type Appeal struct {
	ContentID   string    `json:"content_id"`
	Reason      string    `json:"reason"`
	SubmitterID string    `json:"submitter_id"`
	CreatedAt   time.Time `json:"created_at"`
}
