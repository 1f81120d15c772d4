package models

import "time"

type Poll struct {
	Question   string       `json:"question"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	TotalVotes int          `json:"total_votes"`
	Options    []PollOption `json:"options"`
}

// Expired reports whether the poll closed at or before now.
func (p *Poll) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

func (p *Poll) Option(id string) (PollOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return PollOption{}, false
}

type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Tally is the read model shown next to a poll.
type Tally struct {
	PollID     string       `json:"poll_id"`
	TotalVotes int          `json:"total_votes"`
	Options    []PollOption `json:"options"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
}

func (p *Poll) Tally(pollID string) *Tally {
	t := &Tally{
		PollID:     pollID,
		TotalVotes: p.TotalVotes,
		Options:    append([]PollOption(nil), p.Options...),
	}
	if p.ExpiresAt != nil {
		exp := *p.ExpiresAt
		t.ExpiresAt = &exp
	}
	return t
}
