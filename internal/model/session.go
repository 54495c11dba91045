package model

import "time"

type SessionStatus string

const (
	SessionEmpty    SessionStatus = "empty"
	SessionPartial  SessionStatus = "partial"
	SessionComplete SessionStatus = "complete"
)

// Session is one owner's in-progress audit. It lives in the session store until
// submitted or abandoned; only the resulting Audit is persisted.
type Session struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	BusinessModel BusinessModel  `json:"businessModel"`
	Channel       Channel        `json:"channel"`
	Answers       map[string]int `json:"answers"`
	Cursor        int            `json:"cursor"` // Index of the question being shown
	StartedAt     time.Time      `json:"startedAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// SessionView is what the presentation layer needs to render a session step
type SessionView struct {
	ID            string         `json:"id"`
	BusinessModel BusinessModel  `json:"businessModel"`
	Channel       Channel        `json:"channel"`
	Status        SessionStatus  `json:"status"`
	Current       int            `json:"current"`
	Total         int            `json:"total"`
	Answered      int            `json:"answered"`
	Progress      int            `json:"progress"` // Percent of the way through the question list
	Question      *Question      `json:"question,omitempty"`
	Selected      *int           `json:"selected,omitempty"`
	Answers       map[string]int `json:"answers"`
}

// ScorePreview is an unsaved scoring of a session's current answers
type ScorePreview struct {
	Result
	Verdict Verdict `json:"verdict"`
}
