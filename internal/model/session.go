package model

import "time"

// Session is one conversation: its append-only history, the filters it has
// accumulated and whether a location answer is awaited.
type Session struct {
	ID              string        `json:"id"`
	History         []ChatMessage `json:"history"`
	Filters         SearchFilters `json:"filters"`
	PendingLocation bool          `json:"pending_location"`
	Sort            SortOrder     `json:"sort"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.History = append([]ChatMessage(nil), s.History...)
	c.Filters = *s.Filters.Clone()
	return &c
}

// Append adds a message to the history.
func (s *Session) Append(role Role, content string, at time.Time) {
	s.History = append(s.History, ChatMessage{Role: role, Content: content, CreatedAt: at})
}

// TurnRecord is what gets logged about a completed turn.
type TurnRecord struct {
	SessionID      string         `json:"session_id" db:"session_id"`
	Utterance      string         `json:"utterance" db:"utterance"`
	Intent         IntentKind     `json:"intent" db:"intent"`
	Filters        *SearchFilters `json:"filters" db:"filters"`
	ResultCount    int            `json:"result_count" db:"result_count"`
	ListingIDs     []string       `json:"listing_ids" db:"listing_ids"`
	Failed         bool           `json:"failed" db:"failed"`
	ResponseTimeMs int            `json:"response_time_ms" db:"response_time_ms"`
}
