package model

import "time"

// IntentKind classifies what a conversational turn asks for.
type IntentKind string

const (
	IntentFilterUpdate    IntentKind = "filter_update"
	IntentLocationRequest IntentKind = "location_request"
	IntentPlainReply      IntentKind = "plain_reply"
)

// Function names understood from the hosted backend.
const (
	FuncSearchHomes     = "search_homes"
	FuncRequestLocation = "request_location"
)

// FunctionCall is a structured call emitted by an extractor.
type FunctionCall struct {
	Name string         `json:"name"`
	Args *SearchFilters `json:"args,omitempty"`
}

// Intent is the outcome of interpreting one utterance.
type Intent struct {
	Kind    IntentKind     `json:"kind"`
	Reply   string         `json:"reply"`
	Filters *SearchFilters `json:"filters,omitempty"`
	// Reset clears previously accumulated filters before Filters is merged.
	Reset bool           `json:"reset,omitempty"`
	Calls []FunctionCall `json:"calls,omitempty"`
}

// Role is the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one entry of the append-only conversation log.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
