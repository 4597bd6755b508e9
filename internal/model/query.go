package model

// SearchRequest represents a manual (non-conversational) filter search
type SearchRequest struct {
	Filters *SearchFilters `json:"filters,omitempty"`
	Sort    string         `json:"sort,omitempty"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchOptions represents pagination options
type SearchOptions struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// SearchResponse represents a search result response
type SearchResponse struct {
	Results  []ListingSearchResult `json:"results"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	HasMore  bool                  `json:"has_more"`
	Filters  *SearchFilters        `json:"filters"`
	Sort     SortOrder             `json:"sort"`
	Took     int64                 `json:"took_ms"`
}

// MessageRequest is one user utterance sent to a session
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
	Sort    string `json:"sort,omitempty"`
}

// LocationRequest answers a pending location request. Denied covers both a
// refused permission and a client-side timeout.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Denied    bool     `json:"denied,omitempty"`
}

// TurnResponse is returned after each conversational turn
type TurnResponse struct {
	SessionID       string                `json:"session_id"`
	Reply           string                `json:"reply"`
	Intent          *Intent               `json:"intent,omitempty"`
	Filters         *SearchFilters        `json:"filters"`
	Results         []ListingSearchResult `json:"results"`
	Total           int                   `json:"total"`
	PendingLocation bool                  `json:"pending_location"`
	Failed          bool                  `json:"failed,omitempty"`
	Took            int64                 `json:"took_ms"`
}

// FeedbackRequest represents user feedback/action
type FeedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	ListingID string `json:"listing_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ImportRequest carries listings to be written to the catalog database
type ImportRequest struct {
	Listings []Listing `json:"listings" binding:"required"`
}

// ImportResponse reports the outcome of a listing import
type ImportResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
