package collection

import "time"

// RequestSnapshot holds the request fields as they were sent.
type RequestSnapshot struct {
	Name    string    `json:"name"`
	Method  string    `json:"method"`
	URL     string    `json:"url"`
	Headers KeyValues `json:"headers"`
	Params  KeyValues `json:"params"`
	Body    Body      `json:"body"`
}

// ResponseSnapshot holds the executor's result. Error is set for transport failures,
// in which case StatusCode is 0.
type ResponseSnapshot struct {
	StatusCode int       `json:"status_code"`
	StatusText string    `json:"status_text"`
	Headers    KeyValues `json:"headers"`
	Body       string    `json:"body"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	SizeBytes  int64     `json:"size_bytes"`
	Error      string    `json:"error,omitempty"`
}

// HistoryEntry is one execution of a request. Entries are immutable once appended.
type HistoryEntry struct {
	ID        string           `json:"id"`
	RequestID string           `json:"request_id"`
	Timestamp time.Time        `json:"timestamp"`
	Request   RequestSnapshot  `json:"request_snapshot"`
	Response  ResponseSnapshot `json:"response_snapshot"`
}
