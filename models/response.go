package models

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type LoadDocumentsResponse struct {
	Message    string   `json:"message"`
	SessionID  string   `json:"session_id"`
	Documents  int      `json:"documents"`
	Characters int      `json:"characters"`
	Failed     []string `json:"failed,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type QueryResponse struct {
	Answer     string `json:"answer"`
	HistoryLen int    `json:"history_len"`
	SessionID  string `json:"session_id"`
	Error      string `json:"error,omitempty"`
}

type MessagesResponse struct {
	SessionID string    `json:"session_id"`
	Count     int       `json:"count"`
	Messages  []Message `json:"messages"`
}

// SessionStatus is a point-in-time view of a session for the status endpoint.
type SessionStatus struct {
	SessionID  string   `json:"session_id"`
	State      string   `json:"state"`
	Ready      bool     `json:"ready"`
	Documents  int      `json:"documents"`
	Characters int      `json:"characters"`
	Failed     []string `json:"failed,omitempty"`
	Backend    string   `json:"backend,omitempty"`
	Model      string   `json:"model,omitempty"`
	HistoryLen int      `json:"history_len"`
}
