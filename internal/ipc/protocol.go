package ipc

// Request is one newline-delimited JSON command sent to the session owner.
type Request struct {
	Command string `json:"command"`
}

// Response reports the outcome of a Request and the owner's state after it.
type Response struct {
	OK        bool   `json:"ok"`
	State     string `json:"state,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Action    string `json:"action,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}
