package dto

// ChatRequest starts or resumes a RAG session. UserResponse resumes a
// suspended clarification; SessionId is generated when omitted.
type ChatRequest struct {
	Query        string `json:"query" validate:"required_without=UserResponse"`
	SessionId    string `json:"session_id,omitempty"`
	UserResponse string `json:"user_response,omitempty"`
}

type ChatResponse struct {
	SessionId        string   `json:"session_id"`
	Response         string   `json:"response"`
	Sources          []string `json:"sources"`
	Confidence       float64  `json:"confidence"`
	NeedsDisclaimer  bool     `json:"needs_disclaimer"`
	Disclaimer       string   `json:"disclaimer,omitempty"`
	RetrievalSource  string   `json:"retrieval_source"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

// ClarificationResponse is returned instead of ChatResponse when the
// workflow suspends for user input.
type ClarificationResponse struct {
	SessionId             string   `json:"session_id"`
	ClarificationQuestion string   `json:"clarification_question"`
	Options               []string `json:"options"`
}

type PendingSessionResponse struct {
	SessionId             string   `json:"session_id"`
	Pending               bool     `json:"pending"`
	ClarificationQuestion string   `json:"clarification_question,omitempty"`
	Options               []string `json:"options,omitempty"`
}
