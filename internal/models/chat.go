package models

// Message is one conversation turn as stored and sent over the API.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Profile is optional user context forwarded to generation.
type Profile struct {
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Query     string    `json:"query"`
	History   []Message `json:"history,omitempty"`
	Profile   *Profile  `json:"profile,omitempty"`
	K         int       `json:"k,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

// ChatResponse is the reply produced for a chat request.
type ChatResponse struct {
	Reply    string   `json:"reply"`
	Sources  []string `json:"sources"`
	IsCrisis bool     `json:"is_crisis"`
}

// CrisisDecision is the outcome of the crisis gate for one query.
// Score is the classifier's negativity probability in [0,1]; it is 0 when the
// keyword stage short-circuits and the classifier is never invoked.
type CrisisDecision struct {
	IsCrisis bool    `json:"is_crisis"`
	Score    float64 `json:"score"`
}
