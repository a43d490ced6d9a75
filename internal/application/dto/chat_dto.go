package dto

// ChatMessage is one prior turn supplied by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the input DTO for the Chat use case.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}
