package api

type ChatRequest struct {
	Message     string `json:"message" validate:"required"`
	ChatID      string `json:"chatID,omitempty"`
	TopK        int    `json:"top_k,omitempty"`
	WithSources bool   `json:"with_sources,omitempty"`
}

type TurnResponse struct {
	Role    string `json:"role" example:"assistant"`
	Content string `json:"content"`
}

type ChatResponse struct {
	ChatID  string         `json:"chat_id"`
	Answer  string         `json:"answer"`
	Sources string         `json:"sources,omitempty"`
	History []TurnResponse `json:"history"`
}

type SuggestionsResponse struct {
	Questions []string `json:"questions"`
}

type ClearRequest struct {
	ChatID string `json:"chatID" validate:"required"`
}

type ClearResponse struct {
	ChatID string `json:"chat_id"`
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
	Id      string `json:"id,omitempty"`
}
