package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// BuildStatusPayload carries pipeline progress for one site.
type BuildStatusPayload struct {
	Slug    string `json:"slug"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// NewBuildStatusMessage encodes a build status update for broadcast.
func NewBuildStatusMessage(slug, stage, message string) []byte {
	b, _ := json.Marshal(Message{
		Action:  "build_status",
		Payload: BuildStatusPayload{Slug: slug, Stage: stage, Message: message},
	})
	return b
}

// NewErrorMessage encodes an error notification for a single client.
func NewErrorMessage(text string) []byte {
	b, _ := json.Marshal(Message{Action: "error", Payload: text})
	return b
}
