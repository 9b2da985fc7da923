package capture

// BeginSessionRequest carries the invite token that opens a session
type BeginSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// StreamCommand is a text frame on the capture WebSocket. Binary frames on
// the same socket carry raw PCM audio and never reach this type.
type StreamCommand struct {
	Action string `json:"action" validate:"required,oneof=start stop advance"`
}
