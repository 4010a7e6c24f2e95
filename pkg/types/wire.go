package types

// Roles used on the wire by the chat endpoint. Assistant turns travel as
// "model".
const (
	WireRoleUser  = "user"
	WireRoleModel = "model"
)

// WirePart is one text part of a wire message.
type WirePart struct {
	Text string `json:"text"`
}

// WireMessage is a history entry of the chat endpoint.
type WireMessage struct {
	Role  string     `json:"role"`
	Parts []WirePart `json:"parts"`
}

// Text joins the message parts.
func (m WireMessage) Text() string {
	var text string
	for _, p := range m.Parts {
		text += p.Text
	}
	return text
}

// WireFunctionCall is a tool call intent returned by the chat endpoint.
type WireFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []WireMessage `json:"history"`
}

// ChatResponse is the success body of POST /api/chat. Text is the model's
// raw text; callers apply their own fallbacks.
type ChatResponse struct {
	Text          string             `json:"text"`
	FunctionCalls []WireFunctionCall `json:"functionCalls"`
}

// ErrorResponse is the failure body of the chat endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WireRole maps a turn role to its wire name.
func WireRole(role Role) string {
	if role == RoleUser {
		return WireRoleUser
	}
	return WireRoleModel
}

// RoleFromWire maps a wire role to a turn role. Both "model" and
// "assistant" are accepted for the assistant.
func RoleFromWire(role string) (Role, bool) {
	switch role {
	case WireRoleUser:
		return RoleUser, true
	case WireRoleModel, string(RoleAssistant):
		return RoleAssistant, true
	default:
		return "", false
	}
}

// ToWire converts turns to wire messages.
func ToWire(turns []ConversationTurn) []WireMessage {
	out := make([]WireMessage, 0, len(turns))
	for _, turn := range turns {
		out = append(out, WireMessage{
			Role:  WireRole(turn.Role),
			Parts: []WirePart{{Text: turn.Text}},
		})
	}
	return out
}
