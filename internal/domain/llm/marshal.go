package llm

import "encoding/json"

// MarshalJSON encodes Content as a string for plain messages and as a
// content-part array when Parts is set, matching the OpenAI wire format.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	type wireMessage struct {
		Role       string     `json:"role"`
		Content    any        `json:"content"`
		ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
		ToolCallID string     `json:"tool_call_id,omitempty"`
	}

	wire := wireMessage{
		Role:       m.Role,
		Content:    m.Content,
		ToolCalls:  m.ToolCalls,
		ToolCallID: m.ToolCallID,
	}
	if len(m.Parts) > 0 {
		wire.Content = m.Parts
	}
	return json.Marshal(wire)
}
