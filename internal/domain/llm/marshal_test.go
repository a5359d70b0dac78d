package llm_test

import (
	"encoding/json"
	"testing"

	"vision-chat/server/internal/domain/llm"
)

func TestChatMessage_MarshalJSON_PlainContent(t *testing.T) {
	m := llm.ChatMessage{Role: llm.RoleUser, Content: "hello"}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if wire["role"] != "user" {
		t.Errorf("Expected role 'user', got %v", wire["role"])
	}
	if wire["content"] != "hello" {
		t.Errorf("Expected string content, got %v", wire["content"])
	}
}

func TestChatMessage_MarshalJSON_Parts(t *testing.T) {
	m := llm.ChatMessage{
		Role: llm.RoleUser,
		Parts: []llm.ContentPart{
			llm.TextPart("what is this?"),
			llm.ImagePart("https://blobs/a.png"),
		},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire struct {
		Content []map[string]interface{} `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(wire.Content) != 2 {
		t.Fatalf("Expected 2 content parts, got %d", len(wire.Content))
	}
	if wire.Content[0]["type"] != "text" || wire.Content[0]["text"] != "what is this?" {
		t.Errorf("Unexpected text part: %v", wire.Content[0])
	}
	if wire.Content[1]["type"] != "image_url" {
		t.Errorf("Unexpected image part: %v", wire.Content[1])
	}
	imageURL, ok := wire.Content[1]["image_url"].(map[string]interface{})
	if !ok || imageURL["url"] != "https://blobs/a.png" {
		t.Errorf("Unexpected image_url payload: %v", wire.Content[1]["image_url"])
	}
}

func TestChatMessage_MarshalJSON_ToolResult(t *testing.T) {
	m := llm.ChatMessage{
		Role:       llm.RoleTool,
		Content:    "https://blobs/cat.png",
		ToolCallID: "call_1",
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if wire["tool_call_id"] != "call_1" {
		t.Errorf("Expected tool_call_id 'call_1', got %v", wire["tool_call_id"])
	}
}
