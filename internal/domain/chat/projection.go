package chat

import (
	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/domain/llm"
)

// ProjectHistory maps stored messages to the provider-neutral history handed
// to the completion orchestrator. Attachments project to image segments only
// when the referenced file still exists, is an image and has a URL; anything
// else silently drops from the projection while staying visible on the read
// surface.
func ProjectHistory(messages []Message, files map[string]file.File) []llm.ChatMessage {
	history := make([]llm.ChatMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, projectMessage(m, files))
	}
	return history
}

func projectMessage(m Message, files map[string]file.File) llm.ChatMessage {
	role := llm.RoleUser
	if m.Role == RoleAssistant {
		role = llm.RoleAssistant
	}

	if len(m.Attachments) == 0 {
		return llm.ChatMessage{Role: role, Content: m.Content}
	}

	parts := make([]llm.ContentPart, 0, len(m.Attachments)+1)
	if m.Content != "" {
		parts = append(parts, llm.TextPart(m.Content))
	}
	for _, id := range m.Attachments {
		f, ok := files[id]
		if !ok || f.Kind != file.KindImage || f.URL == "" {
			continue
		}
		parts = append(parts, llm.ImagePart(f.URL))
	}

	if len(parts) == 0 {
		return llm.ChatMessage{Role: role, Content: m.Content}
	}
	return llm.ChatMessage{Role: role, Parts: parts}
}
