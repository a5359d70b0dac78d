package handlers

import (
	"github.com/rs/zerolog"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat *ChatHandler
	File *FileHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(chatService ChatService, fileService FileService, log zerolog.Logger) *Provider {
	return &Provider{
		Chat: NewChatHandler(chatService, log),
		File: NewFileHandler(fileService, log),
	}
}
