package completion_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision-chat/server/internal/domain/completion"
	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/domain/llm"
	"vision-chat/server/internal/utils/platformerrors"
)

type scriptedStream struct {
	chunks []llm.ChatCompletionChunk
	pos    int
	err    error
}

func (s *scriptedStream) Recv() (*llm.ChatCompletionChunk, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return &chunk, nil
}

func (s *scriptedStream) Close() error { return nil }

type scriptedProvider struct {
	mu       sync.Mutex
	requests []llm.ChatCompletionRequest
	script   func(call int) (llm.Stream, error)
}

func (p *scriptedProvider) StreamChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	call := len(p.requests)
	p.mu.Unlock()
	return p.script(call)
}

func (p *scriptedProvider) Requests() []llm.ChatCompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.ChatCompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

type recordingWriter struct {
	mu     sync.Mutex
	writes []string
	signal chan string
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{signal: make(chan string, 64)}
}

func (w *recordingWriter) UpdateMessageContent(ctx context.Context, messagePublicID string, content string) error {
	w.mu.Lock()
	w.writes = append(w.writes, content)
	w.mu.Unlock()
	select {
	case w.signal <- content:
	default:
	}
	return nil
}

func (w *recordingWriter) Writes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.writes))
	copy(out, w.writes)
	return out
}

// waitForWrite blocks until a persisted snapshot contains the substring.
func (w *recordingWriter) waitForWrite(substring string) error {
	deadline := time.After(2 * time.Second)
	for {
		select {
		case content := <-w.signal:
			if strings.Contains(content, substring) {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("no write containing %q arrived", substring)
		}
	}
}

type MockImageGenerator struct {
	GenerateImageFunc func(ctx context.Context, prompt string) ([]byte, string, error)
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt)
	}
	return []byte{0x89, 'P', 'N', 'G'}, "image/png", nil
}

type MockFileStore struct {
	UploadFunc func(ctx context.Context, req file.UploadRequest) (*file.File, error)
}

func (m *MockFileStore) Upload(ctx context.Context, req file.UploadRequest) (*file.File, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, req)
	}
	return &file.File{PublicID: "file_gen", Kind: file.KindImage, URL: "https://blobs/generated.png"}, nil
}

func contentChunk(text string) llm.ChatCompletionChunk {
	return llm.ChatCompletionChunk{Choices: []llm.Choice{{Delta: llm.Delta{Content: text}}}}
}

func toolChunk(index int, id, name, argsFragment string) llm.ChatCompletionChunk {
	return llm.ChatCompletionChunk{Choices: []llm.Choice{{
		Delta: llm.Delta{ToolCalls: []llm.ToolCall{{
			Index:    &index,
			ID:       id,
			Function: llm.ToolCallFunction{Name: name, Arguments: argsFragment},
		}}},
	}}}
}

func finishChunk(reason string) llm.ChatCompletionChunk {
	return llm.ChatCompletionChunk{Choices: []llm.Choice{{FinishReason: reason}}}
}

func newTestOrchestrator(provider llm.Provider, generator llm.ImageGenerator, store completion.FileStore, writer completion.PlaceholderWriter, maxRounds int) *completion.Orchestrator {
	tool := completion.NewImageTool(generator, store, zerolog.Nop())
	return completion.NewOrchestrator(provider, tool, writer, "gpt-4o-mini", 0, maxRounds, zerolog.Nop())
}

func TestExecute_StreamsText(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int) (llm.Stream, error) {
			return &scriptedStream{chunks: []llm.ChatCompletionChunk{
				contentChunk("Hel"),
				contentChunk("lo"),
				contentChunk(" world"),
				finishChunk("stop"),
			}}, nil
		},
	}
	writer := newRecordingWriter()
	orch := newTestOrchestrator(provider, &MockImageGenerator{}, &MockFileStore{}, writer, 10)

	err := orch.Execute(context.Background(), completion.Task{
		ChatPublicID:  "chat_abc",
		PlaceholderID: "msg_ph",
		History:       []llm.ChatMessage{{Role: llm.RoleUser, Content: "say hello"}},
	})
	require.NoError(t, err)

	requests := provider.Requests()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.True(t, req.Stream)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.0, *req.Temperature)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, completion.ToolNameGenerateImage, req.Tools[0].Function.Name)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "generateImage tool")
	assert.Equal(t, "say hello", req.Messages[1].Content)

	writes := writer.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, "Hello world", writes[len(writes)-1])
	// Snapshots only ever extend; readers never see the text shrink.
	for i := 1; i < len(writes); i++ {
		assert.True(t, strings.HasPrefix(writes[i], writes[i-1]),
			"write %d %q does not extend %q", i, writes[i], writes[i-1])
	}
}

func TestExecute_ImageToolRound(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int) (llm.Stream, error) {
			switch call {
			case 1:
				return &scriptedStream{chunks: []llm.ChatCompletionChunk{
					toolChunk(0, "call_1", completion.ToolNameGenerateImage, `{"pro`),
					toolChunk(0, "", "", `mpt":"a cat"}`),
					finishChunk("tool_calls"),
				}}, nil
			default:
				return &scriptedStream{chunks: []llm.ChatCompletionChunk{
					contentChunk("Here it is: ![a cat](https://blobs/cat.png)"),
					finishChunk("stop"),
				}}, nil
			}
		},
	}

	writer := newRecordingWriter()
	var receivedPrompt string
	generator := &MockImageGenerator{
		GenerateImageFunc: func(ctx context.Context, prompt string) ([]byte, string, error) {
			receivedPrompt = prompt
			// The progress notice must be persisted before the slow
			// generation starts, so readers are never staring at "...".
			if err := writer.waitForWrite("Generating image"); err != nil {
				return nil, "", err
			}
			return []byte{0x89, 'P', 'N', 'G'}, "image/png", nil
		},
	}
	var uploaded file.UploadRequest
	store := &MockFileStore{
		UploadFunc: func(ctx context.Context, req file.UploadRequest) (*file.File, error) {
			uploaded = req
			return &file.File{PublicID: "file_cat", Kind: file.KindImage, URL: "https://blobs/cat.png"}, nil
		},
	}

	orch := newTestOrchestrator(provider, generator, store, writer, 10)
	err := orch.Execute(context.Background(), completion.Task{
		ChatPublicID:  "chat_abc",
		PlaceholderID: "msg_ph",
		History:       []llm.ChatMessage{{Role: llm.RoleUser, Content: "draw a cat"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "a cat", receivedPrompt)
	assert.Equal(t, "generated-image", uploaded.Name)
	assert.NotEmpty(t, uploaded.Data)

	requests := provider.Requests()
	require.Len(t, requests, 2)

	// The second round carries the reassembled tool call and its result.
	second := requests[1].Messages
	require.Len(t, second, 4)
	assistant := second[2]
	assert.Equal(t, llm.RoleAssistant, assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)
	assert.Equal(t, completion.ToolNameGenerateImage, assistant.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"prompt":"a cat"}`, assistant.ToolCalls[0].Function.Arguments)

	toolResult := second[3]
	assert.Equal(t, llm.RoleTool, toolResult.Role)
	assert.Equal(t, "call_1", toolResult.ToolCallID)
	assert.Equal(t, "https://blobs/cat.png", toolResult.Content)

	writes := writer.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, "Here it is: ![a cat](https://blobs/cat.png)", writes[len(writes)-1])
}

func TestExecute_ToolFailureReportedToModel(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int) (llm.Stream, error) {
			switch call {
			case 1:
				return &scriptedStream{chunks: []llm.ChatCompletionChunk{
					toolChunk(0, "call_1", completion.ToolNameGenerateImage, `{"prompt":"a dog"}`),
					finishChunk("tool_calls"),
				}}, nil
			default:
				return &scriptedStream{chunks: []llm.ChatCompletionChunk{
					contentChunk("Sorry, I could not generate that image."),
					finishChunk("stop"),
				}}, nil
			}
		},
	}
	generator := &MockImageGenerator{
		GenerateImageFunc: func(ctx context.Context, prompt string) ([]byte, string, error) {
			return nil, "", errors.New("model overloaded")
		},
	}

	writer := newRecordingWriter()
	orch := newTestOrchestrator(provider, generator, &MockFileStore{}, writer, 10)
	err := orch.Execute(context.Background(), completion.Task{
		PlaceholderID: "msg_ph",
		History:       []llm.ChatMessage{{Role: llm.RoleUser, Content: "draw a dog"}},
	})
	require.NoError(t, err, "a broken tool must not kill the completion")

	requests := provider.Requests()
	require.Len(t, requests, 2)
	toolResult := requests[1].Messages[3]
	assert.Equal(t, llm.RoleTool, toolResult.Role)
	assert.True(t, strings.HasPrefix(toolResult.Content, "image generation failed:"),
		"tool result %q should report the failure as text", toolResult.Content)
}

func TestExecute_RoundCap(t *testing.T) {
	generatorCalls := 0
	provider := &scriptedProvider{
		script: func(call int) (llm.Stream, error) {
			// The model keeps asking for images forever.
			return &scriptedStream{chunks: []llm.ChatCompletionChunk{
				contentChunk(fmt.Sprintf("round %d\n", call)),
				toolChunk(0, fmt.Sprintf("call_%d", call), completion.ToolNameGenerateImage, `{"prompt":"again"}`),
				finishChunk("tool_calls"),
			}}, nil
		},
	}
	generator := &MockImageGenerator{
		GenerateImageFunc: func(ctx context.Context, prompt string) ([]byte, string, error) {
			generatorCalls++
			return []byte{1}, "image/png", nil
		},
	}

	writer := newRecordingWriter()
	orch := newTestOrchestrator(provider, generator, &MockFileStore{}, writer, 2)
	err := orch.Execute(context.Background(), completion.Task{
		PlaceholderID: "msg_ph",
		History:       []llm.ChatMessage{{Role: llm.RoleUser, Content: "loop"}},
	})
	require.NoError(t, err, "hitting the cap keeps the accumulated text, not an error")

	assert.Len(t, provider.Requests(), 2)
	assert.Equal(t, 2, generatorCalls)

	writes := writer.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, "round 1\nround 2\n", writes[len(writes)-1])
}

func TestExecute_ProviderErrorKeepsPartialText(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int) (llm.Stream, error) {
			return &scriptedStream{
				chunks: []llm.ChatCompletionChunk{contentChunk("partial answer")},
				err:    errors.New("connection reset"),
			}, nil
		},
	}
	writer := newRecordingWriter()
	orch := newTestOrchestrator(provider, &MockImageGenerator{}, &MockFileStore{}, writer, 10)

	err := orch.Execute(context.Background(), completion.Task{
		PlaceholderID: "msg_ph",
		History:       []llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeProvider))

	writes := writer.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, "partial answer", writes[len(writes)-1])
}

func TestExecute_ProviderOpenError(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int) (llm.Stream, error) {
			return nil, errors.New("connection refused")
		},
	}
	writer := newRecordingWriter()
	orch := newTestOrchestrator(provider, &MockImageGenerator{}, &MockFileStore{}, writer, 10)

	err := orch.Execute(context.Background(), completion.Task{
		PlaceholderID: "msg_ph",
		History:       []llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeProvider))
	assert.Empty(t, writer.Writes())
}
