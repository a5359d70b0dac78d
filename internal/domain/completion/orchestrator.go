package completion

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"vision-chat/server/internal/domain/llm"
	"vision-chat/server/internal/utils/platformerrors"
)

const systemInstructions = "You are a helpful assistant.\n" +
	"In case the user asks you to generate an image,\n" +
	"you should use the generateImage tool to generate an image.\n" +
	"The generateImage tool takes a prompt as an argument and returns an image URL.\n" +
	"You use the image URL in your response, formatted as a markdown image tag, to display the image to the user."

const generatingNotice = "✨ Generating image... please wait! This may take a minute or two."

// Orchestrator drives one streamed assistant completion: it feeds the
// projected history to the provider, mirrors every text delta into the
// placeholder message and executes image tool rounds until the model
// produces a final answer or the round cap is hit.
type Orchestrator struct {
	provider    llm.Provider
	imageTool   *ImageTool
	writer      PlaceholderWriter
	model       string
	temperature float64
	maxRounds   int
	log         zerolog.Logger
}

func NewOrchestrator(
	provider llm.Provider,
	imageTool *ImageTool,
	writer PlaceholderWriter,
	model string,
	temperature float64,
	maxRounds int,
	log zerolog.Logger,
) *Orchestrator {
	if maxRounds <= 0 {
		maxRounds = 10
	}
	return &Orchestrator{
		provider:    provider,
		imageTool:   imageTool,
		writer:      writer,
		model:       model,
		temperature: temperature,
		maxRounds:   maxRounds,
		log:         log.With().Str("component", "completion-orchestrator").Logger(),
	}
}

// Execute runs the completion for a task. On provider failure the attempt is
// terminal: whatever text accumulated stays as the placeholder's content and
// the error is returned to the task handle, never retried.
func (o *Orchestrator) Execute(ctx context.Context, task Task) error {
	pump := newPlaceholderPump(ctx, o.writer, task.PlaceholderID, o.log)
	defer pump.Close()

	messages := make([]llm.ChatMessage, 0, len(task.History)+1)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: systemInstructions})
	messages = append(messages, task.History...)

	var accumulated strings.Builder

	for round := 0; round < o.maxRounds; round++ {
		req := llm.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Tools:       []llm.ToolDefinition{o.imageTool.Definition()},
			Temperature: &o.temperature,
			Stream:      true,
		}

		result, err := o.streamRound(ctx, req, &accumulated, pump)
		if err != nil {
			o.log.Error().
				Err(err).
				Str("chat_id", task.ChatPublicID).
				Str("message_id", task.PlaceholderID).
				Int("round", round).
				Msg("completion stream failed")
			return err
		}

		assistant := llm.ChatMessage{
			Role:      llm.RoleAssistant,
			Content:   result.content,
			ToolCalls: result.toolCalls,
		}
		messages = append(messages, assistant)

		if len(result.toolCalls) == 0 {
			o.log.Info().
				Str("chat_id", task.ChatPublicID).
				Str("message_id", task.PlaceholderID).
				Int("rounds", round+1).
				Msg("completion finished")
			return nil
		}

		for _, call := range result.toolCalls {
			messages = append(messages, o.runToolCall(ctx, call, pump))
		}
	}

	// Round cap reached: keep the accumulated text as the final content.
	o.log.Warn().
		Str("chat_id", task.ChatPublicID).
		Str("message_id", task.PlaceholderID).
		Int("max_rounds", o.maxRounds).
		Msg("tool round cap reached")
	return nil
}

// runToolCall executes one tool invocation and returns the tool result
// message fed back to the provider. Failures are reported to the model as
// text so the session never hangs on a broken tool.
func (o *Orchestrator) runToolCall(ctx context.Context, call llm.ToolCall, pump *placeholderPump) llm.ChatMessage {
	result := llm.ChatMessage{
		Role:       llm.RoleTool,
		ToolCallID: call.ID,
	}

	if call.Function.Name != ToolNameGenerateImage {
		result.Content = fmt.Sprintf("unknown tool %q", call.Function.Name)
		return result
	}

	pump.Set(generatingNotice)

	url, err := o.imageTool.Invoke(ctx, call.Function.Arguments)
	if err != nil {
		platformerrors.LogError(o.log, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "image tool failed"))
		result.Content = fmt.Sprintf("image generation failed: %s", err.Error())
		return result
	}

	result.Content = url
	return result
}

type roundResult struct {
	content      string
	toolCalls    []llm.ToolCall
	finishReason string
}

// streamRound consumes one streamed completion. Every content delta extends
// both the round content and the overall accumulator, and the accumulator
// snapshot is handed to the pump so live readers see the text grow.
func (o *Orchestrator) streamRound(ctx context.Context, req llm.ChatCompletionRequest, total *strings.Builder, pump *placeholderPump) (*roundResult, error) {
	stream, err := o.provider.StreamChatCompletion(ctx, req)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeProvider, "failed to open completion stream", err,
			"6f0a1b2c-3d4e-5f6a-7b8c-9d0e1f2a3b4c")
	}
	defer stream.Close()

	acc := newRoundAccumulator()

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeProvider, "completion stream broke", err,
				"e5d4c3b2-a190-4f8e-7d6c-5b4a39281706")
		}
		for _, choice := range chunk.Choices {
			if choice.Index != 0 {
				continue
			}
			if choice.Delta.Content != "" {
				acc.content.WriteString(choice.Delta.Content)
				total.WriteString(choice.Delta.Content)
				pump.Set(total.String())
			}
			for _, call := range choice.Delta.ToolCalls {
				acc.applyToolCall(call)
			}
			if choice.FinishReason != "" {
				acc.finishReason = choice.FinishReason
			}
		}
	}

	return acc.result(), nil
}

// roundAccumulator reassembles the assistant message of one streamed round.
// Tool call arguments arrive fragmented across chunks, keyed by index.
type roundAccumulator struct {
	content      strings.Builder
	finishReason string
	toolCalls    map[int]*toolCallAccumulator
}

type toolCallAccumulator struct {
	id        string
	name      string
	arguments strings.Builder
}

func newRoundAccumulator() *roundAccumulator {
	return &roundAccumulator{toolCalls: make(map[int]*toolCallAccumulator)}
}

func (a *roundAccumulator) applyToolCall(call llm.ToolCall) {
	index := 0
	if call.Index != nil {
		index = *call.Index
	}
	acc, ok := a.toolCalls[index]
	if !ok {
		acc = &toolCallAccumulator{}
		a.toolCalls[index] = acc
	}
	if call.ID != "" {
		acc.id = call.ID
	}
	if call.Function.Name != "" {
		acc.name = call.Function.Name
	}
	acc.arguments.WriteString(call.Function.Arguments)
}

func (a *roundAccumulator) result() *roundResult {
	indexes := make([]int, 0, len(a.toolCalls))
	for index := range a.toolCalls {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	calls := make([]llm.ToolCall, 0, len(indexes))
	for _, index := range indexes {
		acc := a.toolCalls[index]
		calls = append(calls, llm.ToolCall{
			ID:   acc.id,
			Type: "function",
			Function: llm.ToolCallFunction{
				Name:      acc.name,
				Arguments: acc.arguments.String(),
			},
		})
	}

	return &roundResult{
		content:      a.content.String(),
		toolCalls:    calls,
		finishReason: a.finishReason,
	}
}
