package completion

import (
	"context"
	"sync"

	"vision-chat/server/internal/domain/llm"
)

// Task describes one assistant completion to run against a chat history.
// History carries the projected conversation up to and including the user
// message that triggered the completion.
type Task struct {
	ChatPublicID  string
	PlaceholderID string
	History       []llm.ChatMessage
}

// Handle tracks an in-flight completion task. Callers are free to ignore it;
// tests and future surfaces can wait on Done or cancel the attempt.
type Handle struct {
	ID     string
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func newHandle(id string, cancel context.CancelFunc) *Handle {
	return &Handle{
		ID:     id,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Done is closed when the task has finished, successfully or not.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the terminal error of the task, nil before Done is closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel aborts the task's context. Nothing in the request path calls this,
// it exists as an extension point.
func (h *Handle) Cancel() {
	h.cancel()
}

func (h *Handle) finish(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	close(h.done)
}
