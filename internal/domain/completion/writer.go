package completion

import (
	"context"

	"github.com/rs/zerolog"
)

// PlaceholderWriter persists content snapshots for the assistant placeholder
// message while a completion is streaming.
type PlaceholderWriter interface {
	UpdateMessageContent(ctx context.Context, messagePublicID string, content string) error
}

// placeholderPump serializes all store writes for one placeholder through a
// single goroutine. The orchestrator is the only producer, so the snapshot
// sequence it hands over is already monotonic; the pump coalesces to the
// latest snapshot when the store is slower than the stream.
type placeholderPump struct {
	writer    PlaceholderWriter
	messageID string
	log       zerolog.Logger
	snapshots chan string
	done      chan struct{}
}

func newPlaceholderPump(ctx context.Context, writer PlaceholderWriter, messageID string, log zerolog.Logger) *placeholderPump {
	p := &placeholderPump{
		writer:    writer,
		messageID: messageID,
		log:       log,
		snapshots: make(chan string, 1),
		done:      make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// Set queues a content snapshot, replacing any pending one.
func (p *placeholderPump) Set(content string) {
	for {
		select {
		case p.snapshots <- content:
			return
		default:
			select {
			case <-p.snapshots:
			default:
			}
		}
	}
}

// Close flushes the pending snapshot and stops the writer goroutine.
func (p *placeholderPump) Close() {
	close(p.snapshots)
	<-p.done
}

func (p *placeholderPump) run(ctx context.Context) {
	defer close(p.done)
	for content := range p.snapshots {
		if err := p.writer.UpdateMessageContent(ctx, p.messageID, content); err != nil {
			p.log.Warn().
				Err(err).
				Str("message_id", p.messageID).
				Msg("placeholder write failed")
		}
	}
}
