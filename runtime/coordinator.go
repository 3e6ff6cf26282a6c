package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"chat-hub/contract"
	"chat-hub/domain/event"
)

// Coordinator funnels every command through a single goroutine so the
// engine never sees two mutations at once. Dispatch is safe to call from
// any goroutine.
type Coordinator struct {
	log      *slog.Logger
	engine   contract.IEngine
	commands chan event.Command
}

func NewCoordinator(log *slog.Logger, engine contract.IEngine, bufferSize int) *Coordinator {
	return &Coordinator{
		log:      log,
		engine:   engine,
		commands: make(chan event.Command, bufferSize),
	}
}

// Dispatch enqueues a command without blocking the caller. When the queue
// is full the command is dropped and logged, so a slow engine cannot stall
// connection goroutines.
func (c *Coordinator) Dispatch(cmd event.Command) {
	select {
	case c.commands <- cmd:
	default:
		c.log.Warn("Command queue full, dropping command",
			"type", fmt.Sprintf("%T", cmd), "origin", cmd.Origin())
	}
}

// Run drains the command queue until ctx is cancelled. Commands already
// enqueued at cancellation are discarded.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("Coordinator started", "queueCapacity", cap(c.commands))
	for {
		select {
		case <-ctx.Done():
			c.log.Info("Coordinator stopped", "pending", len(c.commands))
			return ctx.Err()
		case cmd := <-c.commands:
			c.engine.Apply(cmd)
		}
	}
}
