package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-hub/contract"
	"chat-hub/domain/event"
)

// SweeperWorker ticks the retention sweep. It only enqueues a Sweep
// command; the actual pruning runs on the coordinator goroutine so it
// never races with live traffic.
type SweeperWorker struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	interval   time.Duration
}

func NewSweeperWorker(log *slog.Logger, dispatcher contract.IDispatcher, interval time.Duration) *SweeperWorker {
	return &SweeperWorker{log: log, dispatcher: dispatcher, interval: interval}
}

func (w *SweeperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting retention sweeper worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.dispatcher.Dispatch(event.Sweep{})
		}
	}
}
