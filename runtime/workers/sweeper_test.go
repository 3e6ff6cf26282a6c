package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"chat-hub/domain/event"
	"chat-hub/mocks"
)

func TestSweeperWorker_DispatchesOnTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ticked := make(chan struct{}, 1)
	dispatcherMock := mocks.NewMockIDispatcher(ctrl)
	dispatcherMock.EXPECT().
		Dispatch(event.Sweep{}).
		Do(func(event.Command) {
			select {
			case ticked <- struct{}{}:
			default:
			}
		}).
		MinTimes(1)

	worker := NewSweeperWorker(slog.Default(), dispatcherMock, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("Sweeper never dispatched")
	}
}
