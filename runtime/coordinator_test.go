package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-hub/domain/event"
	"chat-hub/mocks"
)

func TestCoordinator_AppliesCommandsInOrder(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engineMock := mocks.NewMockIEngine(ctrl)
	applied := make(chan event.Command, 2)
	engineMock.EXPECT().
		Apply(gomock.Any()).
		Do(func(cmd event.Command) { applied <- cmd }).
		Times(2)

	coordinator := NewCoordinator(slog.Default(), engineMock, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = coordinator.Run(ctx) }()

	coordinator.Dispatch(event.SetNickname{Session: "s1", Nickname: "alice"})
	coordinator.Dispatch(event.JoinRoom{Session: "s1", Room: "arena"})

	first := <-applied
	second := <-applied
	req.IsType(event.SetNickname{}, first)
	req.IsType(event.JoinRoom{}, second)
}

func TestCoordinator_DropsWhenQueueIsFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Engine never runs: the coordinator is not started, so the queue
	// cannot drain and the second dispatch must be dropped, not block.
	engineMock := mocks.NewMockIEngine(ctrl)
	coordinator := NewCoordinator(slog.Default(), engineMock, 1)

	done := make(chan struct{})
	go func() {
		coordinator.Dispatch(event.Sweep{})
		coordinator.Dispatch(event.Sweep{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Dispatch blocked on a full queue")
	}
}
