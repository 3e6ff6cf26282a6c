//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the
// Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Transport delivers outbound events to connections. The engine runs on a
// single goroutine, so implementations must never block the caller: a slow
// client gets dropped frames, not a stalled engine.
//
// Group membership mirrors room membership and is kept in sync by the
// engine through JoinGroup/LeaveGroup.
type Transport interface {
	Unicast(id domain.SessionID, e event.Outbound)
	RoomCast(room string, e event.Outbound)
	Broadcast(e event.Outbound)
	JoinGroup(id domain.SessionID, room string)
	LeaveGroup(id domain.SessionID, room string)
}

// IEngine is the coordinator-facing surface of the state engine. Apply must
// only ever be called from the coordinator goroutine.
type IEngine interface {
	Apply(cmd event.Command)
}

// IDispatcher enqueues commands for serialized processing.
type IDispatcher interface {
	Dispatch(cmd event.Command)
}
