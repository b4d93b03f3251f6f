//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"price-pact/domain"
	"price-pact/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

type WorkerName string

// Worker doesn't protect itself; the supervisor recovers its panics.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming on the
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

// Delivery is one event framed for one recipient.
type Delivery struct {
	Event event.DomainEvent
	View  event.View
}

type EventSink interface {
	Consume(ctx context.Context, d Delivery) error
}

// IRegistry maps an account id to its currently active connection.
// Registering again overwrites the previous handle (last-connection-wins).
type IRegistry interface {
	Register(account string, sink EventSink)
	Drop(account string, sink EventSink) bool
	Lookup(account string) (EventSink, bool)
	Count() int
}

// ICoordinator is the inbound action surface the transport drives.
// Actions never return errors: every failure is converted into a
// unicast error event on the acting connection.
type ICoordinator interface {
	Connect(account string, sink EventSink)
	Disconnect(account string, sink EventSink)

	CreateRoom(ctx context.Context, account string)
	JoinRoom(ctx context.Context, roomID, account string)
	Ready(ctx context.Context, roomID, account string)
	UpdateName(ctx context.Context, roomID, account, newName string)
	StartGame(ctx context.Context, roomID, account string)
	Predict(ctx context.Context, roomID, account string, value *float64, form map[string]any)
	Purchase(ctx context.Context, roomID, account string, amount float64, depositProof string)
	LeaveRoom(ctx context.Context, roomID, account string)
	RoomInfo(ctx context.Context, roomID, account string)
}

// MintMetadata is the payload handed to the mint collaborator the first
// time a room reaches consensus.
type MintMetadata struct {
	RoomID           string
	ConsensusValue   float64
	ParticipantCount int
	Timestamp        time.Time
}

// Settler transfers the agreed amount. It must verify balance before
// transfer; failure leaves room state untouched.
type Settler interface {
	Settle(ctx context.Context, recipient string, amount float64, depositProof string) (string, error)
}

// Minter issues the commemorative artifact once per room.
type Minter interface {
	Mint(ctx context.Context, recipient string, meta MintMetadata) (domain.MintArtifact, error)
}

// Scorer computes an advisory price from structured features.
type Scorer interface {
	Score(ctx context.Context, features map[string]any) (float64, error)
}
