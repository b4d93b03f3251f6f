package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"price-pact/contract"
	"price-pact/domain"
	"price-pact/domain/event"
	"price-pact/observability"
)

type recordingSink struct {
	mu         sync.Mutex
	deliveries []contract.Delivery
}

func (s *recordingSink) Consume(ctx context.Context, d contract.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, d)
	return nil
}

func (s *recordingSink) all() []contract.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contract.Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

func (s *recordingSink) names() []string {
	var out []string
	for _, d := range s.all() {
		out = append(out, d.Event.Name())
	}
	return out
}

type failingSink struct{}

func (failingSink) Consume(ctx context.Context, d contract.Delivery) error {
	return fmt.Errorf("buffer full")
}

func startDispatcher(t *testing.T, registry contract.IRegistry) (*Dispatcher, *observability.Manager) {
	t.Helper()
	log := slog.Default()
	stats := observability.NewManager(log, nil, nil)
	dispatcher := NewDispatcher(log, registry, stats, 64)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = dispatcher.Run(ctx) }()
	return dispatcher, stats
}

func testRoom(id, creator string, members ...string) domain.Room {
	room := domain.NewRoom(id, creator)
	for _, m := range members {
		_ = room.Join(m)
	}
	return room.Snapshot()
}

func TestDispatcher_ScopeActor_Unicast(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, bob := &recordingSink{}, &recordingSink{}
	registry.Register("alice", alice)
	registry.Register("bob", bob)
	dispatcher, _ := startDispatcher(t, registry)

	room := testRoom("abc1234", "alice", "bob")
	dispatcher.Publish(Emission{
		Event:      event.RoomCreated{Room: room},
		Scope:      event.ScopeActor,
		Actor:      "alice",
		Recipients: []string{"alice", "bob"},
		Creator:    room.Creator,
	})

	req.Eventually(func() bool { return len(alice.all()) == 1 }, time.Second, 5*time.Millisecond)
	req.Empty(bob.all())
}

func TestDispatcher_ScopeRoomExceptActor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, bob, carol := &recordingSink{}, &recordingSink{}, &recordingSink{}
	registry.Register("alice", alice)
	registry.Register("bob", bob)
	registry.Register("carol", carol)
	dispatcher, _ := startDispatcher(t, registry)

	room := testRoom("abc1234", "alice", "bob", "carol")
	dispatcher.Publish(Emission{
		Event:      event.ParticipantJoined{Room: room, Account: "carol"},
		Scope:      event.ScopeRoomExceptActor,
		Actor:      "carol",
		Recipients: []string{"alice", "bob", "carol"},
		Creator:    "alice",
	})

	req.Eventually(func() bool {
		return len(alice.all()) == 1 && len(bob.all()) == 1
	}, time.Second, 5*time.Millisecond)
	req.Empty(carol.all())
}

func TestDispatcher_ViewFraming(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, bob := &recordingSink{}, &recordingSink{}
	registry.Register("alice", alice)
	registry.Register("bob", bob)
	dispatcher, _ := startDispatcher(t, registry)

	room := testRoom("abc1234", "alice", "bob")
	dispatcher.Publish(Emission{
		Event:      event.GameStarted{Room: room},
		Scope:      event.ScopeRoom,
		Actor:      "alice",
		Recipients: []string{"alice", "bob"},
		Creator:    "alice",
	})

	req.Eventually(func() bool {
		return len(alice.all()) == 1 && len(bob.all()) == 1
	}, time.Second, 5*time.Millisecond)

	// The creator sees the owner framing, everyone else the joiner one
	req.Equal(event.ViewOwner, alice.all()[0].View)
	req.Equal(event.ViewJoiner, bob.all()[0].View)
}

func TestDispatcher_OfflineRecipientSkipped(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := &recordingSink{}
	registry.Register("alice", alice)
	// bob keeps his seat but has no live connection
	dispatcher, _ := startDispatcher(t, registry)

	room := testRoom("abc1234", "alice", "bob")
	dispatcher.Publish(Emission{
		Event:      event.RoomReady{Room: room},
		Scope:      event.ScopeRoom,
		Actor:      "bob",
		Recipients: []string{"alice", "bob"},
		Creator:    "alice",
	})

	req.Eventually(func() bool { return len(alice.all()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestDispatcher_FailedDelivery_CountsAsDropped(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Register("alice", failingSink{})
	dispatcher, stats := startDispatcher(t, registry)

	room := testRoom("abc1234", "alice")
	dispatcher.Publish(Emission{
		Event:      event.RoomCreated{Room: room},
		Scope:      event.ScopeActor,
		Actor:      "alice",
		Recipients: []string{"alice"},
		Creator:    "alice",
	})

	req.Eventually(func() bool {
		stats.Refresh()
		return stats.GetLatest().EventsDropped == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_PreservesPublishOrder(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := &recordingSink{}
	registry.Register("alice", alice)
	dispatcher, _ := startDispatcher(t, registry)

	room := testRoom("abc1234", "alice")
	dispatcher.Publish(Emission{Event: event.RoomCreated{Room: room}, Scope: event.ScopeActor, Actor: "alice", Creator: "alice"})
	dispatcher.Publish(Emission{Event: event.GameStarted{Room: room}, Scope: event.ScopeActor, Actor: "alice", Creator: "alice"})
	dispatcher.Publish(Emission{Event: event.RoomInfo{Room: room}, Scope: event.ScopeActor, Actor: "alice", Creator: "alice"})

	req.Eventually(func() bool { return len(alice.all()) == 3 }, time.Second, 5*time.Millisecond)
	req.Equal([]string{"roomCreated", "gameStarted", "roomInfo"}, alice.names())
}
