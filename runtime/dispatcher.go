package runtime

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"price-pact/contract"
	"price-pact/domain/event"
	"price-pact/observability"
)

// Emission is one event plus its audience, captured while the room lock
// was held so recipients and creator reflect the state the event
// describes.
type Emission struct {
	Event      event.DomainEvent
	Scope      event.Scope
	Actor      string
	Recipients []string
	Creator    string
}

// Dispatcher fans emissions out to the right sinks with per-recipient
// view framing. A single consumer goroutine drains the channel, so
// events for one room are delivered in the order they were published.
//
// Delivery into a sink is non-blocking on the sink's side (sinks
// buffer); a slow connection never stalls delivery for anyone else.
type Dispatcher struct {
	log       *slog.Logger
	registry  contract.IRegistry
	stats     *observability.Manager
	emissions chan Emission
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry, stats *observability.Manager, buffer int) *Dispatcher {
	return &Dispatcher{
		log:       log,
		registry:  registry,
		stats:     stats,
		emissions: make(chan Emission, buffer),
	}
}

// Publish enqueues an emission. Blocking keeps ordering and delivery
// guarantees; the buffer absorbs bursts.
func (d *Dispatcher) Publish(em Emission) {
	d.emissions <- em
}

func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Context done, stopping dispatcher")
			return nil
		case em := <-d.emissions:
			d.deliver(ctx, em)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, em Emission) {
	targets := em.Recipients
	switch em.Scope {
	case event.ScopeActor:
		targets = []string{em.Actor}
	case event.ScopeRoomExceptActor:
		targets = lo.Filter(em.Recipients, func(account string, _ int) bool {
			return account != em.Actor
		})
	}

	for _, account := range targets {
		sink, ok := d.registry.Lookup(account)
		if !ok {
			// Offline member; they keep their seat but miss live events.
			continue
		}
		view := event.ViewJoiner
		if account == em.Creator {
			view = event.ViewOwner
		}
		if err := sink.Consume(ctx, contract.Delivery{Event: em.Event, View: view}); err != nil {
			d.stats.IncrDropped()
			d.log.Warn("Failed to deliver event",
				"event", em.Event.Name(),
				"account", account,
				"error", err)
			continue
		}
		d.stats.IncrDispatched()
	}
}
