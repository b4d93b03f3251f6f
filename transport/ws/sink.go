package ws

import (
	"context"
	"fmt"
	"sync"

	"price-pact/contract"
)

var (
	ErrSinkClosed = fmt.Errorf("connection sink already closed")
	ErrSinkFull   = fmt.Errorf("connection sink buffer full")
)

// Sink buffers deliveries between the dispatcher and one connection's
// write pump. Consume never blocks the dispatcher: a full buffer drops
// the delivery and reports the error upstream.
type Sink struct {
	mu         sync.Mutex
	closed     bool
	deliveries chan contract.Delivery
}

func NewSink(bufferSize int) *Sink {
	return &Sink{deliveries: make(chan contract.Delivery, bufferSize)}
}

func (s *Sink) Consume(ctx context.Context, d contract.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.deliveries <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrSinkFull
	}
}

// Deliveries is drained by the connection's write pump; it is closed by
// Close once the connection goes away.
func (s *Sink) Deliveries() <-chan contract.Delivery {
	return s.deliveries
}

// Close is idempotent.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.deliveries)
}
