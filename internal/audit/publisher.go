// Package audit captures the append-only trail of routing and signature
// events. It uses the storage layer for persistence so tests can swap sinks
// easily; a nil *Publisher is a no-op, keeping audit optional in unit tests.
package audit

import (
	"context"
	"time"

	id "tramita/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProcess(ctx context.Context, processID id.ProcessID) ([]Event, error)
}

// Publisher captures structured audit events.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil || p.store == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context, processID id.ProcessID) ([]Event, error) {
	if p == nil || p.store == nil {
		return nil, nil
	}
	return p.store.ListByProcess(ctx, processID)
}
