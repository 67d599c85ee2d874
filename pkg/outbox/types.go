package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message is the unit stored in an outbox table. EventID doubles as the
// idempotency key: enqueueing the same event twice is a no-op.
type Message struct {
	TenantID uuid.UUID
	Topic    string
	EventID  uuid.UUID
	Payload  json.RawMessage
}

func (m Message) validate() error {
	switch {
	case m.TenantID == uuid.Nil:
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidConfig)
	case m.EventID == uuid.Nil:
		return fmt.Errorf("%w: event_id is required", ErrInvalidConfig)
	case m.Topic == "":
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	return nil
}

// Meta is the stable dispatch metadata handed to subscribers.
type Meta struct {
	Table    pgx.Identifier
	TenantID uuid.UUID
	Topic    string
	EventID  uuid.UUID
	Sequence int64
	Attempts int
}

// DispatchedMessage is the unit delivered by Relay to a Dispatcher.
type DispatchedMessage struct {
	Meta    Meta
	Payload json.RawMessage
}

// Dispatcher hands a claimed row to its consumer. Returning an error
// reschedules the row with backoff.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg DispatchedMessage) error
}
