package eventbus

import (
	"context"

	"github.com/hrsaas/hrcore/pkg/eventbus"
	"github.com/hrsaas/hrcore/pkg/outbox"
)

// Dispatcher bridges relayed outbox messages onto the in-process event bus.
type Dispatcher struct {
	bus eventbus.EventBusWithError
}

func New(bus eventbus.EventBusWithError) *Dispatcher {
	return &Dispatcher{
		bus: bus,
	}
}

// Dispatch publishes via PublishE so handler errors surface and the relay
// can retry. Subscriber signature:
//
//	func(meta *outbox.Meta, topic string, payload json.RawMessage) error
func (d *Dispatcher) Dispatch(ctx context.Context, msg outbox.DispatchedMessage) error {
	_ = ctx
	return d.bus.PublishE(&msg.Meta, msg.Meta.Topic, msg.Payload)
}
