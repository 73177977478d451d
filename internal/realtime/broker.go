package realtime

import (
	"context"

	"family-fund-go/internal/models"
)

// Broker delivers message-insert events to subscribed recipients. The
// platform publishes every stored chat message; subscribers receive only
// messages addressed to them.
type Broker interface {
	Publish(ctx context.Context, msg models.Message) error
	Subscribe(receiverId string, fn func(models.Message)) (unsubscribe func(), err error)
	Close() error
}
