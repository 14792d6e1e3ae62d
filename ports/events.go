package ports

import "gochart/models"

// EventSink receives run progress events. Publish must not block.
type EventSink interface {
	Publish(event models.RunEvent)
}
