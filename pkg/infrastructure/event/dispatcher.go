package event

import (
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
)

type Handler func(event service.Event) error

// Dispatcher logs every domain event and forwards it to the handlers
// registered for its type.
type Dispatcher struct {
	handlers map[string][]Handler
}

var _ service.EventDispatcher = (*Dispatcher)(nil)

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]Handler)}
}

func (d *Dispatcher) Subscribe(eventType string, handler Handler) {
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *Dispatcher) Dispatch(event service.Event) error {
	log.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Debug("domain event dispatched")

	for _, handler := range d.handlers[event.Type()] {
		if err := handler(event); err != nil {
			return err
		}
	}
	return nil
}
