package pcanbus

import (
	"fmt"
	"log"
)

type EventType int

func (et EventType) String() string {
	switch et {
	case EventTypeError:
		return "ERROR"
	case EventTypeWarning:
		return "WARN"
	case EventTypeInfo:
		return "INFO"
	case EventTypeDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

const (
	EventTypeError EventType = iota
	EventTypeWarning
	EventTypeInfo
	EventTypeDebug
)

// Event is a diagnostic emitted by the bus, such as a bitrate fallback or a
// bus-light condition seen while receiving.
type Event struct {
	Type    EventType
	Details string
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Details)
}

func logEvent(e Event) {
	log.Println(e.String())
}

func (b *Bus) sendEvent(eventType EventType, details string) {
	if eventType == EventTypeDebug && !b.cfg.Debug {
		return
	}
	b.cfg.OnEvent(Event{Type: eventType, Details: details})
}

func (b *Bus) warn(details string) {
	b.sendEvent(EventTypeWarning, details)
}

func (b *Bus) debug(details string) {
	b.sendEvent(EventTypeDebug, details)
}
