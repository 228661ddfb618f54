package viewer

import (
	"encoding/json"
	"fmt"

	"product-viewer/internal/spin"
)

// EventType names a host input.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventWheel       EventType = "wheel"
	EventTouchStart  EventType = "touchstart"
	EventTouchMove   EventType = "touchmove"
	EventTouchEnd    EventType = "touchend"
	EventKey         EventType = "key"
	EventAutoRotate  EventType = "autorotate"
	EventReset       EventType = "reset"
	EventView        EventType = "view"
	EventFlip        EventType = "flip"
	EventColor       EventType = "color"
	EventDismiss     EventType = "dismiss"
	EventRetry       EventType = "retry"
)

// Point is a position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is one input from the host, decoded from JSON.
type Event struct {
	Type    EventType `json:"type"`
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	Button  int       `json:"button,omitempty"`
	Shift   bool      `json:"shift,omitempty"`
	Ctrl    bool      `json:"ctrl,omitempty"`
	DeltaY  float64   `json:"deltaY,omitempty"`
	Touches []Point   `json:"touches,omitempty"`
	Key     string    `json:"key,omitempty"`
	View    string    `json:"view,omitempty"`
	Axis    string    `json:"axis,omitempty"`
	Color   string    `json:"color,omitempty"`
}

// ParseEvent decodes a JSON event.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("viewer: parse event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("viewer: parse event: missing type")
	}
	return ev, nil
}

func (ev Event) point() spin.Point {
	return spin.Point{X: ev.X, Y: ev.Y}
}

func (ev Event) touches() []spin.Point {
	pts := make([]spin.Point, len(ev.Touches))
	for i, p := range ev.Touches {
		pts[i] = spin.Point{X: p.X, Y: p.Y}
	}
	return pts
}
