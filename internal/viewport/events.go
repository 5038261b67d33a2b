package viewport

import (
	"errors"
	"fmt"

	"github.com/jusunglee/railmap-go/internal/models"
)

// ErrUnknownEvent is returned by Handle for an unrecognised event kind
var ErrUnknownEvent = errors.New("unknown viewport event")

// EventKind names a user input
type EventKind string

// Input events. Mouse and single-contact touch drive the same pointer gesture.
const (
	PointerDown  EventKind = "pointer-down"
	PointerMove  EventKind = "pointer-move"
	PointerUp    EventKind = "pointer-up"
	PointerLeave EventKind = "pointer-leave"
	TouchStart   EventKind = "touch-start"
	TouchMove    EventKind = "touch-move"
	TouchEnd     EventKind = "touch-end"
	Wheel        EventKind = "wheel"
	ZoomIn       EventKind = "zoom-in"
	ZoomOut      EventKind = "zoom-out"
	ResetView    EventKind = "reset"
)

// Event is one input from the map surface.
// Touches is the number of active contacts; 0 is read as a single contact.
type Event struct {
	Kind    EventKind    `json:"kind"`
	Point   models.Point `json:"point"`
	DeltaY  float64      `json:"delta_y,omitempty"`
	Touches int          `json:"touches,omitempty"`
}

// Handle applies an input event to the transform
func (t *Transform) Handle(e Event) error {
	switch e.Kind {
	case PointerDown:
		t.BeginDrag(e.Point)
	case PointerMove:
		t.UpdateDrag(e.Point)
	case PointerUp, PointerLeave, TouchEnd:
		t.EndDrag()
	case TouchStart:
		if singleContact(e) {
			t.BeginDrag(e.Point)
		}
	case TouchMove:
		if singleContact(e) {
			t.UpdateDrag(e.Point)
		}
	case Wheel:
		// Only the sign of the scroll matters; scrolling down zooms out
		switch {
		case e.DeltaY > 0:
			t.ZoomBy(-WheelStep)
		case e.DeltaY < 0:
			t.ZoomBy(WheelStep)
		}
	case ZoomIn:
		t.ZoomBy(CommandStep)
	case ZoomOut:
		t.ZoomBy(-CommandStep)
	case ResetView:
		t.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Kind)
	}
	return nil
}

func singleContact(e Event) bool {
	return e.Touches == 0 || e.Touches == 1
}
