// Package viewport implements the pan/zoom/drag state of the map surface.
//
// The surface is drawn as translate(pan) · scale(zoom) with the scale pivot
// at the origin, so pan also compensates for off-center content.
package viewport

import "github.com/jusunglee/railmap-go/internal/models"

// Zoom limits and defaults
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	DefaultZoom = 0.8

	// WheelStep is applied per wheel tick, CommandStep per zoom button press
	WheelStep   = 0.1
	CommandStep = 0.2
)

// DefaultPan offsets the network's native coordinates into view
var DefaultPan = models.Point{X: 100, Y: -700}

// State is a snapshot of a Transform
type State struct {
	Zoom       float64      `json:"zoom"`
	Pan        models.Point `json:"pan"`
	Dragging   bool         `json:"dragging"`
	DragAnchor models.Point `json:"drag_anchor"`
}

// Apply maps a graph coordinate to a viewport coordinate
func (s State) Apply(p models.Point) models.Point {
	return models.Point{X: p.X*s.Zoom + s.Pan.X, Y: p.Y*s.Zoom + s.Pan.Y}
}

// Invert maps a viewport coordinate back to a graph coordinate
func (s State) Invert(p models.Point) models.Point {
	return models.Point{X: (p.X - s.Pan.X) / s.Zoom, Y: (p.Y - s.Pan.Y) / s.Zoom}
}

// Transform is the viewport state machine. Use New for the default view;
// the zero value has zoom 0 and is only valid after Reset.
type Transform struct {
	zoom     float64
	pan      models.Point
	dragging bool
	anchor   models.Point
}

// New returns a transform in the default view
func New() *Transform {
	t := &Transform{}
	t.Reset()
	return t
}

// State returns a snapshot of the transform
func (t *Transform) State() State {
	return State{
		Zoom:       t.zoom,
		Pan:        t.pan,
		Dragging:   t.dragging,
		DragAnchor: t.anchor,
	}
}

// Zoom returns the current zoom factor
func (t *Transform) Zoom() float64 {
	return t.zoom
}

// Pan returns the current pan offset
func (t *Transform) Pan() models.Point {
	return t.pan
}

// Dragging reports whether a drag is in progress
func (t *Transform) Dragging() bool {
	return t.dragging
}

// ZoomBy changes zoom by delta, clamped to [MinZoom, MaxZoom]
func (t *Transform) ZoomBy(delta float64) {
	t.zoom = clamp(t.zoom+delta, MinZoom, MaxZoom)
}

// BeginDrag starts a drag at pointer. It is ignored while a drag is active.
func (t *Transform) BeginDrag(pointer models.Point) {
	if t.dragging {
		return
	}
	t.anchor = pointer.Sub(t.pan)
	t.dragging = true
}

// UpdateDrag moves the pan so the anchor stays under pointer.
// It does nothing unless a drag is active.
func (t *Transform) UpdateDrag(pointer models.Point) {
	if !t.dragging {
		return
	}
	t.pan = pointer.Sub(t.anchor)
}

// EndDrag stops dragging. Safe to call when not dragging.
func (t *Transform) EndDrag() {
	t.dragging = false
}

// Reset restores the default zoom and pan. Drag state is left alone.
func (t *Transform) Reset() {
	t.zoom = DefaultZoom
	t.pan = DefaultPan
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
