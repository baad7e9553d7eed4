// Package selector implements the interactive region-selection state machine.
// It is driven by pointer events against a frozen screen snapshot and is
// independent of any display or overlay; the presentation layer feeds events
// in and renders the in-progress rectangle when a redraw is signalled.
package selector

import (
	"context"

	"screen-ocr-ollama/screenshot"
)

// MinSpan is the minimum selection span in device pixels. A selection
// commits only when both width and height strictly exceed it.
const MinSpan = 5

type Point struct {
	X int
	Y int
}

type Phase int

const (
	Idle Phase = iota
	Selecting
	Committed
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Event is a pointer or key input delivered to the machine.
type Event interface {
	isEvent()
}

// PrimaryDown starts a selection, anchoring at the pointer position.
type PrimaryDown struct{ At Point }

// PointerMove updates the in-progress rectangle.
type PointerMove struct{ At Point }

// PrimaryUp commits the selection if it spans more than MinSpan in both
// dimensions, otherwise cancels it.
type PrimaryUp struct{ At Point }

// SecondaryDown cancels the selection at any pre-commit phase.
type SecondaryDown struct{}

// CancelKey cancels the selection at any pre-commit phase.
type CancelKey struct{}

func (PrimaryDown) isEvent()   {}
func (PointerMove) isEvent()   {}
func (PrimaryUp) isEvent()     {}
func (SecondaryDown) isEvent() {}
func (CancelKey) isEvent()     {}

// Effect describes the side effects a transition requests from the caller.
type Effect struct {
	// Redraw signals the overlay to repaint the in-progress rectangle.
	Redraw bool
	// Done is set when the machine reached Committed or Cancelled.
	Done bool
}

// Machine tracks one selection. It is not safe for concurrent use; exactly
// one selection runs per process invocation, driven from a single goroutine.
type Machine struct {
	phase  Phase
	anchor Point
	cur    Point
}

func NewMachine() *Machine {
	return &Machine{phase: Idle}
}

func (m *Machine) Phase() Phase { return m.phase }

// Rect returns the derived rectangle, normalized so that width and height are
// non-negative regardless of drag direction. Only meaningful in Selecting or
// Committed.
func (m *Machine) Rect() screenshot.Region {
	return screenshot.Region{
		X:      min(m.anchor.X, m.cur.X),
		Y:      min(m.anchor.Y, m.cur.Y),
		Width:  abs(m.cur.X - m.anchor.X),
		Height: abs(m.cur.Y - m.anchor.Y),
	}
}

// Apply runs one transition. Committed and Cancelled are terminal: events
// arriving after either are ignored.
func (m *Machine) Apply(ev Event) Effect {
	if m.phase == Committed || m.phase == Cancelled {
		return Effect{}
	}

	switch e := ev.(type) {
	case PrimaryDown:
		if m.phase != Idle {
			return Effect{}
		}
		m.phase = Selecting
		m.anchor = e.At
		m.cur = e.At
		return Effect{Redraw: true}

	case PointerMove:
		if m.phase != Selecting {
			return Effect{}
		}
		m.cur = e.At
		return Effect{Redraw: true}

	case PrimaryUp:
		if m.phase != Selecting {
			return Effect{}
		}
		m.cur = e.At
		r := m.Rect()
		if r.Width > MinSpan && r.Height > MinSpan {
			m.phase = Committed
		} else {
			m.phase = Cancelled
		}
		return Effect{Done: true}

	case SecondaryDown:
		m.phase = Cancelled
		return Effect{Done: true}

	case CancelKey:
		m.phase = Cancelled
		return Effect{Done: true}
	}

	return Effect{}
}

// Select drives a machine over an event stream until it terminates. It
// returns (region, false, nil) on commit and (zero, true, nil) on
// cancellation; cancellation is not an error. A cancelled context or a closed
// event channel also cancels the selection, with the context error surfaced.
func Select(ctx context.Context, events <-chan Event, redraw func(screenshot.Region)) (screenshot.Region, bool, error) {
	m := NewMachine()
	for {
		select {
		case <-ctx.Done():
			return screenshot.Region{}, true, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return screenshot.Region{}, true, nil
			}
			eff := m.Apply(ev)
			if eff.Redraw && redraw != nil {
				redraw(m.Rect())
			}
			if eff.Done {
				if m.Phase() == Committed {
					return m.Rect(), false, nil
				}
				return screenshot.Region{}, true, nil
			}
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
