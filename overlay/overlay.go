// Package overlay defines the region-selection API the event loop consumes.
// The overlay surface itself (frozen-screen window, dashed border, fill) is
// owned by the presentation layer; this package adapts its pointer events to
// the selector state machine.
package overlay

import (
	"context"
	"fmt"

	"screen-ocr-ollama/screenshot"
	"screen-ocr-ollama/selector"
)

// Selector is a synchronous region-selection API owned by the event loop.
// Select blocks and MUST be invoked only from the single event-loop
// goroutine. If cancelled is true, region is undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (region screenshot.Region, cancelled bool, err error)
}

// EventSelector drives the selection state machine from a pointer-event
// stream supplied by the presentation layer. Redraw, when set, is called
// with the normalized in-progress rectangle on every selecting transition.
type EventSelector struct {
	Events <-chan selector.Event
	Redraw func(screenshot.Region)
}

func NewEventSelector(events <-chan selector.Event, redraw func(screenshot.Region)) *EventSelector {
	return &EventSelector{Events: events, Redraw: redraw}
}

func (s *EventSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	return selector.Select(ctx, s.Events, s.Redraw)
}

// NewSelector returns the platform selector. Without a wired presentation
// overlay there is no pointer source, so selection reports an error.
func NewSelector() Selector {
	return unsupportedSelector{}
}

type unsupportedSelector struct{}

func (unsupportedSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	return screenshot.Region{}, false, fmt.Errorf("no interactive overlay available; wire an EventSelector to a pointer source")
}
