package selector

import (
	"context"
	"testing"
	"time"

	"screen-ocr-ollama/screenshot"
)

func drag(t *testing.T, anchor, release Point) (*Machine, screenshot.Region) {
	t.Helper()
	m := NewMachine()
	m.Apply(PrimaryDown{At: anchor})
	m.Apply(PointerMove{At: release})
	m.Apply(PrimaryUp{At: release})
	return m, m.Rect()
}

func TestNormalizationIsDirectionInvariant(t *testing.T) {
	a := Point{X: 100, Y: 100}
	b := Point{X: 300, Y: 160}
	want := screenshot.Region{X: 100, Y: 100, Width: 200, Height: 60}

	cases := []struct {
		name           string
		anchor, target Point
	}{
		{"down-right", a, b},
		{"up-left", b, a},
		{"down-left", Point{X: 300, Y: 100}, Point{X: 100, Y: 160}},
		{"up-right", Point{X: 100, Y: 160}, Point{X: 300, Y: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, got := drag(t, tc.anchor, tc.target)
			if got != want {
				t.Errorf("rect = %+v, want %+v", got, want)
			}
			if m.Phase() != Committed {
				t.Errorf("phase = %v, want committed", m.Phase())
			}
		})
	}
}

func TestMinimumSpanBoundary(t *testing.T) {
	cases := []struct {
		name   string
		w, h   int
		commit bool
	}{
		{"width 4", 4, 50, false},
		{"height 4", 50, 4, false},
		{"exactly 5", 5, 5, false}, // boundary is exclusive
		{"6x6", 6, 6, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := drag(t, Point{X: 10, Y: 10}, Point{X: 10 + tc.w, Y: 10 + tc.h})
			want := Cancelled
			if tc.commit {
				want = Committed
			}
			if m.Phase() != want {
				t.Errorf("%dx%d drag: phase = %v, want %v", tc.w, tc.h, m.Phase(), want)
			}
		})
	}
}

func TestSecondaryButtonCancels(t *testing.T) {
	m := NewMachine()
	m.Apply(PrimaryDown{At: Point{X: 10, Y: 10}})
	m.Apply(PointerMove{At: Point{X: 200, Y: 200}})
	eff := m.Apply(SecondaryDown{})
	if !eff.Done {
		t.Error("secondary button should terminate the selection")
	}
	if m.Phase() != Cancelled {
		t.Errorf("phase = %v, want cancelled", m.Phase())
	}
}

func TestCancelKeyFromIdle(t *testing.T) {
	m := NewMachine()
	eff := m.Apply(CancelKey{})
	if !eff.Done || m.Phase() != Cancelled {
		t.Errorf("cancel key in idle: done=%v phase=%v", eff.Done, m.Phase())
	}
}

func TestTerminalPhasesIgnoreEvents(t *testing.T) {
	m, committed := drag(t, Point{X: 0, Y: 0}, Point{X: 100, Y: 100})
	if m.Phase() != Committed {
		t.Fatalf("phase = %v, want committed", m.Phase())
	}
	for _, ev := range []Event{
		PrimaryDown{At: Point{X: 5, Y: 5}},
		PointerMove{At: Point{X: 500, Y: 500}},
		SecondaryDown{},
		CancelKey{},
	} {
		if eff := m.Apply(ev); eff.Redraw || eff.Done {
			t.Errorf("terminal machine reacted to %T", ev)
		}
	}
	if m.Rect() != committed {
		t.Error("committed rectangle changed after terminal phase")
	}
}

func TestMoveEmitsRedraw(t *testing.T) {
	m := NewMachine()
	if eff := m.Apply(PointerMove{At: Point{X: 1, Y: 1}}); eff.Redraw {
		t.Error("move in idle should not redraw")
	}
	m.Apply(PrimaryDown{At: Point{X: 0, Y: 0}})
	if eff := m.Apply(PointerMove{At: Point{X: 50, Y: 50}}); !eff.Redraw {
		t.Error("move while selecting should redraw")
	}
}

func TestSelectCommit(t *testing.T) {
	events := make(chan Event, 8)
	events <- PrimaryDown{At: Point{X: 100, Y: 100}}
	events <- PointerMove{At: Point{X: 200, Y: 140}}
	events <- PointerMove{At: Point{X: 300, Y: 160}}
	events <- PrimaryUp{At: Point{X: 300, Y: 160}}

	var redraws int
	region, cancelled, err := Select(context.Background(), events, func(screenshot.Region) { redraws++ })
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if cancelled {
		t.Fatal("Select reported cancellation for a committed drag")
	}
	want := screenshot.Region{X: 100, Y: 100, Width: 200, Height: 60}
	if region != want {
		t.Errorf("region = %+v, want %+v", region, want)
	}
	if redraws != 3 {
		t.Errorf("redraws = %d, want 3 (down + two moves)", redraws)
	}
}

func TestSelectCancellation(t *testing.T) {
	events := make(chan Event, 4)
	events <- PrimaryDown{At: Point{X: 10, Y: 10}}
	events <- SecondaryDown{}

	_, cancelled, err := Select(context.Background(), events, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !cancelled {
		t.Error("Select should report cancellation")
	}
}

func TestSelectContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, cancelled, err := Select(ctx, make(chan Event), nil)
	if !cancelled {
		t.Error("context cancellation should cancel the selection")
	}
	if err == nil {
		t.Error("context cancellation should surface the context error")
	}
}
