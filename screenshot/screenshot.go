package screenshot

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

// Region is an axis-aligned rectangular screen area, top-left origin.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d at (%d,%d)", r.Width, r.Height, r.X, r.Y)
}

// CaptureError reports a failed screen capture. It is fatal: without a
// readable display surface no selection can start.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("screen capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Snapshot is a single full-screen pixel capture. The buffer is read-only
// after capture; Crop copies pixels out and never mutates it.
type Snapshot struct {
	img *image.RGBA
}

// Capture grabs the full bounds of the primary display once.
func Capture() (*Snapshot, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, &CaptureError{Err: fmt.Errorf("no active displays found")}
	}
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, &CaptureError{Err: err}
	}
	return &Snapshot{img: img}, nil
}

// NewSnapshot wraps an already-captured frame. Used by tests and by callers
// that obtain the frame elsewhere.
func NewSnapshot(img *image.RGBA) *Snapshot {
	return &Snapshot{img: img}
}

func (s *Snapshot) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Crop copies the pixels under region out of the snapshot. The region must
// have positive dimensions and lie fully inside the snapshot bounds.
func (s *Snapshot) Crop(region Region) (image.Image, error) {
	if region.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	if !rect.In(s.img.Bounds()) {
		return nil, fmt.Errorf("region %s outside snapshot bounds %v", region, s.img.Bounds())
	}
	return imaging.Crop(s.img, rect), nil
}
