// Package preprocess converts a cropped color image into the payload sent to
// the OCR backend: grayscale, contrast curve, PNG, base64. The transform is
// pure and deterministic; the same input always yields byte-identical output.
package preprocess

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// contrastExponent shapes the power-law curve applied to normalized luma.
// Values below 1 brighten shadows slightly, which improves text/background
// separation for OCR.
const contrastExponent = 0.8

// Error wraps a failed preprocessing step with its originating cause.
// There is no partial output: preprocessing either fully succeeds or the
// pipeline aborts with this error.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preprocess %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// contrastLUT maps input luma to contrast-enhanced luma. Precomputed once;
// monotonic by construction since x^0.8 is monotonic on [0,1].
var contrastLUT = buildContrastLUT()

func buildContrastLUT() [256]uint8 {
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		norm := float64(i) / 255.0
		enhanced := math.Pow(norm, contrastExponent)
		if enhanced < 0 {
			enhanced = 0
		}
		if enhanced > 1 {
			enhanced = 1
		}
		lut[i] = uint8(math.Round(enhanced * 255.0))
	}
	return lut
}

// Grayscale converts src to 8-bit grayscale using the standard perceptual
// luma weights (0.299 R + 0.587 G + 0.114 B), rounding to the nearest value.
// Alpha is discarded; the output is opaque.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			// RGBA returns 16-bit channels; scale down to 8-bit first.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(math.Round(luma))})
		}
	}
	return dst
}

// EnhanceContrast applies the power-law contrast curve to a grayscale image,
// returning a new image. Monotonic: for luma a < b, curve(a) <= curve(b).
func EnhanceContrast(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for i, v := range src.Pix {
		dst.Pix[i] = contrastLUT[v]
	}
	return dst
}

// Preprocess runs the full transform and returns the base64-encoded PNG
// payload ready for embedding in a JSON request body.
func Preprocess(src image.Image) (string, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return "", &Error{Step: "validate", Err: fmt.Errorf("zero-area image %dx%d", b.Dx(), b.Dy())}
	}

	enhanced := EnhanceContrast(Grayscale(src))

	var buf bytes.Buffer
	if err := png.Encode(&buf, enhanced); err != nil {
		return "", &Error{Step: "encode", Err: err}
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
