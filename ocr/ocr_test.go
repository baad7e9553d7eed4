package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"screen-ocr-ollama/ollama"
	"screen-ocr-ollama/screenshot"
)

func snapshotWithText(w, h int) *screenshot.Snapshot {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 230, G: 230, B: 230, A: 255}
			if (x/10+y/10)%2 == 0 {
				c = color.RGBA{R: 20, G: 20, B: 20, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return screenshot.NewSnapshot(img)
}

func TestRecognizeSendsPreprocessedCrop(t *testing.T) {
	type ollamaRequest struct {
		Images []string `json:"images"`
	}

	gotImages := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Images) != 1 {
			t.Errorf("bad request body: %v", err)
		} else {
			gotImages <- req.Images[0]
		}
		_, _ = w.Write([]byte(`{"done":true,"response":"checkerboard"}`))
	}))
	defer srv.Close()

	client := ollama.New(ollama.Config{BaseURL: srv.URL, Model: "m", Prompt: "p", Timeout: time.Second})
	pipe := New(client)

	region := screenshot.Region{X: 100, Y: 100, Width: 200, Height: 60}
	res, err := pipe.Recognize(context.Background(), snapshotWithText(400, 300), region)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if res.Text != "checkerboard" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Region != region {
		t.Errorf("region = %+v, want %+v", res.Region, region)
	}

	// The payload must be a grayscale PNG the size of the crop.
	payload := <-gotImages
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload not base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload not PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 200 || b.Dy() != 60 {
		t.Errorf("payload image = %dx%d, want 200x60", b.Dx(), b.Dy())
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Errorf("payload image type = %T, want grayscale", decoded)
	}
}

func TestRecognizeRejectsBadRegion(t *testing.T) {
	client := ollama.New(ollama.Config{BaseURL: "http://127.0.0.1:0", Model: "m", Prompt: "p", Timeout: time.Second})
	pipe := New(client)

	_, err := pipe.Recognize(context.Background(), snapshotWithText(100, 100), screenshot.Region{X: 0, Y: 0, Width: 0, Height: 0})
	if err == nil {
		t.Error("zero-area region should fail before any network call")
	}

	_, err = pipe.Recognize(context.Background(), snapshotWithText(100, 100), screenshot.Region{X: 90, Y: 90, Width: 50, Height: 50})
	if err == nil {
		t.Error("out-of-bounds region should fail before any network call")
	}
}
