package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"screen-ocr-ollama/ollama"
	"screen-ocr-ollama/preprocess"
	"screen-ocr-ollama/screenshot"
)

// Pipeline ties the capture-to-recognition stages together: crop the frozen
// snapshot, preprocess the crop, send it to the backend.
type Pipeline struct {
	client *ollama.Client
}

func New(client *ollama.Client) *Pipeline {
	return &Pipeline{client: client}
}

// Result is handed to the presentation collaborator on success.
type Result struct {
	Text    string
	Region  screenshot.Region
	Elapsed time.Duration
}

// Recognize runs the full pipeline for one committed region.
func (p *Pipeline) Recognize(ctx context.Context, snap *screenshot.Snapshot, region screenshot.Region) (Result, error) {
	log.Printf("Recognizing region %s", region)

	cropped, err := snap.Crop(region)
	if err != nil {
		return Result{}, fmt.Errorf("failed to crop snapshot: %w", err)
	}

	res, err := p.RecognizeImage(ctx, cropped)
	if err != nil {
		return Result{}, err
	}
	res.Region = region
	return res, nil
}

// RecognizeImage preprocesses and recognizes an already-cropped image.
func (p *Pipeline) RecognizeImage(ctx context.Context, img image.Image) (Result, error) {
	payload, err := preprocess.Preprocess(img)
	if err != nil {
		return Result{}, err
	}

	res, err := p.client.Recognize(ctx, payload)
	if err != nil {
		return Result{}, err
	}

	log.Printf("Recognition completed in %.2fs, %d chars", res.Elapsed.Seconds(), len(res.Text))
	return Result{Text: res.Text, Elapsed: res.Elapsed}, nil
}
