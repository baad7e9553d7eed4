package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"time"

	"screen-ocr-ollama/config"
	"screen-ocr-ollama/ocr"
	"screen-ocr-ollama/ollama"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	filePath := flag.String("file", "", "Path to PNG file (use '-' for stdin)")
	jsonOutput := flag.Bool("json", false, "Output results as JSON")
	verbose := flag.Bool("v", false, "Verbose output to stderr")
	flag.Parse()

	if *filePath == "" {
		return fmt.Errorf("required flag -file not specified\nUsage: ocr-cli -file <path|-> [-json] [-v]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Backend=%s Model=%s Timeout=%s\n", cfg.BaseURL, cfg.Model, cfg.RequestTimeout)
	}

	imageData, err := readInput(*filePath, *verbose)
	if err != nil {
		return err
	}

	img, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to decode PNG: %w", err)
	}

	client := ollama.New(ollama.Config{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Prompt:  cfg.Prompt,
		Timeout: cfg.RequestTimeout,
	})
	pipe := ocr.New(client)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	res, err := pipe.RecognizeImage(ctx, img)
	if err != nil {
		if *verbose {
			fmt.Fprintf(os.Stderr, "[verbose] %s\n", ollama.Remediation(err))
		}
		return fmt.Errorf("OCR failed: %w", err)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "[verbose] OCR completed in %.2fs, extracted %d characters\n", res.Elapsed.Seconds(), len(res.Text))
	}

	return outputResult(os.Stdout, res.Text, *filePath, res.Elapsed, *jsonOutput)
}

func readInput(filePath string, verbose bool) ([]byte, error) {
	var imageData []byte
	var err error

	if filePath == "-" {
		imageData, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if !isPNG(imageData) {
		return nil, fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Read %d bytes\n", len(imageData))
	}
	return imageData, nil
}

func isPNG(data []byte) bool {
	return len(data) >= len(pngMagic) && bytes.Equal(data[:len(pngMagic)], pngMagic)
}

type cliResult struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func outputResult(w io.Writer, text, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		// Plain text output, no trailing newline.
		_, err := fmt.Fprint(w, text)
		return err
	}

	result := cliResult{
		Text:      text,
		Source:    sourcePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len(text),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
