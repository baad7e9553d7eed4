package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"screen-ocr-ollama/clipboard"
	"screen-ocr-ollama/config"
	"screen-ocr-ollama/eventloop"
	"screen-ocr-ollama/hotkey"
	"screen-ocr-ollama/logutil"
	"screen-ocr-ollama/ocr"
	"screen-ocr-ollama/ollama"
	"screen-ocr-ollama/overlay"
	"screen-ocr-ollama/screenshot"
	"screen-ocr-ollama/tray"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	client := ollama.New(ollama.Config{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Prompt:  cfg.Prompt,
		Timeout: cfg.RequestTimeout,
	})

	// Advisory preflight only; the recognition call is never gated on it.
	if !client.Available(context.Background()) {
		log.Printf("Backend at %s not reachable; verify the Ollama service is running and the model is pulled", cfg.BaseURL)
	}

	if err := clipboard.Init(); err != nil {
		log.Fatalf("Failed to initialize clipboard: %v", err)
	}

	log.Printf("Screen OCR tool initialized")
	log.Printf("Backend: %s, model: %s, timeout: %s", cfg.BaseURL, cfg.Model, cfg.RequestTimeout)
	log.Printf("Hotkey: %s", cfg.Hotkey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idleTooltip := fmt.Sprintf("Screen OCR - press %s to capture", cfg.Hotkey)
	loop := eventloop.New(eventloop.Options{
		Selector: overlay.NewSelector(),
		Pipeline: ocr.New(client),
		Reporter: clipboardReporter{},
		Capture:  screenshot.Capture,
		Deadline: cfg.RequestTimeout,
		SetBusy: func(busy bool) {
			if busy {
				tray.UpdateTooltip("Screen OCR: processing...")
			} else {
				tray.UpdateTooltip(idleTooltip)
			}
		},
	})

	go tray.Run(tray.Config{
		Title:   "Screen OCR",
		Tooltip: idleTooltip,
		OnExit:  cancel,
	})
	defer tray.Quit()

	hotkey.Listen(cfg.Hotkey, loop.Trigger)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Event loop stopped: %v", err)
	}
}

// clipboardReporter is the default presentation target: recognized text goes
// to the clipboard, failures to the log with a remediation hint.
type clipboardReporter struct{}

func (clipboardReporter) OnResult(res ocr.Result) {
	if err := clipboard.Write(res.Text); err != nil {
		log.Printf("Clipboard write failed: %v", err)
		return
	}
	log.Printf("Recognized %d chars from %s in %.2fs, copied to clipboard",
		len(res.Text), res.Region, res.Elapsed.Seconds())
}

func (clipboardReporter) OnFailure(region screenshot.Region, err error) {
	log.Printf("Recognition failed for %s: %v", region, err)
	log.Printf("%s", ollama.Remediation(err))
}
