// Package ollama is the recognition orchestrator: it submits a preprocessed
// image payload to a local Ollama-compatible backend and classifies every
// failure mode precisely. One request per attempt, no retries.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Config holds the fixed backend settings. It is passed into New and never
// mutated afterwards.
type Config struct {
	BaseURL string
	Model   string
	Prompt  string
	Timeout time.Duration
}

// Client talks to one backend endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Result is the outcome of one successful recognition attempt. Elapsed covers
// wall-clock time from request dispatch until the response was fully parsed.
type Result struct {
	Text    string
	Elapsed time.Duration
}

// UnreachableError reports a transport-level failure (connection refused,
// DNS failure) naming the target endpoint.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("backend unreachable at %s: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// TimeoutError reports that the request exceeded the configured deadline and
// the in-flight call was cancelled.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend did not respond within %s", e.Limit)
}

// RejectedError carries a non-2xx status and the response body verbatim,
// which is what distinguishes "model not pulled" from "service misconfigured".
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected request: status %d: %s", e.StatusCode, e.Body)
}

// IncompleteError reports done=false on a non-streaming request: the backend
// streamed a partial result where a complete one was required.
type IncompleteError struct{}

func (e *IncompleteError) Error() string {
	return "backend returned an incomplete response (done=false)"
}

// MalformedError wraps a response-body parse failure.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("backend response is not valid JSON: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Recognize submits one payload (base64 PNG) and returns the recognized text
// with elapsed wall-clock time. Exactly one of result or typed error is
// returned; no raw transport or parser error crosses this boundary unwrapped.
func (c *Client) Recognize(ctx context.Context, payload string) (Result, error) {
	endpoint := c.cfg.BaseURL + "/api/generate"

	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: c.cfg.Prompt,
		Stream: false,
		Images: []string{payload},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, c.classifyTransport(endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, c.classifyTransport(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &RejectedError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return Result{}, &MalformedError{Err: err}
	}
	elapsed := time.Since(start)

	if !gr.Done {
		return Result{}, &IncompleteError{}
	}

	// An absent response field decodes to "" and is accepted as empty text.
	return Result{Text: strings.TrimSpace(gr.Response), Elapsed: elapsed}, nil
}

func (c *Client) classifyTransport(endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &TimeoutError{Limit: c.cfg.Timeout}
	}
	return &UnreachableError{Endpoint: endpoint, Err: err}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Available is a best-effort reachability probe of the backend base URL. It
// is advisory only and never gates Recognize; all failures are swallowed.
func (c *Client) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.cfg.BaseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("Backend availability probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return true
}

// Remediation returns a human-readable hint for recognition-phase failures,
// suitable for the presentation layer.
func Remediation(err error) string {
	var (
		unreachable *UnreachableError
		timeout     *TimeoutError
		rejected    *RejectedError
		incomplete  *IncompleteError
		malformed   *MalformedError
	)
	switch {
	case errors.As(err, &unreachable):
		return fmt.Sprintf("Could not reach %s. Verify the Ollama service is running and the endpoint is reachable.", unreachable.Endpoint)
	case errors.As(err, &timeout):
		return "The backend took too long to respond. Try a smaller region, or check that the model is loaded."
	case errors.As(err, &rejected):
		return "The backend rejected the request. Verify the model is installed (ollama pull) and the service is configured correctly."
	case errors.As(err, &incomplete), errors.As(err, &malformed):
		return "The backend returned an unusable response. Verify the service version supports non-streaming generation."
	default:
		return "Recognition failed. Verify the backend service is running, the model is installed, and the endpoint is reachable."
	}
}
