// Package ocr is the gateway to the external Ollama model server. It
// covers three call kinds — image-to-text OCR, free-text generation and
// embedding generation — each with its own model and timeout, plus a
// best-effort availability probe.
//
// The client is explicitly constructed and injected; there is no global
// instance. External-service failures are returned as errors so callers
// can decide whether they are fatal (during ingestion they never are).
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"casedocs/internal/config"
)

// ocrPrompt is the fixed instruction sent with every OCR image request.
const ocrPrompt = "Recognize all text in this image. Return only the text without comments."

// availabilityTimeout bounds the liveness probe.
const availabilityTimeout = 5 * time.Second

// ErrDisabled is returned when the Ollama integration is switched off by
// configuration.
var ErrDisabled = errors.New("ollama integration is disabled")

// Client talks to an Ollama-compatible HTTP endpoint.
type Client struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
	rasterizer Rasterizer
	metrics    *Metrics
	log        *logrus.Logger

	ocrModel        string
	generationModel string
	embeddingModel  string

	ocrTimeout        time.Duration
	generationTimeout time.Duration
	embeddingTimeout  time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (used by tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRasterizer substitutes the PDF rasterizer (used by tests).
func WithRasterizer(r Rasterizer) Option {
	return func(c *Client) { c.rasterizer = r }
}

// WithMetrics attaches OCR counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a Client from configuration. Timeouts are applied
// per call kind via request contexts, not on the HTTP client, because the
// three call kinds have independent knobs.
func NewClient(cfg config.OllamaConfig, log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:           cfg.BaseURL,
		enabled:           cfg.Enabled,
		httpClient:        &http.Client{},
		rasterizer:        NewFitzRasterizer(),
		log:               log,
		ocrModel:          cfg.OCRModel,
		generationModel:   cfg.GenerationModel,
		embeddingModel:    cfg.EmbeddingModel,
		ocrTimeout:        time.Duration(cfg.OCRTimeoutSec) * time.Second,
		generationTimeout: time.Duration(cfg.GenerationTimeoutSec) * time.Second,
		embeddingTimeout:  time.Duration(cfg.EmbeddingTimeoutSec) * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the integration is switched on by configuration.
func (c *Client) Enabled() bool {
	return c.enabled
}

// CheckAvailability probes the model server. It never returns an error:
// any failure to connect within the probe timeout means "unavailable".
func (c *Client) CheckAvailability(ctx context.Context) bool {
	if !c.enabled {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("ollama unavailable")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// generateRequest is the wire format of the /api/generate endpoint.
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Images  []string         `json:"images,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	NumPredict int `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// OCRImage sends one page image to the OCR model and returns the
// recognized text. The image is base64-encoded into the generate request.
// Any external failure (timeout, non-200, connection refused) comes back
// as an error; during ingestion the orchestrator treats it as non-fatal.
func (c *Client) OCRImage(ctx context.Context, image []byte) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}

	body := generateRequest{
		Model:  c.ocrModel,
		Prompt: ocrPrompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
	}

	var out generateResponse
	if err := c.post(ctx, "/api/generate", c.ocrTimeout, body, &out); err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	return out.Response, nil
}

// Generate produces free text from the generation model, bounded by
// maxTokens. Used by collaborators outside the ingestion pipeline.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}

	body := generateRequest{
		Model:   c.generationModel,
		Prompt:  prompt,
		Stream:  false,
		Options: &generateOptions{NumPredict: maxTokens},
	}

	var out generateResponse
	if err := c.post(ctx, "/api/generate", c.generationTimeout, body, &out); err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	return out.Response, nil
}

type embeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embeddings returns the embedding vector for the given text, used for
// semantic search over extracted document text.
func (c *Client) Embeddings(ctx context.Context, text string) ([]float64, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	var out embeddingsResponse
	if err := c.post(ctx, "/api/embeddings", c.embeddingTimeout, embeddingsRequest{
		Model:  c.embeddingModel,
		Prompt: text,
	}, &out); err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	return out.Embedding, nil
}

// post sends a JSON request with the per-call timeout and decodes a JSON
// response. Non-2xx statuses are errors.
func (c *Client) post(ctx context.Context, path string, timeout time.Duration, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the log line, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
			"body":   string(snippet),
		}).Error("ollama request failed")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
