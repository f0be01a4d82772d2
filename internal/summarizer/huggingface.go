package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultInferenceURL = "https://router.huggingface.co/hf-inference/models"

	defaultRequestTimeout = 60 * time.Second
	maxResponseBytes      = 1 << 20
	maxErrorMessageBytes  = 512
)

// HuggingFace calls the Hugging Face Inference API summarization task.
type HuggingFace struct {
	token   string
	model   string
	baseURL string
	client  *http.Client
}

type HuggingFaceOption func(*HuggingFace)

// WithBaseURL points the client at another inference host, e.g. a dedicated
// endpoint or a test server.
func WithBaseURL(baseURL string) HuggingFaceOption {
	return func(h *HuggingFace) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			h.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(client *http.Client) HuggingFaceOption {
	return func(h *HuggingFace) {
		if client != nil {
			h.client = client
		}
	}
}

func WithTimeout(timeout time.Duration) HuggingFaceOption {
	return func(h *HuggingFace) {
		if timeout > 0 {
			h.client = &http.Client{Timeout: timeout}
		}
	}
}

// APIError is a non-2xx answer from the inference endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("inference API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("inference API returned status %d: %s", e.StatusCode, e.Message)
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// NewHuggingFace builds a backend for the given model. A blank token yields
// ErrMissingToken and no backend.
func NewHuggingFace(token, model string, opts ...HuggingFaceOption) (*HuggingFace, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, errors.New("model is empty")
	}

	h := &HuggingFace{
		token:   token,
		model:   model,
		baseURL: DefaultInferenceURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

func (h *HuggingFace) Model() string {
	return h.model
}

func (h *HuggingFace) endpoint() string {
	return h.baseURL + "/" + h.model
}

// Summarize sends one request per call with the text as given. Input length
// and content are left to the remote service. It does not retry.
func (h *HuggingFace) Summarize(ctx context.Context, input Input) (string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: input.Text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	parsed, err := ParseResponse(data)
	if err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	summary, err := parsed.SummaryText()
	if err != nil {
		return "", fmt.Errorf("extract summary (shape = %s): %w", parsed.Kind, err)
	}

	return summary, nil
}

func errorMessage(data []byte) string {
	var apiErr inferenceError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}

	msg := strings.TrimSpace(string(data))
	if len(msg) > maxErrorMessageBytes {
		msg = msg[:maxErrorMessageBytes]
	}
	return msg
}
