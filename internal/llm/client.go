// Package llm wraps the external generative text service. A call sends a
// system prompt, a user prompt, and a target result schema, and returns
// either the schema-conformant JSON payload plus a token count, or a typed
// error. Retries are a pipeline-level concern and deliberately absent here.
package llm

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

	"pulsefit/program-engine/internal/config"
)

// ErrorKind classifies generation-call failures.
type ErrorKind string

const (
	KindRequest ErrorKind = "request" // transport or non-2xx response
	KindTimeout ErrorKind = "timeout"
	KindRefusal ErrorKind = "refusal"
	KindSchema  ErrorKind = "schema" // output did not conform to the target schema
)

// GenerationError is the typed failure surfaced by a generation call.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s error: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SchemaError wraps err as a schema-kind GenerationError. Exposed so callers
// that decode the raw payload into a typed value report decode failures on
// the same typed path as in-client schema failures.
func SchemaError(err error) error {
	return &GenerationError{Kind: KindSchema, Err: err}
}

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Request describes one structured generation call.
type Request struct {
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
	MaxTokens  int
	// CacheHint marks the system prompt as a stable prefix eligible for
	// provider-side prompt caching. Advisory only.
	CacheHint bool
}

// Client is the generative text service boundary used by the pipeline.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (json.RawMessage, Usage, error)
}

type client struct {
	baseURL     string
	apiKey      string
	model       string
	callTimeout time.Duration
	httpClient  *http.Client
}

// NewClient builds a Client from config. The call timeout applies per call
// and doubles as the pipeline's cancellation point.
func NewClient(cfg config.OpenAIConfig) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing openai api key")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &client{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		callTimeout: timeout,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"input"`
	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
	PromptCacheKey  string `json:"prompt_cache_key,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

// GenerateJSON issues one structured call against the Responses API with a
// strict json_schema output format. The returned payload is guaranteed to be
// parseable JSON; anything else surfaces as a typed GenerationError.
func (c *client) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, Usage, error) {
	if req.SchemaName == "" || req.Schema == nil {
		return nil, Usage{}, &GenerationError{Kind: KindRequest, Err: errors.New("schema name and schema are required")}
	}

	body := responsesRequest{Model: c.model}
	body.Input = []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	}{
		{Role: "system", Content: req.System},
		{Role: "user", Content: req.User},
	}
	body.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   req.SchemaName,
		"schema": req.Schema,
		"strict": true,
	}
	if req.MaxTokens > 0 {
		body.MaxOutputTokens = req.MaxTokens
	}
	if req.CacheHint {
		body.PromptCacheKey = req.SchemaName
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var resp responsesResponse
	if err := c.doJSON(callCtx, &body, &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, Usage{}, &GenerationError{Kind: KindTimeout, Err: err}
		}
		return nil, Usage{}, &GenerationError{Kind: KindRequest, Err: err}
	}

	usage := Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}

	if resp.Refusal != "" {
		return nil, usage, &GenerationError{Kind: KindRefusal, Err: fmt.Errorf("model refused: %s", resp.Refusal)}
	}

	text := strings.TrimSpace(extractOutputText(resp))
	if text == "" {
		return nil, usage, &GenerationError{Kind: KindSchema, Err: errors.New("no output_text found in response")}
	}
	if !json.Valid([]byte(text)) {
		return nil, usage, &GenerationError{Kind: KindSchema, Err: fmt.Errorf("model output is not valid JSON: %s", truncate(text, 200))}
	}

	return json.RawMessage(text), usage, nil
}

func (c *client) doJSON(ctx context.Context, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("responses api status %d: %s", httpResp.StatusCode, truncate(string(raw), 300))
	}

	return json.Unmarshal(raw, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
