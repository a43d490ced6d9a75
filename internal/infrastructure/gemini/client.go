package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// maxErrorBody bounds how much of an upstream error response is kept.
const maxErrorBody = 2048

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	RequestsPerSec float64
	MaxRetries     uint64
	HTTPClient     *http.Client
}

// Client relays prompts to the Gemini generateContent endpoint. It
// implements port.ChatCompleter.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	endpoint   string
	apiKey     string
	timeout    time.Duration
	maxRetries uint64
}

// NewClient creates a Gemini client.
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	burst := int(opts.RequestsPerSec)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), burst),
		logger:     logger,
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/models/" + opts.Model + ":generateContent",
		apiKey:     opts.APIKey,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and returns the first candidate's text. The whole
// exchange, retries and throttling included, is bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, prompt model.ChatPrompt) (string, error) {
	if !c.Configured() {
		return "", model.ErrChatNotConfigured
	}

	body, err := json.Marshal(buildRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reply string
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		text, err := c.do(ctx, body)
		if err != nil {
			return err
		}
		reply = text
		return nil
	}

	strategy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "retrying chat upstream", "error", err, "wait", wait)
	}

	if err := backoff.RetryNotify(operation, strategy, notify); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return "", model.ErrUpstreamTimeout
		}
		var uerr *model.UpstreamError
		if errors.As(err, &uerr) {
			return "", uerr
		}
		return "", &model.UpstreamError{Err: err}
	}

	return reply, nil
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to build chat request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", &model.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		uerr := &model.UpstreamError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(detail))}
		if retryable(resp.StatusCode) {
			return "", uerr
		}
		return "", backoff.Permanent(uerr)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", backoff.Permanent(&model.UpstreamError{Message: "malformed response", Err: err})
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", backoff.Permanent(&model.UpstreamError{Message: "response contained no candidates"})
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

func buildRequest(prompt model.ChatPrompt) generateRequest {
	contents := make([]content, 0, len(prompt.Turns))
	for _, t := range prompt.Turns {
		contents = append(contents, content{Role: t.Role, Parts: []part{{Text: t.Content}}})
	}
	return generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     prompt.Temperature,
			MaxOutputTokens: prompt.MaxOutputTokens,
		},
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
