package docintel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/resilience"
)

// Client talks to the document intelligence service over HTTP. It
// implements ports.DocumentIntelligence.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Summarize(ctx context.Context, content domain.Content) (string, error) {
	request := map[string]any{
		"model":     c.model,
		"mime_type": content.MimeType,
		"content":   content.Data,
	}

	var response struct {
		Summary string `json:"summary"`
	}
	err := c.execute(ctx, "docintel.summarize", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/summarize", request, &response, "summarize")
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(response.Summary)
	if summary == "" {
		return "", fmt.Errorf("docintel summarize: empty summary")
	}
	return summary, nil
}

func (c *Client) ExtractFields(ctx context.Context, summary string) (map[string]string, error) {
	request := map[string]any{
		"model":   c.model,
		"summary": summary,
	}

	var response struct {
		Fields map[string]string `json:"fields"`
	}
	err := c.execute(ctx, "docintel.extract", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/extract", request, &response, "extract")
	})
	if err != nil {
		return nil, err
	}
	if response.Fields == nil {
		response.Fields = map[string]string{}
	}
	return response.Fields, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return wrapTemporaryIfNeeded(operation, fn(ctx))
	}
	err := c.executor.Execute(ctx, operation, fn, classifyDocintelError)
	return wrapTemporaryIfNeeded(operation, err)
}
