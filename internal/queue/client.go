// Package queue talks to the remote worker queues that hand out poster and
// mockup jobs.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

const (
	PosterPath = "/api/worker-queue"
	MockupPath = "/api/mockup-queue"
)

// Actions understood by the queue services.
const (
	ActionPending  = "pending"
	ActionStats    = "stats"
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionFail     = "fail"
)

// APIError reports an unexpected status or a body that is not JSON.
type APIError struct {
	Queue  string
	Action string
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("queue: %s %s: status %d: %v", e.Queue, e.Action, e.Status, e.Err)
	case e.Status != 0:
		if body == "" {
			return fmt.Sprintf("queue: %s %s responded with %d", e.Queue, e.Action, e.Status)
		}
		return fmt.Sprintf("queue: %s %s responded with %d: %s", e.Queue, e.Action, e.Status, body)
	default:
		return fmt.Sprintf("queue: %s %s: %v", e.Queue, e.Action, e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Transport reports whether the request never reached the service.
func (e *APIError) Transport() bool { return e.Status == 0 }

// Options configures a queue client.
type Options struct {
	// Name labels the queue in logs and errors.
	Name    string
	BaseURL string
	// Path is the queue endpoint, PosterPath or MockupPath.
	Path string
	// Limit is sent with the pending action when positive.
	Limit      int
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client claims and reports items on one remote queue.
type Client struct {
	name       string
	endpoint   string
	limit      int
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient applies defaults to opts.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	path := opts.Path
	if path == "" {
		path = PosterPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	name := opts.Name
	if name == "" {
		name = strings.TrimPrefix(path, "/api/")
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		name:       name,
		endpoint:   base + path,
		limit:      opts.Limit,
		httpClient: client,
		logger:     logger,
	}
}

// NewPosterClient returns the client for the poster queue.
func NewPosterClient(baseURL string, timeout time.Duration, logger *infra.Logger) *Client {
	return NewClient(Options{Name: "poster", BaseURL: baseURL, Path: PosterPath, Limit: 1, Timeout: timeout, Logger: logger})
}

// NewMockupClient returns the client for the mockup queue.
func NewMockupClient(baseURL string, timeout time.Duration, logger *infra.Logger) *Client {
	return NewClient(Options{Name: "mockup", BaseURL: baseURL, Path: MockupPath, Timeout: timeout, Logger: logger})
}

func (c *Client) Name() string { return c.name }

// Endpoint returns the queue URL without query.
func (c *Client) Endpoint() string { return c.endpoint }

type pendingResponse struct {
	Success bool              `json:"success"`
	Items   []json.RawMessage `json:"items"`
	Error   string            `json:"error,omitempty"`
}

// Next asks for the next pending item. It returns nil without error when the
// queue is empty or the service answered with success=false.
func (c *Client) Next(ctx context.Context) (json.RawMessage, error) {
	q := url.Values{"action": {ActionPending}}
	if c.limit > 0 {
		q.Set("limit", fmt.Sprint(c.limit))
	}
	var out pendingResponse
	if _, err := c.get(ctx, ActionPending, q, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		if out.Error != "" {
			c.logger.Warn().Str("queue", c.name).Str("error", out.Error).Msg("queue: pending returned success=false")
		}
		return nil, nil
	}
	for _, item := range out.Items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		return trimmed, nil
	}
	return nil, nil
}

// Stats fetches the queue statistics. Deployments without a stats action
// answer with an APIError carrying the status.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if _, err := c.get(ctx, ActionStats, url.Values{"action": {ActionStats}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Start marks the item as being processed.
func (c *Client) Start(ctx context.Context, id job.ID) error {
	return c.post(ctx, ActionStart, id, nil)
}

// Complete marks the item as done. The JSON fields of result are sent next to
// the action and queueId.
func (c *Client) Complete(ctx context.Context, id job.ID, result any) error {
	return c.post(ctx, ActionComplete, id, result)
}

// Fail marks the item as failed with message.
func (c *Client) Fail(ctx context.Context, id job.ID, message string) error {
	return c.post(ctx, ActionFail, id, map[string]string{"error": message})
}

func (c *Client) get(ctx context.Context, action string, q url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, &APIError{Queue: c.name, Action: action, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, action, out)
}

func (c *Client) post(ctx context.Context, action string, id job.ID, extra any) error {
	if id.IsZero() {
		return &APIError{Queue: c.name, Action: action, Err: errors.New("queueId is required")}
	}
	body, err := requestBody(action, id, extra)
	if err != nil {
		return &APIError{Queue: c.name, Action: action, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &APIError{Queue: c.name, Action: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if _, err := c.do(req, action, nil); err != nil {
		return err
	}
	c.logger.Debug().Str("queue", c.name).Str("action", action).Str("queue_id", id.String()).Msg("queue: reported")
	return nil
}

func (c *Client) do(req *http.Request, action string, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &APIError{Queue: c.name, Action: action, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, &APIError{Queue: c.name, Action: action, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &APIError{Queue: c.name, Action: action, Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, &APIError{
			Queue:  c.name,
			Action: action,
			Status: resp.StatusCode,
			Body:   string(data),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return resp.StatusCode, nil
}

// requestBody flattens extra into {"action": ..., "queueId": ..., ...}.
func requestBody(action string, id job.ID, extra any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if extra != nil {
		raw, err := json.Marshal(extra)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("payload must be a JSON object: %w", err)
			}
		}
	}
	actionJSON, _ := json.Marshal(action)
	idJSON, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	fields["action"] = actionJSON
	fields["queueId"] = idJSON
	return json.Marshal(fields)
}
