// Package analysis talks to the analysis server's compute engine and quality gate APIs.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

const maxResponseBytes = 4 << 20

// TokenAuthTransport authenticates requests with a user token sent as the basic auth
// user name and an empty password
type TokenAuthTransport struct {
	Token     string
	Transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *TokenAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.SetBasicAuth(t.Token, "")
	return t.transport().RoundTrip(req2)
}

func (t *TokenAuthTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

// Client wraps the analysis server HTTP API
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client that authenticates every request with token. A nil
// httpClient uses http.DefaultClient's settings.
func NewClient(httpClient *http.Client, token string, logger *zap.Logger) *Client {
	var c http.Client
	if httpClient != nil {
		c = *httpClient
	}
	c.Transport = &TokenAuthTransport{
		Token:     token,
		Transport: c.Transport,
	}

	return &Client{
		httpClient: &c,
		logger:     logger,
	}
}

type envelope interface {
	serverErrors() []types.ServerMessage
}

type taskResponse struct {
	Task   *types.AnalysisTask   `json:"task"`
	Errors []types.ServerMessage `json:"errors"`
}

func (r *taskResponse) serverErrors() []types.ServerMessage { return r.Errors }

type projectStatusResponse struct {
	ProjectStatus *types.ProjectStatus  `json:"projectStatus"`
	Errors        []types.ServerMessage `json:"errors"`
}

func (r *projectStatusResponse) serverErrors() []types.ServerMessage { return r.Errors }

// GetTask fetches one snapshot of the compute engine task at url
func (c *Client) GetTask(ctx context.Context, url string) (*types.AnalysisTask, error) {
	var resp taskResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Task == nil {
		return nil, &TransportError{URL: url, Err: errors.New("response has no task")}
	}

	c.logger.Debug("fetched analysis task",
		zap.String("task_id", resp.Task.ID),
		zap.String("status", string(resp.Task.Status)),
	)
	return resp.Task, nil
}

// GetProjectStatus fetches the quality gate status at url
func (c *Client) GetProjectStatus(ctx context.Context, url string) (*types.ProjectStatus, error) {
	var resp projectStatusResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.ProjectStatus == nil {
		return nil, &TransportError{URL: url, Err: errors.New("response has no projectStatus")}
	}

	c.logger.Debug("fetched project status",
		zap.String("status", resp.ProjectStatus.Status),
	)
	return resp.ProjectStatus, nil
}

// get issues a GET and decodes the body into out. An errors array in the body is
// reported as a ServerError even when the HTTP status is not successful.
func (c *Client) get(ctx context.Context, url string, out envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	decodeErr := json.Unmarshal(body, out)
	if decodeErr == nil {
		if errs := out.serverErrors(); len(errs) > 0 {
			return &ServerError{URL: url, StatusCode: resp.StatusCode, Message: errs[0].Msg}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if decodeErr != nil {
		return &TransportError{URL: url, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}
	return nil
}
