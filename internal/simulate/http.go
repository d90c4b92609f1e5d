package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
)

// Client talks to the tracker's HTTP API.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

type ack struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Health checks that the service answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// StartSession opens a session and returns its ID.
func (c *Client) StartSession(ctx context.Context, player string) (string, error) {
	var info struct {
		ID string `json:"session_id"`
	}
	err := c.do(ctx, http.MethodPost, "/sessions", map[string]string{"player_name": player}, http.StatusCreated, &info)
	return info.ID, err
}

// SubmitFrames posts a batch of frames and returns the accepted and
// duplicate counts.
func (c *Client) SubmitFrames(ctx context.Context, id string, frames []model.Frame) (accepted, duplicates int, err error) {
	var a ack
	err = c.do(ctx, http.MethodPost, "/sessions/"+id+"/frames", map[string]any{"frames": frames}, http.StatusAccepted, &a)
	return a.Accepted, a.Duplicates, err
}

// EndSession closes a session and returns its final report.
func (c *Client) EndSession(ctx context.Context, id string) (session.Report, error) {
	var r session.Report
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/end", nil, http.StatusOK, &r)
	return r, err
}

// Career fetches a player's career.
func (c *Client) Career(ctx context.Context, player string) (session.Career, error) {
	var cr session.Career
	err := c.do(ctx, http.MethodGet, "/players/"+player+"/career", nil, http.StatusOK, &cr)
	return cr, err
}
