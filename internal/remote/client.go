package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var ErrNotFound = errors.New("not found")

// Failure is a transport, status or decoding error from the collaborator.
type Failure struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s: %s %s: status %d", f.Op, f.Method, f.URL, f.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: %v", f.Op, f.Method, f.URL, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Client работает с REST-коллекцией задач (/todos)
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, "list", http.MethodGet, c.baseURL, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, "get", http.MethodGet, c.itemURL(id), nil, &t)
	return t, err
}

func (c *Client) Create(ctx context.Context, t model.Task) (model.Task, error) {
	var created model.Task
	err := c.do(ctx, "create", http.MethodPost, c.baseURL, t, &created)
	return created, err
}

func (c *Client) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	var updated model.Task
	err := c.do(ctx, "replace", http.MethodPut, c.itemURL(t.ID), t, &updated)
	return updated, err
}

// Patch sends a partial body, e.g. {"status": 1}.
func (c *Client) Patch(ctx context.Context, id int64, fields map[string]any) (model.Task, error) {
	var updated model.Task
	err := c.do(ctx, "patch", http.MethodPatch, c.itemURL(id), fields, &updated)
	return updated, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id int64) string {
	return c.baseURL + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	fail := func(code int, err error) error {
		return &Failure{Op: op, Method: method, URL: url, StatusCode: code, Err: err}
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fail(0, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %d: %w", op, resp.StatusCode, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(0, fmt.Errorf("malformed body: %w", err))
	}
	return nil
}
