// Package summary retrieves the post-interview evaluation document.
package summary

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
	"unicode/utf8"
)

const (
	maxBodyBytes   = 1 << 20
	maxErrorBody   = 4 << 10
	defaultTimeout = 30 * time.Second
)

// ErrNotFound reports that the server holds no summary for the session.
var ErrNotFound = errors.New("summary not found")

// Turn is one transcript line as recorded by the server.
type Turn struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Evaluation holds 0..1 scores.
type Evaluation struct {
	Clarity           float64  `json:"clarity"`
	Confidence        float64  `json:"confidence"`
	Relevance         float64  `json:"relevance"`
	Depth             float64  `json:"depth"`
	KeywordMatchScore float64  `json:"keyword_match_score"`
	AnswerLengthScore float64  `json:"answer_length_score"`
	OverallScore      *float64 `json:"overall_score"`
}

// Summary is the evaluation document for one session.
type Summary struct {
	SessionID          string      `json:"session_id"`
	FullTranscript     []Turn      `json:"full_transcript"`
	Evaluation         *Evaluation `json:"evaluation"`
	TipsForImprovement []string    `json:"tips_for_improvement,omitempty"`
	DurationSeconds    float64     `json:"duration_seconds"`
	StartedAt          float64     `json:"started_at"`
	EndedAt            float64     `json:"ended_at"`
}

// Overall returns the overall score.
func (s *Summary) Overall() float64 {
	if s == nil || s.Evaluation == nil || s.Evaluation.OverallScore == nil {
		return 0
	}
	return *s.Evaluation.OverallScore
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Is matches ErrNotFound for a 404 so callers keep the body and can still test
// for a missing summary.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// errorBody trims a response body to at most maxErrorBody bytes without
// splitting a UTF-8 sequence.
func errorBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) <= maxErrorBody {
		return text
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Client talks to the interview server's HTTP API.
type Client struct {
	BaseURL    string
	HealthPath string
	HTTPClient *http.Client
}

// NewClient returns a client with a bounded timeout.
func NewClient(baseURL string, healthPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:    baseURL,
		HealthPath: healthPath,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Fetch asks the server to evaluate and summarize sessionID.
func (c *Client) Fetch(ctx context.Context, sessionID string) (*Summary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}
	payload, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	endpoint, err := c.endpoint("/api/interview/summary")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Retrieve loads a previously generated summary.
func (c *Client) Retrieve(ctx context.Context, sessionID string) (*Summary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}
	endpoint, err := c.endpoint("/api/interview/" + url.PathEscape(sessionID) + "/summary")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Health probes the server root. Any 2xx is healthy.
func (c *Client) Health(ctx context.Context) error {
	path := c.HealthPath
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	endpoint, err := c.endpoint(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody+utf8.UTFMax))
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{StatusCode: res.StatusCode, Body: errorBody(body)}
	}
	return nil
}

func (c *Client) do(req *http.Request) (*Summary, error) {
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("summary request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read summary response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: errorBody(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNotFound
	}

	var out Summary
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode summary response: %w", err)
	}
	if out.Evaluation == nil || out.Evaluation.OverallScore == nil {
		return nil, errors.New("summary response missing overall score")
	}
	return &out, nil
}

func (c *Client) endpoint(path string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return "", errors.New("api url is empty")
	}
	u, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}
