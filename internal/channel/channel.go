// Package channel connects to the interview server's per-session websocket.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anshc022/vocahire/internal/protocol"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	closeGrace              = time.Second
)

// CloseError reports why the channel stopped delivering frames.
type CloseError struct {
	Code   int
	Reason string
	Err    error
}

func (e *CloseError) Error() string {
	reason := strings.TrimSpace(e.Reason)
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	if reason == "" {
		return fmt.Sprintf("channel closed (code %d)", e.Code)
	}
	return fmt.Sprintf("channel closed (code %d): %s", e.Code, reason)
}

func (e *CloseError) Unwrap() error {
	return e.Err
}

// Dialer opens interview channels.
type Dialer struct {
	BaseURL          string
	Wire             protocol.Wire
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Logger           *slog.Logger
}

// SessionURL builds {base}/ws/interview/{sessionID}. http(s) schemes map to ws(s).
func SessionURL(baseURL string, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", errors.New("session id is required")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse channel url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported channel url scheme %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", errors.New("channel url host is required")
	}
	escapedBase := strings.TrimRight(u.EscapedPath(), "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/interview/" + sessionID
	u.RawPath = escapedBase + "/ws/interview/" + url.PathEscape(sessionID)
	return u.String(), nil
}

// Dial opens the channel for sessionID.
func (d *Dialer) Dial(ctx context.Context, sessionID string) (*Conn, error) {
	target, err := SessionURL(d.BaseURL, sessionID)
	if err != nil {
		return nil, err
	}

	handshake := d.HandshakeTimeout
	if handshake <= 0 {
		handshake = defaultHandshakeTimeout
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshake}

	ws, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("open channel %s: HTTP %d: %w", target, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("open channel %s: %w", target, err)
	}

	writeTimeout := d.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("channel open", "url", target)

	return &Conn{
		ws:           ws,
		wire:         d.Wire,
		writeTimeout: writeTimeout,
		logger:       logger,
	}, nil
}

// Conn is an open interview channel. Receive must be called from one
// goroutine; sends are serialized internally.
type Conn struct {
	ws           *websocket.Conn
	wire         protocol.Wire
	writeTimeout time.Duration
	logger       *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Receive blocks for the next server frame. Undecodable envelopes are
// returned as notices; the decode error is logged.
func (c *Conn) Receive() (protocol.Inbound, error) {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return protocol.Inbound{}, closeError(err)
		}
		switch msgType {
		case websocket.BinaryMessage:
			return protocol.DecodeBinary(data), nil
		case websocket.TextMessage:
			msg, decodeErr := protocol.DecodeText(string(data))
			if decodeErr != nil {
				c.logger.Warn("channel frame decode failed", "error", decodeErr.Error())
			}
			return msg, nil
		}
	}
}

// SendAudio sends one captured chunk as a binary frame.
func (c *Conn) SendAudio(chunk []byte) error {
	return c.write(websocket.BinaryMessage, chunk)
}

// SendControl sends a control message in the configured wire mode.
func (c *Conn) SendControl(ctrl protocol.Control) error {
	payload, err := protocol.EncodeControl(c.wire, ctrl)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, payload)
}

// Close sends a normal close frame and releases the connection. It is safe
// to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.writeMu.Unlock()
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func (c *Conn) write(msgType int, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.ws.WriteMessage(msgType, payload); err != nil {
		return fmt.Errorf("write channel frame: %w", err)
	}
	return nil
}

func closeError(err error) *CloseError {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return &CloseError{Code: ce.Code, Reason: ce.Text, Err: err}
	}
	return &CloseError{Code: websocket.CloseAbnormalClosure, Err: err}
}
