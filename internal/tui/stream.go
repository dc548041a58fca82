package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"factory-monitor/internal/model"
)

// SnapshotSource yields snapshots until it fails or is closed.
type SnapshotSource interface {
	Next() (*model.BroadcastSnapshot, error)
	Close() error
}

// Stream receives snapshots from the /ws endpoint of a running server.
type Stream struct {
	conn *websocket.Conn
}

// Dial connects to the observer endpoint derived from an http(s) API endpoint.
func Dial(ctx context.Context, endpoint string, handshakeTimeout time.Duration) (*Stream, error) {
	wsURL, err := WebSocketURL(endpoint)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w (status %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	return &Stream{conn: conn}, nil
}

// Next blocks until the next snapshot arrives.
func (s *Stream) Next() (*model.BroadcastSnapshot, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var snap model.BroadcastSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Close closes the connection.
func (s *Stream) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}

// WebSocketURL maps http://host:port/prefix to ws://host:port/prefix/ws.
func WebSocketURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}
