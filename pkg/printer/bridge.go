package printer

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultBridgeURL is the local print bridge the desktop counter talks to.
	DefaultBridgeURL = "ws://localhost:8080"
	// DefaultBridgeTimeout bounds the connect and send of one print job.
	DefaultBridgeTimeout = 5 * time.Second
	// BridgeSent is returned by BridgeClient.Send once the job left this process.
	BridgeSent = "Sent to Printer"
)

// ErrBridgeUnreachable matches every error returned by BridgeClient.
var ErrBridgeUnreachable = errors.New("Printer Bridge Unreachable") //nolint:staticcheck // user-facing fixed message

// BridgeError reports a failed bridge session. The message is always the
// fixed "Printer Bridge Unreachable"; Cause holds the transport error.
type BridgeError struct {
	Cause error
}

func (e *BridgeError) Error() string {
	return ErrBridgeUnreachable.Error()
}

func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrBridgeUnreachable.
func (e *BridgeError) Is(target error) bool {
	return target == ErrBridgeUnreachable
}

// BridgeClient delivers encoded receipts to a local print daemon over a
// single-use WebSocket connection per job.
//
// A session is connect, send one text message, close. It knows nothing about
// whether paper actually came out; success means the daemon accepted the
// connection and the message was written. There is no retry and no
// coordination between concurrent sessions.
type BridgeClient struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer
}

// NewBridgeClient creates a client for the bridge at url. An empty url uses
// DefaultBridgeURL; a non-positive timeout uses DefaultBridgeTimeout.
func NewBridgeClient(url string, timeout time.Duration) *BridgeClient {
	if url == "" {
		url = DefaultBridgeURL
	}
	if timeout <= 0 {
		timeout = DefaultBridgeTimeout
	}
	return &BridgeClient{
		url:     url,
		timeout: timeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
	}
}

// URL returns the bridge endpoint.
func (c *BridgeClient) URL() string {
	return c.url
}

// Send delivers payload as one text message and closes the connection.
// It returns BridgeSent on success and a *BridgeError otherwise.
func (c *BridgeClient) Send(ctx context.Context, payload []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return "", &BridgeError{Cause: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return "", &BridgeError{Cause: err}
	}

	// The job is out; a lost close frame does not change the outcome.
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	return BridgeSent, nil
}

// Print implements Printer.
func (c *BridgeClient) Print(ctx context.Context, data []byte) error {
	_, err := c.Send(ctx, data)
	return err
}

// Close implements Printer. Sessions are per job, so there is nothing to release.
func (c *BridgeClient) Close() error {
	return nil
}

// IsConnected dials the bridge and closes the connection without sending.
func (c *BridgeClient) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	conn.Close()
	return true
}
