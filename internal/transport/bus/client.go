// Package bus consumes the meeting event stream over a websocket. The
// client owns connection lifecycle only: frames are parsed into envelopes
// at the boundary and handed to the consumer in arrival order, malformed
// frames are logged and dropped, and lost connections are redialed with
// exponential backoff.
package bus

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"

	apperrors "github.com/boardroomhq/boardroom/internal/errors"
	"github.com/boardroomhq/boardroom/internal/event"
)

// Handler receives each parsed envelope. Handlers run on the read
// goroutine, so the stream's arrival order is preserved.
type Handler func(ctx context.Context, env event.Envelope)

// Options configures a Client.
type Options struct {
	// URL is the websocket endpoint of the event bus. Required.
	URL string
	// Handler receives parsed envelopes. Required.
	Handler Handler
	// InitialBackoff overrides the first reconnect delay. Zero keeps the
	// library default.
	InitialBackoff time.Duration
	// MaxBackoff caps the reconnect delay. Zero keeps the library default.
	MaxBackoff time.Duration
}

// Client maintains a subscription to the event bus across reconnects.
type Client struct {
	url     string
	handler Handler
	opts    Options
}

// NewClient creates a bus client. It validates options but does not dial;
// the connection is established by Run.
func NewClient(opts Options) (*Client, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, apperrors.New(apperrors.CodeBusEmptyURL, "bus url is required")
	}
	if opts.Handler == nil {
		return nil, apperrors.New(apperrors.CodeBusNilHandler, "bus handler is required")
	}
	return &Client{url: url, handler: opts.Handler, opts: opts}, nil
}

// Run dials the bus and pumps envelopes to the handler until ctx is
// cancelled. Dial failures and dropped connections are retried with
// exponential backoff; the backoff resets after each successful
// connection.
func (c *Client) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0
	if c.opts.InitialBackoff > 0 {
		policy.InitialInterval = c.opts.InitialBackoff
	}
	if c.opts.MaxBackoff > 0 {
		policy.MaxInterval = c.opts.MaxBackoff
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.Dial(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := policy.NextBackOff()
			log.Printf("bus: dial %s: %v (retrying in %s)", c.url, err, wait)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		policy.Reset()
		err = c.pump(ctx, conn)
		conn.Close(websocket.StatusNormalClosure, "")
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := policy.NextBackOff()
		log.Printf("bus: connection to %s lost: %v (reconnecting in %s)", c.url, err, wait)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// pump reads frames until the connection fails or ctx is cancelled.
func (c *Client) pump(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		env, err := event.Parse(data)
		if err != nil {
			log.Printf("bus: dropping frame: %v", err)
			continue
		}
		c.handler(ctx, env)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
