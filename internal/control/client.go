package control

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"codeberg.org/mutker/powerhald/internal/errors"
)

const (
	dialTimeout         = 5 * time.Second
	responseReadTimeout = readTimeout + writeTimeout
	maxResponseSize     = maxRequestSize
)

// ServiceError is returned by Call when the daemon answered ok=false.
type ServiceError struct {
	Action  string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// Client talks to a running daemon. Every call opens its own
// connection.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Call sends action with fields and decodes the reply data into result
// when both are present.
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return errors.New().Wrap(ErrCall, err).WithMessage("calling " + action + " on " + c.socketPath)
	}

	if !response.OK {
		return &ServiceError{Action: action, Message: response.Error}
	}

	if result != nil && len(response.Data) > 0 {
		if err := unmarshal(response.Data, result); err != nil {
			return errors.New().Wrap(ErrInvalidRequest, err)
		}
	}

	return nil
}

func (c *Client) send(ctx context.Context, request any) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := newEncoder(conn).Encode(request); err != nil {
		return nil, err
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		_ = unixConn.CloseWrite()
	}

	_ = conn.SetReadDeadline(time.Now().Add(responseReadTimeout))

	var response Response
	if err := newDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, err
	}

	return &response, nil
}

// SetInteractive asks the daemon to run a screen transition.
func (c *Client) SetInteractive(ctx context.Context, on bool) error {
	return c.Call(ctx, ActionSetInteractive, map[string]any{"on": on}, nil)
}

// PowerHint forwards a hint. data may be nil.
func (c *Client) PowerHint(ctx context.Context, hint uint32, data *int32) error {
	fields := map[string]any{"hint": hint}
	if data != nil {
		fields["data"] = *data
	}
	return c.Call(ctx, ActionPowerHint, fields, nil)
}

func (c *Client) GetFeature(ctx context.Context, feature uint32) (int32, error) {
	var reply FeatureReply
	if err := c.Call(ctx, ActionGetFeature, map[string]any{"feature": feature}, &reply); err != nil {
		return 0, err
	}
	return reply.Value, nil
}

func (c *Client) SetFeature(ctx context.Context, feature uint32, state int32) error {
	return c.Call(ctx, ActionSetFeature, map[string]any{"feature": feature, "state": state}, nil)
}

func (c *Client) Status(ctx context.Context) (StatusReply, error) {
	var reply StatusReply
	err := c.Call(ctx, ActionStatus, nil, &reply)
	return reply, err
}
