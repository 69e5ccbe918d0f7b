package glue

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/paretoq/internal/agent"
	"github.com/danielpatrickdp/paretoq/internal/mdp"
)

// DefaultTimeout bounds each lifecycle call.
const DefaultTimeout = 30 * time.Second

// Client is a driver.Agent backed by a remote Server.
type Client struct {
	conn    *grpc.ClientConn
	svc     AgentServiceClient
	timeout time.Duration
}

// Dial connects to a glue server at addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial glue server: %w", err)
	}
	return &Client{conn: conn, svc: NewAgentServiceClient(conn), timeout: DefaultTimeout}, nil
}

// NewClientWithService wraps an existing service client (for testing).
func NewClientWithService(svc AgentServiceClient) *Client {
	return &Client{svc: svc, timeout: DefaultTimeout}
}

// SetTimeout changes the per-call deadline; zero disables it.
func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.timeout)
}

// #region Init
func (c *Client) Init(taskSpec string) (string, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	resp, err := c.svc.Init(ctx, payload(map[string]*structpb.Value{
		fieldTaskSpec: structpb.NewStringValue(taskSpec),
	}))
	if err != nil {
		return "", fromStatus("init", err)
	}
	return stringOf(resp, fieldAck), nil
}

// #endregion Init

// #region Start
func (c *Client) Start(observation []float64) (mdp.Action, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	resp, err := c.svc.Start(ctx, payload(map[string]*structpb.Value{
		fieldObservation: floatList(observation),
	}))
	if err != nil {
		return 0, fromStatus("start", err)
	}
	return mdp.Action(numberOf(resp, fieldAction)), nil
}

// #endregion Start

// #region Step
func (c *Client) Step(reward, observation []float64) (mdp.Action, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	resp, err := c.svc.Step(ctx, payload(map[string]*structpb.Value{
		fieldReward:      floatList(reward),
		fieldObservation: floatList(observation),
	}))
	if err != nil {
		return 0, fromStatus("step", err)
	}
	return mdp.Action(numberOf(resp, fieldAction)), nil
}

// #endregion Step

// #region End
func (c *Client) End(reward []float64) error {
	ctx, cancel := c.ctx()
	defer cancel()

	if _, err := c.svc.End(ctx, payload(map[string]*structpb.Value{
		fieldReward: floatList(reward),
	})); err != nil {
		return fromStatus("end", err)
	}
	return nil
}

// #endregion End

// #region Cleanup
func (c *Client) Cleanup() error {
	ctx, cancel := c.ctx()
	defer cancel()

	if _, err := c.svc.Cleanup(ctx, payload(nil)); err != nil {
		return fromStatus("cleanup", err)
	}
	return nil
}

// #endregion Cleanup

// #region Message
func (c *Client) Message(msg string) (string, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	resp, err := c.svc.Message(ctx, payload(map[string]*structpb.Value{
		fieldMessage: structpb.NewStringValue(msg),
	}))
	if err != nil {
		return "", fromStatus("message", err)
	}
	return stringOf(resp, fieldResponse), nil
}

// #endregion Message

// fromStatus restores ErrLifecycle across the wire so callers can keep using
// errors.Is.
func fromStatus(op string, err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.FailedPrecondition {
		return fmt.Errorf("%s rpc: %w: %s", op, agent.ErrLifecycle, st.Message())
	}
	return fmt.Errorf("%s rpc: %w", op, err)
}

// NewClientWithConn wraps a connection the caller owns; Close leaves it open.
func NewClientWithConn(conn grpc.ClientConnInterface) *Client {
	return &Client{svc: NewAgentServiceClient(conn), timeout: DefaultTimeout}
}
