package pluginsdk

import (
	"context"
	"encoding/gob"
	"errors"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// Handshake is the shared handshake configuration a plugin binary and
// the host process must agree on before the RPC connection is
// established. Changing ProtocolVersion invalidates every plugin built
// against an older version.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "RELAYFORGE_PLUGIN",
	MagicCookieValue: "provider",
}

func init() {
	// net/rpc's default gob codec needs every concrete type that can
	// appear inside a map[string]any (tool arguments and payloads)
	// registered up front.
	gob.Register("")
	gob.Register(0)
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(false)
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// ProviderPlugin adapts a Provider implementation to go-plugin's
// net/rpc transport: Server runs inside the plugin subprocess, Client
// runs inside the host and proxies every call over the wire.
type ProviderPlugin struct {
	Impl Provider
}

func (p *ProviderPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &providerRPCServer{impl: p.Impl}, nil
}

func (p *ProviderPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &providerRPCClient{client: c}, nil
}

type providerRPCServer struct {
	impl Provider
}

func (s *providerRPCServer) Name(_ struct{}, resp *string) error {
	*resp = s.impl.Name()
	return nil
}

func (s *providerRPCServer) Initialize(_ struct{}, _ *struct{}) error {
	return s.impl.Initialize(context.Background())
}

func (s *providerRPCServer) Shutdown(_ struct{}, _ *struct{}) error {
	return s.impl.Shutdown(context.Background())
}

func (s *providerRPCServer) Tools(_ struct{}, resp *[]ToolSpec) error {
	*resp = s.impl.Tools()
	return nil
}

// ExecuteArgs is the RPC request payload for one tool call.
type ExecuteArgs struct {
	ToolName string
	Args     map[string]any
}

// ExecuteResult is the RPC response payload. ErrMsg carries the
// provider error as a string since net/rpc cannot transport an
// arbitrary error value across the wire.
type ExecuteResult struct {
	Payload any
	ErrMsg  string
}

func (s *providerRPCServer) Execute(args ExecuteArgs, resp *ExecuteResult) error {
	payload, err := s.impl.Execute(context.Background(), args.ToolName, args.Args)
	if err != nil {
		resp.ErrMsg = err.Error()
		return nil
	}
	resp.Payload = payload
	return nil
}

// providerRPCClient implements Provider on the host side by forwarding
// every method to the plugin subprocess.
type providerRPCClient struct {
	client *rpc.Client
}

func (c *providerRPCClient) Name() string {
	var resp string
	_ = c.client.Call("Plugin.Name", struct{}{}, &resp)
	return resp
}

func (c *providerRPCClient) Initialize(ctx context.Context) error {
	return c.client.Call("Plugin.Initialize", struct{}{}, &struct{}{})
}

func (c *providerRPCClient) Shutdown(ctx context.Context) error {
	return c.client.Call("Plugin.Shutdown", struct{}{}, &struct{}{})
}

func (c *providerRPCClient) Tools() []ToolSpec {
	var resp []ToolSpec
	_ = c.client.Call("Plugin.Tools", struct{}{}, &resp)
	return resp
}

func (c *providerRPCClient) Execute(ctx context.Context, toolName string, args map[string]any) (any, error) {
	var resp ExecuteResult
	if err := c.client.Call("Plugin.Execute", ExecuteArgs{ToolName: toolName, Args: args}, &resp); err != nil {
		return nil, err
	}
	if resp.ErrMsg != "" {
		return nil, errors.New(resp.ErrMsg)
	}
	return resp.Payload, nil
}

var _ Provider = (*providerRPCClient)(nil)
