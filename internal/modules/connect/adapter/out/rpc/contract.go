package rpc

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey         = "connector"
	serviceName          = "hostnav.connector.v1.Connector"
	jsonCodecName        = "json"
	methodGetMetadata    = "/" + serviceName + "/GetMetadata"
	methodPrepareSession = "/" + serviceName + "/PrepareSession"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "HOSTNAV_CONNECTOR",
	MagicCookieValue: "hostnav",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type Target struct {
	NodeID    string   `json:"node_id"`
	Title     string   `json:"title"`
	Hostname  string   `json:"hostname"`
	IP        string   `json:"ip"`
	Platform  string   `json:"platform"`
	Protocols []string `json:"protocols"`
	AppType   string   `json:"app_type,omitempty"`
}

type PrepareSessionRequest struct {
	Mode   string `json:"mode"`
	Target Target `json:"target"`
}

type PrepareSessionResponse struct {
	Argv []string          `json:"argv"`
	Cwd  string            `json:"cwd"`
	Env  map[string]string `json:"env"`
}

type ConnectorServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	PrepareSession(ctx context.Context, in *PrepareSessionRequest) (*PrepareSessionResponse, error)
}

type ConnectorClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	PrepareSession(ctx context.Context, in *PrepareSessionRequest) (*PrepareSessionResponse, error)
}

type connectorClient struct {
	conn *grpc.ClientConn
}

func NewConnectorClient(conn *grpc.ClientConn) ConnectorClient {
	return &connectorClient{conn: conn}
}

func (c *connectorClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *connectorClient) PrepareSession(ctx context.Context, in *PrepareSessionRequest) (*PrepareSessionResponse, error) {
	out := &PrepareSessionResponse{}
	if err := c.conn.Invoke(ctx, methodPrepareSession, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterConnectorServer(server grpc.ServiceRegistrar, impl ConnectorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ConnectorServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "PrepareSession",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &PrepareSessionRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.PrepareSession(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPrepareSession}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*PrepareSessionRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.PrepareSession(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "hostnav/connector/v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ConnectorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterConnectorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewConnectorClient(conn), nil
}

func PluginMap(impl ConnectorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
