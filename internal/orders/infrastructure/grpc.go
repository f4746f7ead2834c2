package infrastructure

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/errors"
	pkggrpc "go-storefront/pkg/grpc"
	"go-storefront/pkg/logger"
)

// OrderQueryServiceName is the fully qualified gRPC service name
const OrderQueryServiceName = "storefront.orders.v1.OrderQueryService"

// OrderQueryServer is the server API for the order query service
type OrderQueryServer interface {
	GetOrder(ctx context.Context, orderID *wrapperspb.StringValue) (*structpb.Struct, error)
	ListUserOrders(ctx context.Context, userID *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// OrderQueryServiceDesc describes the service using well-known message types
var OrderQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderQueryServiceName,
	HandlerType: (*OrderQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "ListUserOrders", Handler: listUserOrdersHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/orders/v1/order_query.proto",
}

func getOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderQueryServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + OrderQueryServiceName + "/GetOrder"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderQueryServer).GetOrder(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listUserOrdersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderQueryServer).ListUserOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + OrderQueryServiceName + "/ListUserOrders"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderQueryServer).ListUserOrders(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCServer serves order reads. Every call must carry the caller's bearer
// token; reads are scoped to that caller exactly as over HTTP.
type GRPCServer struct {
	useCase  *application.OrderUseCase
	verifier *auth.Verifier
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.OrderUseCase, verifier *auth.Verifier) *GRPCServer {
	return &GRPCServer{useCase: useCase, verifier: verifier}
}

// Register adds the service to s
func (s *GRPCServer) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&OrderQueryServiceDesc, s)
}

func (s *GRPCServer) caller(ctx context.Context) (context.Context, auth.Identity, error) {
	token, ok := pkggrpc.BearerToken(ctx)
	if !ok {
		return ctx, auth.Identity{}, errors.NewUnauthorized("bearer token required")
	}
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return ctx, auth.Identity{}, err
	}
	ctx = auth.WithIdentity(ctx, identity)
	return logger.WithUserIDContext(ctx, identity.UserID.String()), identity, nil
}

// GetOrder implements OrderQueryServer.GetOrder. Non-admin callers only see
// their own orders.
func (s *GRPCServer) GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	ctx, identity, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	orderID, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errors.NewNotFound("order", req.GetValue())
	}

	view, err := s.useCase.GetOrder(ctx, application.GetOrderInput{
		OrderID:     orderID,
		RequesterID: identity.UserID,
		IsAdmin:     identity.IsAdmin(),
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(viewFields(view))
}

// ListUserOrders implements OrderQueryServer.ListUserOrders. Only admins may
// list another user's orders.
func (s *GRPCServer) ListUserOrders(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	ctx, identity, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errors.NewValidation("invalid user id", req.GetValue())
	}
	if userID != identity.UserID && !identity.IsAdmin() {
		return nil, errors.NewForbidden("cannot list another user's orders")
	}

	views, err := s.useCase.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(views))
	for i, view := range views {
		values[i] = viewFields(view)
	}
	return structpb.NewList(values)
}

// viewFields flattens a view into structpb-compatible values. Amounts stay
// strings so no precision is lost to float64.
func viewFields(view *domain.OrderView) map[string]interface{} {
	items := make([]interface{}, len(view.Lines))
	for i, line := range view.Lines {
		items[i] = map[string]interface{}{
			"productId":   line.ProductID.String(),
			"productName": line.ProductName,
			"quantity":    line.Quantity,
			"unitPrice":   line.UnitPrice.StringFixed(2),
		}
	}
	return map[string]interface{}{
		"orderId":     view.OrderID.String(),
		"userId":      view.UserID.String(),
		"orderDate":   view.OrderDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"status":      view.Status.String(),
		"totalAmount": view.TotalAmount.StringFixed(2),
		"items":       items,
	}
}

// OrderQueryClient calls OrderQueryService over a client connection
type OrderQueryClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderQueryClient creates a client on cc
func NewOrderQueryClient(cc grpc.ClientConnInterface) *OrderQueryClient {
	return &OrderQueryClient{cc: cc}
}

// GetOrder fetches one order view
func (c *OrderQueryClient) GetOrder(ctx context.Context, orderID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+OrderQueryServiceName+"/GetOrder", wrapperspb.String(orderID), out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUserOrders fetches a user's order views, newest first
func (c *OrderQueryClient) ListUserOrders(ctx context.Context, userID string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	err := c.cc.Invoke(ctx, "/"+OrderQueryServiceName+"/ListUserOrders", wrapperspb.String(userID), out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
