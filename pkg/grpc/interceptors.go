package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

// Metadata keys exchanged between internal services
const (
	TraceIDMetadataKey = "x-trace-id"
	CallerMetadataKey  = "x-caller-service"
)

// ServerOptions returns the interceptors every storefront gRPC server installs
func ServerOptions(log *logger.Logger, timeout time.Duration) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(UnaryServerInterceptor(log, timeout)),
		grpc.StreamInterceptor(StreamServerInterceptor(log)),
	}
}

// UnaryServerInterceptor attaches a trace ID, bounds the call by timeout,
// turns application errors and panics into status errors and logs each call
// once. Caller mistakes log at warn, server faults at error.
func UnaryServerInterceptor(log *logger.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()
		ctx = withIncomingTrace(ctx)
		grpc.SetHeader(ctx, metadata.Pairs(TraceIDMetadataKey, logger.GetTraceID(ctx)))

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				log.WithContext(ctx).Error("grpc handler panicked",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()

		resp, err = handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("caller", incomingValue(ctx, CallerMetadataKey)),
			zap.Duration("duration", time.Since(start)),
		}
		if err == nil {
			log.WithContext(ctx).Info("grpc request completed", fields...)
			return resp, nil
		}

		st := errors.GRPCStatus(err)
		fields = append(fields, zap.String("grpc_code", status.Code(st).String()), zap.Error(err))
		if errors.HTTPStatus(err) >= 500 {
			log.WithContext(ctx).Error("grpc request failed", fields...)
		} else {
			log.WithContext(ctx).Warn("grpc request rejected", fields...)
		}
		return nil, st
	}
}

// UnaryClientInterceptor sends the trace ID and caller name, bounds the call
// by timeout and converts status errors back into application errors
func UnaryClientInterceptor(service string, timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		pairs := make([]string, 0, 4)
		if traceID := logger.GetTraceID(ctx); traceID != "" {
			pairs = append(pairs, TraceIDMetadataKey, traceID)
		}
		if service != "" {
			pairs = append(pairs, CallerMetadataKey, service)
		}
		if len(pairs) > 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, pairs...)
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := invoker(ctx, method, req, reply, cc, opts...); err != nil {
			return errors.FromGRPCStatus(err)
		}
		return nil
	}
}

// StreamServerInterceptor logs streaming calls such as health watches
func StreamServerInterceptor(log *logger.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		ctx := withIncomingTrace(ss.Context())

		err := handler(srv, ss)

		log.WithContext(ctx).Info("grpc stream closed",
			zap.String("method", info.FullMethod),
			zap.String("caller", incomingValue(ctx, CallerMetadataKey)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
}

// withIncomingTrace stores the caller's trace ID in ctx, minting one if absent
func withIncomingTrace(ctx context.Context) context.Context {
	traceID := incomingValue(ctx, TraceIDMetadataKey)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return logger.WithTraceIDContext(ctx, traceID)
}

func incomingValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
