package grpc

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// ClientConfig describes how internal callers reach the order query service
type ClientConfig struct {
	// Service names the caller in request metadata
	Service  string
	Timeout  time.Duration
	MTLS     bool
	CertFile string
	KeyFile  string
	CAFile   string
	// Token, when set, is sent as a bearer token on every call
	Token string
}

// NewClientConn creates a client connection with the shared client
// interceptor and either mTLS or plaintext transport
func NewClientConn(target string, cfg ClientConfig, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithUnaryInterceptor(UnaryClientInterceptor(cfg.Service, cfg.Timeout)),
	}

	if cfg.MTLS {
		tlsConfig, err := ClientTLSConfig(cfg.CertFile, cfg.KeyFile, cfg.CAFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	if cfg.Token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(BearerCredentials(cfg.Token, cfg.MTLS)))
	}

	return grpc.NewClient(target, append(opts, extra...)...)
}
