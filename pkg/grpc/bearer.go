package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
)

// AuthorizationMetadataKey carries the caller's bearer token
const AuthorizationMetadataKey = "authorization"

type bearerCredentials struct {
	token  string
	secure bool
}

// BearerCredentials returns per-RPC credentials that attach token to every
// call. With secure set, the token is only sent over a TLS transport.
func BearerCredentials(token string, secure bool) credentials.PerRPCCredentials {
	return bearerCredentials{token: token, secure: secure}
}

func (b bearerCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{AuthorizationMetadataKey: "Bearer " + b.token}, nil
}

func (b bearerCredentials) RequireTransportSecurity() bool {
	return b.secure
}

// BearerToken returns the bearer token of an incoming call
func BearerToken(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(AuthorizationMetadataKey)
	if len(values) == 0 {
		return "", false
	}
	scheme, token, ok := strings.Cut(values[0], " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}
