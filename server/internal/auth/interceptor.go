package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryAPIKey returns a gRPC UnaryServerInterceptor that enforces the API
// key on every unary call. header is matched case-insensitively.
func UnaryAPIKey(header, key string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if err := checkMetadata(ctx, header, key); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamAPIKey is the streaming counterpart of UnaryAPIKey.
func StreamAPIKey(header, key string) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := checkMetadata(ss.Context(), header, key); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func checkMetadata(ctx context.Context, header, key string) error {
	if key == "" {
		return nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	// gRPC normalises metadata keys to lowercase.
	vals := md.Get(strings.ToLower(header))
	if len(vals) == 0 || !equal(vals[0], key) {
		return status.Error(codes.Unauthenticated, "invalid api key")
	}
	return nil
}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
