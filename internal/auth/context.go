package auth

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	UserIDHeader   = "X-User-ID"
	UserIDMetadata = "x-user-id"
)

type contextKey struct{}

// WithUserID records who issued the request, for audit logging.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// GetUserID returns the caller set by Middleware or UnaryServerInterceptor.
func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(contextKey{}).(string); ok {
		return val
	}
	return ""
}

// Middleware copies the X-User-ID header into the request context.
// Authentication itself happens at the gateway.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(UserIDHeader); id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// UnaryServerInterceptor is the gRPC counterpart of Middleware: it copies
// the x-user-id metadata entry into the handler context.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if val := md.Get(UserIDMetadata); len(val) > 0 && val[0] != "" {
				ctx = WithUserID(ctx, val[0])
			}
		}
		return handler(ctx, req)
	}
}
