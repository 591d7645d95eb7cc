package commitrpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs one record per unary RPC: method, gRPC code and
// duration. Failed calls are logged at warn level with the status message.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		st := status.Convert(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", st.Code().String(),
			"duration", time.Since(start),
		}
		if err != nil {
			logger.WarnContext(ctx, "rpc failed", append(attrs, "error", st.Message())...)
			return resp, err
		}
		logger.InfoContext(ctx, "rpc", attrs...)
		return resp, err
	}
}
