package interceptors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"mip-notes/internal/logger"
)

// LoggerUnaryInterceptor логирует каждый unary запрос: метод, код ответа и время выполнения
func LoggerUnaryInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		st, _ := status.FromError(err)
		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     st.Code().String(),
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithField("error", st.Message()).Warn("gRPC request failed")
		} else {
			entry.Info("gRPC request")
		}

		return resp, err
	}
}
