package interceptors

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"mip-notes/internal/logger"
)

// countingServerStream считает отправленные сообщения стрима
type countingServerStream struct {
	grpc.ServerStream
	sent atomic.Int64
}

func (w *countingServerStream) SendMsg(m any) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sent.Add(1)
	}
	return err
}

// StreamInterceptor логирует открытие и завершение стрима и количество отправленных сообщений
func StreamInterceptor(log *logger.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		log.WithField("method", info.FullMethod).Info("gRPC stream opened")

		wrapped := &countingServerStream{ServerStream: ss}
		err := handler(srv, wrapped)

		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"sent":     wrapped.sent.Load(),
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("gRPC stream failed")
		} else {
			entry.Info("gRPC stream closed")
		}

		return err
	}
}
