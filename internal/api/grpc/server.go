package grpc

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"mip-notes/internal/api/grpc/interceptors"
	"mip-notes/internal/logger"
)

// NewServer создает и настраивает gRPC сервер с интерцепторами и конфигурацией
func NewServer(handler NotesServiceServer, log *logger.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(
		// Ограничиваем количество одновременных стримов
		grpc.MaxConcurrentStreams(25),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Minute,
			MaxConnectionAge:      1 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  10 * time.Minute,
			Timeout:               20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggerUnaryInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamInterceptor(log),
		),
	)

	RegisterNotesServiceServer(grpcServer, handler)
	log.WithField("grpc_service", ServiceName).Info("registered gRPC service")

	return grpcServer
}
