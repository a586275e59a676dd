package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"google.golang.org/grpc"

	grpcapi "mip-notes/internal/api/grpc"
	"mip-notes/internal/api/rest"
	"mip-notes/internal/config"
	"mip-notes/internal/logger"
	"mip-notes/internal/pubsub"
	"mip-notes/internal/repository"
	"mip-notes/internal/repository/memory"
	"mip-notes/internal/repository/mongodb"
	"mip-notes/internal/service/notes"
)

// Server сервер приложения: HTTP API и gRPC поверх одного сервиса заметок
type Server struct {
	cfg *config.Config
	log *logger.Logger

	// HTTP компоненты
	httpServer   *http.Server
	httpListener net.Listener

	// gRPC компоненты, nil если server.port_grpc <= 0
	grpcServer   *grpc.Server
	grpcListener net.Listener

	// Контекст сервера отменяется при shutdown, чтобы завершить стримы WatchNotes
	ctx    context.Context
	cancel context.CancelFunc

	events      *notes.EventService
	mongoClient *mongo.Client
	publisher   *pubsub.RedisPublisher
	consumers   sync.WaitGroup
}

// NewServer создает сервер. Компоненты создаются в Initialize.
func NewServer(cfg *config.Config, log *logger.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		events: notes.NewEventService(),
	}
}

// Initialize подключает хранилище и собирает компоненты (Repository → Service → Handler).
// Ошибка подключения к хранилищу возвращается до открытия портов.
func (s *Server) Initialize(ctx context.Context) error {
	noteRepo, err := s.initStorage(ctx)
	if err != nil {
		return err
	}

	s.initEvents(ctx)

	noteSvc := notes.NewNoteService(noteRepo, notes.WithEvents(s.events))
	s.log.Info("Initialized note service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := rest.NewRouter(rest.NewHandler(noteSvc, s.log), rest.RouterConfig{
		APIPrefix: s.cfg.Server.APIPrefix,
		Gateway:   s.cfg.Gateway,
		Logger:    s.log,
		Registry:  registry,
	})

	httpAddr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.PortHTTP))
	s.httpListener, err = net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpAddr, err)
	}

	s.httpServer = &http.Server{
		Handler:           router,
		ReadTimeout:       seconds(s.cfg.Server.HTTPReadTimeout),
		WriteTimeout:      seconds(s.cfg.Server.HTTPWriteTimeout),
		IdleTimeout:       seconds(s.cfg.Server.HTTPIdleTimeout),
		ReadHeaderTimeout: seconds(s.cfg.Server.HTTPReadHeaderTimeout),
	}

	if s.cfg.Server.PortGRPC <= 0 {
		s.log.Info("gRPC transport disabled")
		return nil
	}

	grpcAddr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.PortGRPC))
	s.grpcListener, err = net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = s.httpListener.Close()
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	s.grpcServer = grpcapi.NewServer(grpcapi.NewHandler(s.ctx, noteSvc, s.events, s.log), s.log)

	return nil
}

// initStorage создает репозиторий по storage.driver
func (s *Server) initStorage(ctx context.Context) (repository.NoteRepository, error) {
	storage := s.cfg.Storage

	if storage.Driver == config.StorageMemory {
		s.log.Warn("Using in-memory repository, notes are lost on restart")
		return memory.NewRepository(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, seconds(storage.ConnectTimeout))
	defer cancel()

	client, err := mongodb.Connect(connectCtx, storage.MongoURI)
	if err != nil {
		return nil, err
	}

	db := client.Database(storage.Database)
	if err := mongodb.EnsureIndexes(connectCtx, db, storage.Collection); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s.mongoClient = client
	s.log.WithField("database", storage.Database).Info("Connected to MongoDB")

	return mongodb.NewRepository(db, storage.Collection), nil
}

// initEvents подключает потребителей событий: журнал и, если задан redis_url, Redis
func (s *Server) initEvents(ctx context.Context) {
	s.consume(pubsub.AuditLog(s.log))

	if s.cfg.Events.RedisURL == "" {
		return
	}

	publisher, err := pubsub.NewRedisPublisher(ctx, s.cfg.Events.RedisURL, s.cfg.Events.RedisChannel)
	if err != nil {
		// Redis необязателен: сервис работает и без внешней публикации
		s.log.WithError(err).Warn("Redis publisher disabled")
		return
	}

	s.publisher = publisher
	s.consume(publisher.Publish)
	s.log.WithField("channel", s.cfg.Events.RedisChannel).Info("Publishing note events to Redis")
}

func (s *Server) consume(handler pubsub.EventHandler) {
	sub := s.events.Subscribe()
	s.consumers.Add(1)
	go func() {
		defer s.consumers.Done()
		// завершается по закрытию канала событий в Shutdown, после остановки HTTP и gRPC
		pubsub.Forward(context.Background(), sub, handler, s.log)
	}()
}

// HTTPAddr адрес, на котором слушает HTTP сервер
func (s *Server) HTTPAddr() string {
	return s.httpListener.Addr().String()
}

// GRPCAddr адрес gRPC сервера или пустая строка, если gRPC выключен
func (s *Server) GRPCAddr() string {
	if s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Start запускает HTTP и gRPC серверы в горутинах.
// Возвращает канал ошибок для отслеживания ошибок серверов.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 2)

	go func() {
		s.log.WithField("addr", s.HTTPAddr()).Info("HTTP server listening")
		if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if s.grpcServer != nil {
		go func() {
			s.log.WithField("addr", s.GRPCAddr()).Info("gRPC server listening")
			if err := s.grpcServer.Serve(s.grpcListener); err != nil {
				errChan <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}

	return errChan
}

// Shutdown выполняет graceful shutdown в пределах server.graceful_shutdown_timeout,
// затем отключает хранилище
func (s *Server) Shutdown() error {
	s.log.Info("Starting graceful shutdown...")

	// Контекст сервера отменяется до GracefulStop, иначе открытые стримы его не дождутся
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), seconds(s.cfg.Server.GracefulShutdownTimeout))
	defer cancel()

	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			s.log.Info("gRPC server stopped gracefully")
		case <-ctx.Done():
			s.log.Warn("Graceful shutdown timeout, forcing gRPC stop")
			s.grpcServer.Stop()
			errs = append(errs, ctx.Err())
		}
	}

	s.events.Close()
	s.consumers.Wait()

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close Redis: %w", err))
		}
	}

	if s.mongoClient != nil {
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect MongoDB: %w", err))
		}
	}

	s.log.Info("Notes service stopped")
	return errors.Join(errs...)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
