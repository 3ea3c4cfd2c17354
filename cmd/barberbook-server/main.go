package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"barberbook/backend/internal/config"
	"barberbook/backend/internal/notify"
	"barberbook/backend/internal/service/appointments"
	"barberbook/backend/internal/service/shops"
	"barberbook/backend/internal/store"
	"barberbook/backend/internal/store/memory"
	"barberbook/backend/internal/store/postgres"
	grpcTransport "barberbook/backend/internal/transport/grpc"
)

type notificationStore interface {
	store.NotificationInbox
	store.NotificationOutbox
	store.OutboxDrain
}

type stores struct {
	appointments store.AppointmentRepository
	shops        store.ShopDirectory
	accounts     store.AccountDirectory
	notes        notificationStore
	ping         func(ctx context.Context) error
	close        func() error
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "barberbook-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "barberbook-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("log_level", cfg.LogLevel),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("notify_sink", cfg.NotifySink),
	)

	st, err := openStores(log, cfg)
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	sink, err := openSink(log, cfg)
	if err != nil {
		log.Error("notification sink setup failed", slog.Any("err", err), slog.String("notify_sink", cfg.NotifySink))
		os.Exit(1)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn("notification sink close failed", slog.Any("err", err))
		}
	}()

	apptSvc := appointments.NewService(st.appointments, st.shops, st.accounts)
	shopSvc := shops.NewService(st.shops, st.accounts, st.notes)

	healthSrv := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout)),
	)
	grpcTransport.RegisterSchedulingServer(grpcServer, grpcTransport.NewServer(apptSvc, shopSvc, st.notes, log))
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(grpcTransport.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay := notify.NewRelay(st.notes, sink, log, notify.RelayConfig{
		PollEvery: cfg.NotifyPollInterval,
		BatchSize: cfg.NotifyBatchSize,
	})
	bgCtx, stopBackground := context.WithCancel(context.Background())
	var background sync.WaitGroup
	background.Add(1)
	go func() {
		defer background.Done()
		relay.Run(bgCtx)
	}()

	background.Add(1)
	go func() {
		defer background.Done()
		watchStore(bgCtx, log, healthSrv, st.ping, healthCheckInterval)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		healthSrv.Shutdown()
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			stopBackground()
			background.Wait()
			os.Exit(1)
		}
	}

	stopBackground()
	background.Wait()
}

const healthCheckInterval = 15 * time.Second

// watchStore flips the Scheduling health status while the backing store is unreachable.
func watchStore(ctx context.Context, log *slog.Logger, hs *health.Server, ping func(context.Context) error, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := ping(ctx)
		switch {
		case err != nil && serving:
			log.Warn("store unreachable", slog.Any("err", err))
			hs.SetServingStatus(grpcTransport.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			log.Info("store reachable again")
			hs.SetServingStatus(grpcTransport.ServiceName, healthpb.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}

func openStores(log *slog.Logger, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.New()
		return stores{
			appointments: m,
			shops:        m,
			accounts:     m,
			notes:        m,
			ping:         func(context.Context) error { return nil },
			close:        func() error { return nil },
		}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(context.Background(), cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return stores{}, err
	}
	return stores{
		appointments: postgres.NewAppointmentRepo(db),
		shops:        postgres.NewShopRepo(db),
		accounts:     postgres.NewAccountRepo(db),
		notes:        postgres.NewNotificationRepo(db),
		ping:         func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		close:        func() error { return postgres.Close(db) },
	}, nil
}

func openSink(log *slog.Logger, cfg config.Config) (notify.Sink, error) {
	switch cfg.NotifySink {
	case config.NotifySinkKafka:
		brokers := notify.SplitBrokers(cfg.KafkaBrokers)
		log.Info("publishing notifications to kafka", slog.Any("brokers", brokers), slog.String("topic", cfg.KafkaTopic))
		return notify.NewKafkaSink(brokers, cfg.KafkaTopic)
	case config.NotifySinkRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		log.Info("publishing notifications to redis", slog.String("redis_addr", cfg.RedisAddr), slog.String("stream", cfg.RedisStream))
		return notify.NewRedisSink(client, cfg.RedisStream)
	default:
		return notify.NewLogSink(log), nil
	}
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
