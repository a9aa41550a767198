// server runs the task-manager REST API (HTTP_ADDR) and, when GRPC_ADDR is set, the gRPC health service.
// Without DATABASE_URL it keeps users and tasks in memory, which is only meant for local development.
package main

import (
	"context"
	"crypto/rand"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"task-manager/backend/internal/config"
	"task-manager/backend/internal/db"
	"task-manager/backend/internal/health"
	identityservice "task-manager/backend/internal/identity/service"
	policyengine "task-manager/backend/internal/policy/engine"
	"task-manager/backend/internal/security"
	"task-manager/backend/internal/server"
	"task-manager/backend/internal/telemetry"
	telemetryotel "task-manager/backend/internal/telemetry/otel"
	"task-manager/backend/internal/telemetry/producer"
	taskrepo "task-manager/backend/internal/task/repository"
	taskservice "task-manager/backend/internal/task/service"
	userrepo "task-manager/backend/internal/user/repository"
)

const healthInterval = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "task-manager",
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	registry := &health.Registry{}

	tokens, err := newTokenProvider(cfg)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	var (
		users userrepo.Repository
		tasks taskrepo.Repository
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		registry.Add("postgres", db.Checker{DB: conn})
		users = userrepo.NewPostgresRepository(conn)
		tasks = taskrepo.NewPostgresRepository(conn)
	} else {
		log.Println("server: DATABASE_URL not set; using in-memory stores")
		users = userrepo.NewMemoryRepository()
		tasks = taskrepo.NewMemoryRepository()
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		registry.Add("redis", health.CheckFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }))
		tasks = taskrepo.NewCachedRepository(tasks, rdb, cfg.CacheTTL())
		log.Printf("server: task cache enabled (%s, ttl %s)", cfg.RedisAddr, cfg.CacheTTL())
	}

	events := telemetry.Fanout{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kp := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.TaskEventsTopic); kp != nil {
		defer kp.Close()
		events = append(events, kp)
		log.Printf("server: publishing events to kafka topic %s", cfg.TaskEventsTopic)
	}

	policy, err := policyengine.NewOPAEvaluator(ctx, "")
	if err != nil {
		log.Fatalf("policy: %v", err)
	}
	registry.Add("policy", health.CheckFunc(policy.HealthCheck))

	authSvc := identityservice.NewAuthService(users, security.NewHasher(cfg.BcryptCost), tokens, cfg.PasswordMinLength, events)
	taskSvc := taskservice.NewTaskService(tasks, policy, events)

	app := server.NewApp(server.Deps{Auth: authSvc, Tasks: taskSvc, Health: registry})

	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		gs, hs := server.NewGRPCServer()
		go health.Watch(ctx, registry, hs, healthInterval)
		go func() {
			log.Printf("gRPC health server listening on %s", cfg.GRPCAddr)
			if err := gs.Serve(lis); err != nil {
				log.Printf("grpc serve: %v", err)
			}
		}()
		defer gs.GracefulStop()
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Printf("http serve: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	// Give in-flight async event emits a chance to finish before exporters close.
	time.Sleep(telemetry.ShutdownDrainDuration)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("server stopped")
}

func newTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	secret := cfg.JWTSecret
	if !cfg.UsesKeyPair() && secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		secret = string(b)
		log.Println("server: JWT_SECRET not set; using a random secret, sessions end on restart")
	}
	return security.NewTokenProviderFromSettings(security.SigningSettings{
		PrivateKey: cfg.JWTPrivateKey,
		PublicKey:  cfg.JWTPublicKey,
		Secret:     secret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TTL:        cfg.TokenTTL(),
	})
}
