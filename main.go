package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger/internal/chat"
	"messenger/internal/config"
	"messenger/internal/console"
	grpcserver "messenger/internal/grpc"
	"messenger/internal/handlers"
	"messenger/internal/middleware"
	"messenger/internal/models"
	"messenger/internal/observability"
	"messenger/internal/rabbitmq"
	"messenger/internal/telemetry"
	"messenger/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("publisher mode=%s reason=%q", rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher))
	observability.SetPublisher(publisher)
	auditEmitter := telemetry.NewAuditEmitter(publisher, rabbitmq.RoutingKeyModeration, cfg.ServiceName, cfg.Environment)

	router := chat.NewRouter(chat.Options{
		Hasher:       chat.NewBcryptHasher(cfg.BcryptCost),
		HistoryLimit: cfg.HistoryLimit,
		Auditor:      auditEmitter,
	})
	if cfg.AdminPassword != "" {
		if _, err := router.RegisterIdentity(models.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	}

	hub := ws.NewHub()
	wsHandler := ws.NewHandler(router, hub, ws.Options{
		SendBuffer:    cfg.SendBuffer,
		MaxFrameBytes: cfg.MaxFrameBytes,
		WriteTimeout:  cfg.WriteTimeout,
	})
	messengerHandler := handlers.NewMessengerHandler(router)
	adminHandler := handlers.NewAdminHandler(router)

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(otelgin.Middleware(cfg.ServiceName))
	engine.Use(observability.HTTPMetricsMiddleware())

	engine.GET("/ws", wsHandler.Handle)
	engine.GET("/channels", messengerHandler.ListChannels)
	engine.GET("/stats", messengerHandler.Stats)
	engine.GET("/healthz", messengerHandler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.POST("/admin/commands", middleware.AdminAuth(cfg.AdminToken), adminHandler.RunCommand)
	handlers.RegisterDebugRoutes(engine, auditEmitter, cfg.DebugRoutes)

	lis, err := listen(cfg.Port, cfg.FallbackPort)
	if err != nil {
		log.Fatalf("failed to bind: %v", err)
	}
	srv := &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Printf("messenger listening on %s", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	var healthServer *grpcserver.HealthServer
	if cfg.GRPCPort > 0 {
		grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
		if err != nil {
			log.Fatalf("failed to bind grpc: %v", err)
		}
		healthServer = grpcserver.NewHealthServer()
		go func() {
			if err := healthServer.Serve(grpcLis); err != nil {
				log.Printf("grpc server error: %v", err)
			}
		}()
	}

	if cfg.ConsoleEnabled {
		go func() {
			if console.New(router, os.Stdin, os.Stdout).Run(ctx) {
				stop()
			}
		}()
	}

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if healthServer != nil {
		healthServer.Stop(shutdownCtx)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown error: %v", err)
	}
}

// listen binds port, falling back once to fallback.
func listen(port, fallback int) (net.Listener, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err == nil {
		return lis, nil
	}
	if fallback == 0 || fallback == port {
		return nil, err
	}
	log.Printf("port %d unavailable (%v), trying %d", port, err, fallback)
	return net.Listen("tcp", fmt.Sprintf(":%d", fallback))
}
