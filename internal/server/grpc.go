package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	"task-manager/backend/internal/health"
)

// NewGRPCServer returns a gRPC server instrumented with otelgrpc that serves grpc.health.v1.Health.
// Drive the returned health server with health.Watch.
func NewGRPCServer() (*grpc.Server, *grpchealth.Server) {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	return s, health.RegisterGRPC(s)
}
