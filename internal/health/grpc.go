package health

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterGRPC registers the standard grpc.health.v1.Health service on s and returns it so callers
// can drive its status with Watch.
func RegisterGRPC(s grpc.ServiceRegistrar) *grpchealth.Server {
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

// Watch runs the registry every interval and mirrors the result onto hs for the overall ("")
// service until ctx is done. The first probe runs immediately.
func Watch(ctx context.Context, r *Registry, hs *grpchealth.Server, interval time.Duration) {
	update := func() {
		report := r.Run(ctx)
		status := healthpb.HealthCheckResponse_SERVING
		if !report.OK() {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Printf("health: not serving: %v", report.Checks)
		}
		hs.SetServingStatus("", status)
	}
	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
