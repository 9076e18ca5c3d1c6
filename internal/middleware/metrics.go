package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name. Incremented by
// the cache client's hook; cache failures are absorbed as misses, so this
// counter is the only place they remain visible.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "studymesh_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// ChannelProvisioningFailures counts best-effort chat channel provisioning
// failures after accepted connections.
var ChannelProvisioningFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "studymesh_channel_provisioning_failures_total",
	Help: "Total number of failed chat channel provisioning attempts",
})

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-level Prometheus middleware handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
