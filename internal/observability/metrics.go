// Package observability holds the Prometheus collectors shared by the
// infrastructure layers. It sits below cache and media so neither has to
// import the HTTP middleware.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MediaOps counts media store operations by operation and outcome.
var MediaOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "savornshare_media_ops_total",
	Help: "Media store operations by operation and outcome",
}, []string{"op", "outcome"})

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "savornshare_redis_errors_total",
	Help: "Redis command failures by command",
}, []string{"command"})
