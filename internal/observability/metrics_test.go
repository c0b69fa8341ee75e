package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRegisterAndIncrement(t *testing.T) {
	before := testutil.ToFloat64(MediaOps.WithLabelValues("put", "ok"))
	MediaOps.WithLabelValues("put", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MediaOps.WithLabelValues("put", "ok")))

	before = testutil.ToFloat64(RedisErrors.WithLabelValues("get"))
	RedisErrors.WithLabelValues("get").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RedisErrors.WithLabelValues("get")))
}
