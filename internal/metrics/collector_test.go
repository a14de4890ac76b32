package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector("sapai", reg, zap.NewNop()), reg
}

func TestNewCollector(t *testing.T) {
	collector, _ := newTestCollector(t)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.tokenExchangesTotal)
	assert.NotNil(t, collector.tokenExchangeDuration)
	assert.NotNil(t, collector.modelsCreatedTotal)
	assert.NotNil(t, collector.chatRequestsTotal)
	assert.NotNil(t, collector.chatRequestDuration)
}

func TestNewCollector_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("sapai", prometheus.NewRegistry(), nil)
	})
}

func TestCollector_RecordTokenExchange(t *testing.T) {
	collector, _ := newTestCollector(t)

	collector.RecordTokenExchange(OutcomeSuccess, 120*time.Millisecond)
	collector.RecordTokenExchange(OutcomeSuccess, 80*time.Millisecond)
	collector.RecordTokenExchange(OutcomeRejected, 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.tokenExchangesTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.tokenExchangesTotal.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.tokenExchangesTotal.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.tokenExchangeDuration))
}

func TestCollector_RecordModelCreated(t *testing.T) {
	collector, _ := newTestCollector(t)

	collector.RecordModelCreated("gpt-4o")
	collector.RecordModelCreated("gpt-4o")
	collector.RecordModelCreated("anthropic--claude-3.5-sonnet")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.modelsCreatedTotal.WithLabelValues("gpt-4o")))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.modelsCreatedTotal))
}

func TestCollector_RecordChatRequest(t *testing.T) {
	collector, _ := newTestCollector(t)

	collector.RecordChatRequest("gpt-4o", 200, time.Second)
	collector.RecordChatRequest("gpt-4o", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.chatRequestsTotal.WithLabelValues("gpt-4o", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.chatRequestsTotal.WithLabelValues("gpt-4o", "error")))
}

func TestCollector_RegistersOnGivenRegistry(t *testing.T) {
	collector, reg := newTestCollector(t)
	collector.RecordTokenExchange(OutcomeSuccess, time.Millisecond)

	families, err := reg.Gather()
	assert.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sapai_token_exchanges_total")
	assert.Contains(t, names, "sapai_token_exchange_duration_seconds")
}
