package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterCascadeMetrics_Idempotent(t *testing.T) {
	RegisterCascadeMetrics()
	RegisterCascadeMetrics()

	StageAttemptsTotal.WithLabelValues("keyword_product_match", OutcomeMatch).Inc()
	if v := testutil.ToFloat64(StageAttemptsTotal.WithLabelValues("keyword_product_match", OutcomeMatch)); v < 1 {
		t.Errorf("stage attempts = %f, want >= 1", v)
	}
}

func TestRegisterEmbeddingMetrics_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()

	EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	if v := testutil.ToFloat64(EmbeddingCacheTotal.WithLabelValues("hit")); v < 1 {
		t.Errorf("cache hits = %f, want >= 1", v)
	}
}
