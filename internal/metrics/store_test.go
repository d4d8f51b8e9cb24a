package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterStoreIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterStore(reg))
	// double registration must be tolerated
	require.NoError(t, RegisterStore(reg))
}

func TestObserveStoreOpLabelsResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterStore(reg))

	before := testutil.ToFloat64(StoreOpsTotal.WithLabelValues("create_user", "ok"))
	ObserveStoreOp("create_user", time.Now(), nil)
	ObserveStoreOp("create_user", time.Now(), errors.New("boom"))
	ObserveStoreOp("create_user", time.Now(), nil)

	require.Equal(t, before+2, testutil.ToFloat64(StoreOpsTotal.WithLabelValues("create_user", "ok")))
	require.GreaterOrEqual(t, testutil.ToFloat64(StoreOpsTotal.WithLabelValues("create_user", "error")), 1.0)
}
