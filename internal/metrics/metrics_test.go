package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSolve(t *testing.T) {
	RegisterDefault()
	RegisterDefault()

	before := testutil.ToFloat64(Solves.WithLabelValues("grasp", "true"))
	ObserveSolve("grasp", true, 3*time.Millisecond, 12)
	assert.Equal(t, before+1, testutil.ToFloat64(Solves.WithLabelValues("grasp", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(SolveDuration, "binrent_solve_duration_seconds"))
}
