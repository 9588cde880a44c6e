package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReconcilerRejectsBadCron(t *testing.T) {
	_, err := NewReconciler(nil, "not a cron expression")
	assert.Error(t, err)
}

func TestNewReconcilerComputesNextRun(t *testing.T) {
	r, err := NewReconciler(nil, "*/5 * * * *")
	require.NoError(t, err)
	assert.False(t, r.nextRun.IsZero())
}
