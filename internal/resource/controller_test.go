package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Flush(t *testing.T) {
	c := NewController(Config{MaxFlushWorkers: 2})
	assert.Equal(t, 2, c.FlushWorkers())

	ctx := context.Background()
	require.NoError(t, c.AcquireFlush(ctx))
	require.NoError(t, c.AcquireFlush(ctx))

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireFlush(timeout), context.DeadlineExceeded)

	c.ReleaseFlush()
	require.NoError(t, c.AcquireFlush(ctx))
}

func TestController_DefaultWorkers(t *testing.T) {
	assert.Equal(t, 1, NewController(Config{}).FlushWorkers())
}

func TestController_IO(t *testing.T) {
	ctx := context.Background()

	c := NewController(Config{})
	require.NoError(t, c.AcquireIO(ctx, 1<<20))
	assert.Equal(t, int64(1<<20), c.IOBytes())

	limited := NewController(Config{IOLimitBytesPerSec: 1000})
	// Larger than the bucket: admitted in chunks instead of failing.
	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := limited.AcquireIO(timeout, 5000)
	assert.Error(t, err)

	require.NoError(t, limited.AcquireIO(ctx, 500))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	ctx := context.Background()
	assert.NoError(t, c.AcquireFlush(ctx))
	c.ReleaseFlush()
	assert.NoError(t, c.AcquireIO(ctx, 10))
	assert.Equal(t, int64(0), c.IOBytes())
	assert.Equal(t, 1, c.FlushWorkers())
}
