// Package resource governs the IO issued by commits and evictions.
//
// A Controller bounds two things:
//
//   - Flush workers: how many pages are written concurrently during a commit
//   - IO bandwidth: a token bucket over the bytes written to the store
//
//	rc := resource.NewController(resource.Config{
//	    MaxFlushWorkers:    4,
//	    IOLimitBytesPerSec: 64 << 20, // 64MB/s
//	})
//
//	if err := rc.AcquireFlush(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseFlush()
//	if err := rc.AcquireIO(ctx, len(page)); err != nil {
//	    return err
//	}
//
// All methods handle a nil Controller gracefully; they become no-ops, so
// unlimited tables need no controller at all.
package resource
