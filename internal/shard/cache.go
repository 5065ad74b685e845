package shard

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/litedb/internal/resource"
	"github.com/hupe1980/litedb/storage"
)

const pagePrefix = "page"

// PageName returns the store name of page n.
func PageName(n int) string { return pagePrefix + strconv.Itoa(n) }

// ParsePageName returns the page number encoded in name.
func ParsePageName(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, pagePrefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || strconv.Itoa(n) != digits {
		return 0, false
	}
	return n, true
}

// Config configures a Cache.
type Config struct {
	// PageSize is the number of slots per page.
	PageSize int
	// Capacity is the maximum number of resident pages.
	Capacity int
	// Controller bounds flush concurrency and write bandwidth. Optional.
	Controller *resource.Controller
	// Logger receives eviction and flush events. Optional.
	Logger *slog.Logger
}

// Stats holds cache counters.
type Stats struct {
	Hits         int64
	Misses       int64
	Loads        int64
	Evictions    int64
	Flushes      int64
	BytesWritten int64
}

// Cache keeps at most Capacity pages resident, evicting the least recently
// used page and writing it back when dirty.
type Cache struct {
	store    storage.Store
	pageSize int
	capacity int
	rc       *resource.Controller
	logger   *slog.Logger

	items     map[int]*list.Element
	evictList *list.List
	known     map[int]struct{}

	hits         atomic.Int64
	misses       atomic.Int64
	loads        atomic.Int64
	evictions    atomic.Int64
	flushes      atomic.Int64
	bytesWritten atomic.Int64
}

type entry struct {
	page  int
	shard *Shard
	// disk is the checksum of the page file; valid when onDisk.
	disk   uint32
	onDisk bool
}

func (e *entry) dirty() bool {
	return !e.onDisk || e.shard.Checksum() != e.disk
}

// NewCache creates a cache over store and registers the pages already
// present in it.
func NewCache(ctx context.Context, store storage.Store, cfg Config) (*Cache, error) {
	if cfg.PageSize < 1 || cfg.Capacity < 1 {
		return nil, fmt.Errorf("shard: page size %d and capacity %d must be positive", cfg.PageSize, cfg.Capacity)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rc := cfg.Controller
	if rc == nil {
		rc = resource.NewController(resource.Config{})
	}

	c := &Cache{
		store:     store,
		pageSize:  cfg.PageSize,
		capacity:  cfg.Capacity,
		rc:        rc,
		logger:    logger,
		items:     make(map[int]*list.Element),
		evictList: list.New(),
		known:     make(map[int]struct{}),
	}

	names, err := store.List(ctx, pagePrefix)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if n, ok := ParsePageName(name); ok {
			c.known[n] = struct{}{}
		}
	}
	return c, nil
}

// PageSize returns the number of slots per page.
func (c *Cache) PageSize() int { return c.pageSize }

// Len returns the number of resident pages.
func (c *Cache) Len() int { return c.evictList.Len() }

// Pages returns the number of known pages, resident or not.
func (c *Cache) Pages() int { return len(c.known) }

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Loads:        c.loads.Load(),
		Evictions:    c.evictions.Load(),
		Flushes:      c.flushes.Load(),
		BytesWritten: c.bytesWritten.Load(),
	}
}

// Get returns page n, loading it from the store on a miss. When the page is
// unknown it is created if create is set; otherwise Get returns nil.
func (c *Cache) Get(ctx context.Context, n int, create bool) (*Shard, error) {
	if el, ok := c.items[n]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry).shard, nil
	}
	c.misses.Add(1)

	e := &entry{page: n}
	if _, ok := c.known[n]; ok {
		data, err := c.store.Get(ctx, PageName(n))
		switch {
		case err == nil:
			if e.shard, err = Decode(data, c.pageSize); err != nil {
				return nil, fmt.Errorf("page %d: %w", n, err)
			}
			e.disk, _ = StoredChecksum(data)
			e.onDisk = true
			c.loads.Add(1)
		case errors.Is(err, storage.ErrNotFound):
			// Registered but never flushed.
			e.shard = New(c.pageSize)
		default:
			return nil, err
		}
	} else {
		if !create {
			return nil, nil
		}
		e.shard = New(c.pageSize)
		c.known[n] = struct{}{}
	}

	c.items[n] = c.evictList.PushFront(e)
	if err := c.evict(ctx); err != nil {
		return nil, err
	}
	return e.shard, nil
}

func (c *Cache) evict(ctx context.Context) error {
	for c.evictList.Len() > c.capacity {
		el := c.evictList.Back()
		e := el.Value.(*entry)
		flushed := false
		if e.dirty() {
			if err := c.flush(ctx, e); err != nil {
				return fmt.Errorf("evict page %d: %w", e.page, err)
			}
			flushed = true
		}
		c.evictList.Remove(el)
		delete(c.items, e.page)
		c.evictions.Add(1)
		c.logger.Debug("Page evicted", "page", e.page, "flushed", flushed)
	}
	return nil
}

func (c *Cache) flush(ctx context.Context, e *entry) error {
	data, err := e.shard.MarshalBinary()
	if err != nil {
		return err
	}
	if err := c.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	if err := c.store.Put(ctx, PageName(e.page), data); err != nil {
		return err
	}
	e.disk = e.shard.Checksum()
	e.onDisk = true
	c.flushes.Add(1)
	c.bytesWritten.Add(int64(len(data)))
	return nil
}

// Commit writes every resident dirty page. Pages stay resident. It returns
// the number of pages written.
func (c *Cache) Commit(ctx context.Context) (int, error) {
	var dirty []*entry
	for el := c.evictList.Front(); el != nil; el = el.Next() {
		if e := el.Value.(*entry); e.dirty() {
			dirty = append(dirty, e)
		}
	}
	if len(dirty) == 0 {
		return 0, nil
	}
	slices.SortFunc(dirty, func(a, b *entry) int { return a.page - b.page })

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range dirty {
		if err := c.rc.AcquireFlush(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer c.rc.ReleaseFlush()
			return c.flush(gctx, e)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.logger.Debug("Pages flushed", "pages", len(dirty))
	return len(dirty), nil
}

// Each visits every known page in page number order, loading pages lazily.
func (c *Cache) Each(ctx context.Context, fn func(n int, s *Shard) bool) error {
	pages := make([]int, 0, len(c.known))
	for n := range c.known {
		pages = append(pages, n)
	}
	slices.Sort(pages)

	for _, n := range pages {
		s, err := c.Get(ctx, n, false)
		if err != nil {
			return err
		}
		if s != nil && !fn(n, s) {
			return nil
		}
	}
	return nil
}

// Reset forgets every page without writing anything.
func (c *Cache) Reset() {
	clear(c.items)
	c.evictList.Init()
	clear(c.known)
}
