// Package catalog holds the current in-memory view of the registry.
package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/db"
)

const refreshKey = "gifts"

// Snapshot is one fetch of the registry, partitioned by claim status
type Snapshot struct {
	All       []model.Gift
	Unclaimed []model.Gift
	FetchedAt time.Time

	generation uint64
}

// Catalog fetches the registry and keeps the latest snapshot
type Catalog struct {
	lister db.GiftLister
	logger *zap.Logger
	now    func() time.Time

	group  singleflight.Group
	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	current *Snapshot
	issued  uint64
}

// New creates a catalog over lister. Close cancels any fetch still in flight.
func New(lister db.GiftLister, logger *zap.Logger) *Catalog {
	base, cancel := context.WithCancel(context.Background())
	return &Catalog{
		lister: lister,
		logger: logger,
		now:    time.Now,
		base:   base,
		cancel: cancel,
	}
}

// Close cancels in-flight fetches
func (c *Catalog) Close() {
	c.cancel()
}

// Refresh re-fetches the registry. Concurrent callers share one fetch.
// The result is installed only if ctx is still live and nothing newer has
// been installed meanwhile; a cancelled caller never changes the snapshot.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	ch := c.group.DoChan(refreshKey, func() (interface{}, error) {
		return c.fetch()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.install(res.Val.(*Snapshot)), nil
	}
}

// Current returns the installed snapshot, or nil before the first refresh
func (c *Catalog) Current() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// FindByID looks a gift up in the installed snapshot
func (c *Catalog) FindByID(id string) (model.Gift, bool) {
	snap := c.Current()
	if snap == nil {
		return model.Gift{}, false
	}
	return model.FindGift(snap.All, id)
}

func (c *Catalog) fetch() (*Snapshot, error) {
	c.mu.Lock()
	c.issued++
	generation := c.issued
	c.mu.Unlock()

	gifts, err := c.lister.ListGifts(c.base)
	if err != nil {
		c.logger.Error("Failed to refresh catalog", zap.Uint64("generation", generation), zap.Error(err))
		return nil, err
	}

	snap := &Snapshot{
		All:        gifts,
		Unclaimed:  model.Unclaimed(gifts),
		FetchedAt:  c.now(),
		generation: generation,
	}

	c.logger.Debug("Catalog refreshed",
		zap.Uint64("generation", generation),
		zap.Int("gifts", len(snap.All)),
		zap.Int("unclaimed", len(snap.Unclaimed)),
	)

	return snap, nil
}

// install keeps the newest generation and returns whichever is current
func (c *Catalog) install(snap *Snapshot) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || snap.generation > c.current.generation {
		c.current = snap
	}
	return c.current
}
