// Package claimcache keeps the device-local list of gifts this user has claimed.
//
// The cache is never authoritative: every read is cross-checked against the
// registry and ids the registry no longer shows as claimed are dropped.
// Storage failures and corrupt values degrade to an empty cache.
package claimcache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/db"
)

// Persisted keys
const (
	KeyUserName      = "giftRegistryUserName"
	KeyClaimedIDs    = "claimedGiftIds"
	KeyLegacyClaimed = "claimedGifts"
)

// KV is the device-local string store
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Cache records claims made from this device
type Cache struct {
	kv     KV
	lister db.GiftLister
	logger *zap.Logger
}

// New creates a cache over kv. lister is used by Reconcile when no snapshot is given.
func New(kv KV, lister db.GiftLister, logger *zap.Logger) *Cache {
	return &Cache{
		kv:     kv,
		lister: lister,
		logger: logger,
	}
}

// MigrateIfNeeded converts the legacy list of gift snapshots into the id list
// and deletes the legacy key. Running it again is a no-op.
func (c *Cache) MigrateIfNeeded() {
	raw, ok, err := c.kv.Get(KeyLegacyClaimed)
	if err != nil {
		c.logger.Warn("Failed to read legacy claims", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var snapshots []model.Gift
	if err := json.Unmarshal([]byte(raw), &snapshots); err != nil {
		c.logger.Warn("Discarding corrupt legacy claims", zap.Error(err))
		c.delete(KeyLegacyClaimed)
		return
	}

	ids := c.loadIDs()
	for _, g := range snapshots {
		if g.ID != "" && !slices.Contains(ids, g.ID) {
			ids = append(ids, g.ID)
		}
	}

	if len(ids) > 0 {
		if err := c.saveIDs(ids); err != nil {
			// Keep the legacy entry so the next session can retry
			c.logger.Warn("Failed to migrate legacy claims", zap.Error(err))
			return
		}
	}

	c.delete(KeyLegacyClaimed)
	c.logger.Info("Migrated legacy claims", zap.Int("count", len(snapshots)))
}

// Reconcile resolves the stored ids against gifts, fetching the registry
// when gifts is nil. Ids that are missing or no longer claimed are pruned.
// The still-claimed gifts are returned in storage order.
func (c *Cache) Reconcile(ctx context.Context, gifts []model.Gift) ([]model.Gift, error) {
	ids := c.loadIDs()
	if len(ids) == 0 {
		return []model.Gift{}, nil
	}

	if gifts == nil {
		fetched, err := c.lister.ListGifts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load gifts for claim cache: %w", err)
		}
		gifts = fetched
	}

	claimed := make([]model.Gift, 0, len(ids))
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		g, ok := model.FindGift(gifts, id)
		if !ok || !g.IsClaimed() {
			c.logger.Debug("Dropping claim no longer held", zap.String("id", id), zap.Bool("found", ok))
			continue
		}
		claimed = append(claimed, g)
		kept = append(kept, id)
	}

	if len(kept) < len(ids) {
		if len(kept) == 0 {
			c.delete(KeyClaimedIDs)
		} else if err := c.saveIDs(kept); err != nil {
			c.logger.Warn("Failed to persist pruned claims", zap.Error(err))
		}
	}

	return claimed, nil
}

// Record adds id to the claimed list and remembers name for pre-fill.
func (c *Cache) Record(id, name string) {
	ids := c.loadIDs()
	if !slices.Contains(ids, id) {
		ids = append(ids, id)
		if err := c.saveIDs(ids); err != nil {
			c.logger.Warn("Failed to record claim", zap.String("id", id), zap.Error(err))
		}
	}

	if name = strings.TrimSpace(name); name != "" {
		if err := c.kv.Set(KeyUserName, name); err != nil {
			c.logger.Warn("Failed to save claimant name", zap.Error(err))
		}
	}
}

// LastUsedName returns the name from the last claim, or ""
func (c *Cache) LastUsedName() string {
	name, _, err := c.kv.Get(KeyUserName)
	if err != nil {
		c.logger.Warn("Failed to read claimant name", zap.Error(err))
		return ""
	}
	return name
}

// ClaimedIDs returns the stored ids without checking them against the registry
func (c *Cache) ClaimedIDs() []string {
	return c.loadIDs()
}

// loadIDs reads the id list; absent or corrupt values read as empty
func (c *Cache) loadIDs() []string {
	raw, ok, err := c.kv.Get(KeyClaimedIDs)
	if err != nil {
		c.logger.Warn("Failed to read claimed ids", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	ids, err := parseIDs(raw)
	if err != nil {
		c.logger.Warn("Ignoring corrupt claimed ids", zap.Error(err))
		return nil
	}
	return ids
}

func (c *Cache) saveIDs(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode claimed ids: %w", err)
	}
	return c.kv.Set(KeyClaimedIDs, string(data))
}

func (c *Cache) delete(key string) {
	if err := c.kv.Delete(key); err != nil {
		c.logger.Warn("Failed to delete cache key", zap.String("key", key), zap.Error(err))
	}
}

// parseIDs accepts a JSON array of strings or numbers
func parseIDs(raw string) ([]string, error) {
	var values []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				ids = append(ids, s)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return nil, fmt.Errorf("claimed id %s is not a string or number", string(v))
		}
		ids = append(ids, n.String())
	}
	return ids, nil
}
