package db

import (
	"context"

	"github.com/jakechorley/gift-registry/pkg/core/model"
)

// GiftLister reads the full registry
type GiftLister interface {
	ListGifts(ctx context.Context) ([]model.Gift, error)
}

// GiftStore defines the registry read/update contract.
// The sheets-backed db.DB, postgres.DB and the HTTP registryclient implement it.
type GiftStore interface {
	GiftLister
	// UpdateGift writes the fields whose names match a registry column.
	// Unknown names are ignored unless none match.
	UpdateGift(ctx context.Context, id string, fields map[string]string) error
}
