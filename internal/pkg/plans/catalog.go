package plans

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/internal/pkg/cache"
)

// PlanInfo is the catalog shape consumed by the engine: what a plan entitles
// a listing to, independent of how the row is stored.
type PlanInfo struct {
	Code                  Plan  `json:"code"`
	Price                 int64 `json:"price"`
	DurationDays          int   `json:"duration_days"`
	HighlightDays         int   `json:"highlight_days"`
	MaxPhotos             int   `json:"max_photos"`
	ContactChannelEnabled bool  `json:"contact_channel_enabled"`
}

// Conservative fallback values applied when the catalog has no row for a
// canonical code. Duration is deliberately generous so a catalog outage
// never shortens what a seller paid for.
const (
	defaultDurationDays         = 60
	defaultPremiumHighlightDays = 14
	defaultBasicHighlightDays   = 7
)

const catalogCacheTTL = 5 * time.Minute

// DefaultInfo returns the hardcoded fallback entitlements for a canonical
// code.
func DefaultInfo(p Plan) PlanInfo {
	switch p {
	case PlanPremium:
		return PlanInfo{
			Code:                  PlanPremium,
			DurationDays:          defaultDurationDays,
			HighlightDays:         defaultPremiumHighlightDays,
			MaxPhotos:             12,
			ContactChannelEnabled: true,
		}
	case PlanBasic:
		return PlanInfo{
			Code:                  PlanBasic,
			DurationDays:          defaultDurationDays,
			HighlightDays:         defaultBasicHighlightDays,
			MaxPhotos:             8,
			ContactChannelEnabled: true,
		}
	default:
		return PlanInfo{
			Code:                  PlanFree,
			DurationDays:          defaultDurationDays,
			MaxPhotos:             3,
			ContactChannelEnabled: false,
		}
	}
}

// Source is the catalog storage contract consumed by the Catalog service.
type Source interface {
	GetByCode(code string) (*models.Plan, error)
}

// Catalog resolves canonical plan codes to their configured entitlements,
// with a cache in front of the plans table and DefaultInfo as the terminal
// fallback.
type Catalog struct {
	source   Source
	useCache bool
}

// NewCatalog creates a catalog service over the given source.
func NewCatalog(source Source) *Catalog {
	return &Catalog{source: source, useCache: true}
}

// NewCatalogWithoutCache creates a catalog service that always hits the
// source. Used in tests.
func NewCatalogWithoutCache(source Source) *Catalog {
	return &Catalog{source: source}
}

// Lookup resolves a raw plan identifier to its effective PlanInfo. The raw
// value is canonicalized first; unresolvable values get lowest-tier
// entitlements. A catalog miss or storage failure falls back to DefaultInfo
// rather than surfacing an error, because every consumer treats the catalog
// as always answerable.
func (c *Catalog) Lookup(ctx context.Context, raw string) PlanInfo {
	_ = ctx
	code := CanonicalOrFree(raw)

	if c.useCache {
		if cached, err := cache.Get(cacheKey(code)); err == nil && cached != "" {
			var info PlanInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return info
			}
		}
	}

	row, err := c.source.GetByCode(string(code))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fiberlog.Warnf("plan catalog lookup for %s failed: %v", code, err)
		}
		return DefaultInfo(code)
	}

	info := PlanInfo{
		Code:                  code,
		Price:                 row.Price,
		DurationDays:          row.DurationDays,
		HighlightDays:         row.HighlightDays,
		MaxPhotos:             row.MaxPhotos,
		ContactChannelEnabled: row.ContactChannelEnabled,
	}

	if c.useCache {
		if b, err := json.Marshal(info); err == nil {
			if err := cache.Set(cacheKey(code), string(b), catalogCacheTTL); err != nil {
				fiberlog.Debugf("plan catalog cache write for %s failed: %v", code, err)
			}
		}
	}

	return info
}

func cacheKey(code Plan) string {
	return "plans:catalog:" + string(code)
}
