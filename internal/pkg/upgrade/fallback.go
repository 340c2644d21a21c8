package upgrade

import (
	"context"
	"errors"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/phone"
	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
)

// FallbackStrategy is the privileged upgrade path used when the billing API
// is unreachable or rejects the request. It mutates the listing directly:
// all entitlement fields are computed here and persisted as one guarded
// update, or not at all.
type FallbackStrategy struct {
	listings repository.ListingRepository
	users    repository.UserRepository
	catalog  *plans.Catalog
	now      func() time.Time
}

// NewFallbackStrategy creates the privileged fallback path.
func NewFallbackStrategy(listings repository.ListingRepository, users repository.UserRepository, catalog *plans.Catalog) *FallbackStrategy {
	return &FallbackStrategy{
		listings: listings,
		users:    users,
		catalog:  catalog,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Intended for testing.
func (s *FallbackStrategy) WithClock(now func() time.Time) *FallbackStrategy {
	s.now = now
	return s
}

// Upgrade executes the privileged path.
func (s *FallbackStrategy) Upgrade(ctx context.Context, req Request) Result {
	listing, err := s.listings.GetByID(req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Failure(ErrNotFound)
		}
		fiberlog.Errorf("fallback upgrade: loading listing %d failed: %v", req.ListingID, err)
		return Failure(ErrUpdateFailed)
	}

	owner, err := s.users.GetByID(listing.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Failure(ErrNotFound)
		}
		fiberlog.Errorf("fallback upgrade: loading owner %d failed: %v", listing.UserID, err)
		return Failure(ErrUpdateFailed)
	}

	info := s.catalog.Lookup(ctx, req.PlanCode)
	now := s.now()

	nextExpiry := now.AddDate(0, 0, info.DurationDays)
	nextHighlight := nextHighlightExpiry(listing.HighlightExpiresAt, info.HighlightDays, now)

	// The contact channel is resolved before anything is written. Granting a
	// contact-gated tier without a working contact channel would silently
	// under-deliver the purchased benefit, so this step is all-or-nothing.
	contact, ok := resolveContact(listing, owner)
	if !ok {
		return Failure(ErrMissingContactChannel)
	}

	methods := listing.ContactMethods.Union(
		models.ContactMethodChat,
		models.ContactMethodMessage,
		models.ContactMethodPhone,
	)

	fields := map[string]interface{}{
		"plan_code":            req.PlanCode,
		"plan_canonical":       string(plans.CanonicalOrFree(req.PlanCode)),
		"contact_phone":        contact,
		"contact_methods":      methods,
		"expires_at":           nextExpiry,
		"highlight_expires_at": nextHighlight,
		"status":               models.ListingStatusActive,
	}

	updated, err := s.listings.ApplyUpgrade(listing.ID, listing.LockVersion, fields)
	if err != nil {
		fiberlog.Errorf("fallback upgrade: persisting listing %d failed: %v", listing.ID, err)
		return Failure(ErrUpdateFailed)
	}
	return Success(updated)
}

// nextHighlightExpiry extends an open highlight window rather than
// resetting it: re-upgrading before the window lapses adds the plan's days
// on top of the remaining ones. Plans without highlight days leave the
// window untouched.
func nextHighlightExpiry(current *time.Time, highlightDays int, now time.Time) *time.Time {
	if highlightDays <= 0 {
		return current
	}
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	next := base.AddDate(0, 0, highlightDays)
	return &next
}

// resolveContact picks the first normalizable contact identifier: the
// listing's stored value, then the owner's profile number, then the store
// fallback.
func resolveContact(listing *models.Listing, owner *models.User) (string, bool) {
	candidates := make([]string, 0, 3)
	if listing.ContactPhone != nil {
		candidates = append(candidates, *listing.ContactPhone)
	}
	candidates = append(candidates, owner.Phone, owner.StorePhone)

	for _, raw := range candidates {
		if normalized, err := phone.NormalizeDefault(raw); err == nil {
			return normalized, true
		}
	}
	return "", false
}
