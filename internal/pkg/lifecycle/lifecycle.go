package lifecycle

import (
	"context"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
)

// Notifier is the media-cleanup hook invoked after a soft delete.
type Notifier interface {
	Dispatch(listingID uint)
}

// Service governs listing status transitions:
//
//	draft → active → {sold ⇄ active, archived, deleted}
//
// All mutations are conditional status updates, so a transition whose
// precondition no longer holds simply reports false and the seller retries
// manually. Expiry is mostly derived from the timestamp; the engine never
// schedules a transition to "expired".
type Service struct {
	listings repository.ListingRepository
	catalog  *plans.Catalog
	cleanup  Notifier
	now      func() time.Time
}

// NewService creates a lifecycle service.
func NewService(listings repository.ListingRepository, catalog *plans.Catalog, cleanup Notifier) *Service {
	return &Service{
		listings: listings,
		catalog:  catalog,
		cleanup:  cleanup,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Intended for testing.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Publish moves a draft listing to active and stamps its expiry from the
// plan's configured duration.
func (s *Service) Publish(ctx context.Context, id uint) bool {
	listing, err := s.listings.GetByID(id)
	if err != nil {
		fiberlog.Warnf("publish: listing %d not loadable: %v", id, err)
		return false
	}

	info := s.catalog.Lookup(ctx, listing.PlanCode)
	now := s.now()

	fields := map[string]interface{}{
		"status":         models.ListingStatusActive,
		"plan_canonical": string(info.Code),
	}
	if info.DurationDays > 0 {
		fields["expires_at"] = now.AddDate(0, 0, info.DurationDays)
	}

	ok, err := s.listings.UpdateFieldsIfStatus(id, []string{models.ListingStatusDraft}, fields)
	if err != nil {
		fiberlog.Errorf("publish: listing %d update failed: %v", id, err)
		return false
	}
	return ok
}

// ToggleSold flips a listing between active and sold. Both directions are
// the same seller action; the call site is expected to have confirmed the
// action interactively.
func (s *Service) ToggleSold(ctx context.Context, id uint) bool {
	_ = ctx
	listing, err := s.listings.GetByID(id)
	if err != nil {
		fiberlog.Warnf("toggle sold: listing %d not loadable: %v", id, err)
		return false
	}

	var from, to string
	switch {
	case listing.StatusEquals(models.ListingStatusActive):
		from, to = models.ListingStatusActive, models.ListingStatusSold
	case listing.StatusEquals(models.ListingStatusSold):
		from, to = models.ListingStatusSold, models.ListingStatusActive
	default:
		return false
	}

	ok, err := s.listings.UpdateStatusIf(id, []string{from}, to)
	if err != nil {
		fiberlog.Errorf("toggle sold: listing %d update failed: %v", id, err)
		return false
	}
	return ok
}

// Archive moves an active listing out of circulation. There is no guided
// unarchive; reversal is a direct status-field update.
func (s *Service) Archive(ctx context.Context, id uint) bool {
	_ = ctx
	ok, err := s.listings.UpdateStatusIf(id, []string{models.ListingStatusActive}, models.ListingStatusArchived)
	if err != nil {
		fiberlog.Errorf("archive: listing %d update failed: %v", id, err)
		return false
	}
	return ok
}

// Delete soft-deletes a listing from any state. The row is retained but
// disappears from every public read. Media cleanup is fired best-effort and
// its outcome never affects the delete.
func (s *Service) Delete(ctx context.Context, id uint) bool {
	_ = ctx
	ok, err := s.listings.MarkDeleted(id)
	if err != nil {
		fiberlog.Errorf("delete: listing %d update failed: %v", id, err)
		return false
	}
	if ok && s.cleanup != nil {
		s.cleanup.Dispatch(id)
	}
	return ok
}
