package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
)

type fakeListingStore struct {
	repository.ListingRepository

	listing *models.Listing

	statusFrom   []string
	statusTo     string
	statusResult bool

	fieldsFrom []string
	gotFields  map[string]interface{}
	fieldsOK   bool

	deleted bool
}

func (f *fakeListingStore) GetByID(id uint) (*models.Listing, error) {
	if f.listing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.listing, nil
}

func (f *fakeListingStore) UpdateStatusIf(id uint, from []string, to string) (bool, error) {
	f.statusFrom = from
	f.statusTo = to
	return f.statusResult, nil
}

func (f *fakeListingStore) UpdateFieldsIfStatus(id uint, from []string, fields map[string]interface{}) (bool, error) {
	f.fieldsFrom = from
	f.gotFields = fields
	return f.fieldsOK, nil
}

func (f *fakeListingStore) MarkDeleted(id uint) (bool, error) {
	f.deleted = true
	return true, nil
}

type fakePlanSource struct{}

func (fakePlanSource) GetByCode(code string) (*models.Plan, error) {
	return nil, gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	dispatched []uint
}

func (r *recordingNotifier) Dispatch(listingID uint) {
	r.dispatched = append(r.dispatched, listingID)
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newTestService(store *fakeListingStore, notifier Notifier) *Service {
	catalog := plans.NewCatalogWithoutCache(fakePlanSource{})
	return NewService(store, catalog, notifier).WithClock(fixedClock())
}

func TestPublish_StampsExpiryFromPlanDuration(t *testing.T) {
	store := &fakeListingStore{
		listing:  &models.Listing{ID: 1, Status: models.ListingStatusDraft, PlanCode: "premium"},
		fieldsOK: true,
	}
	svc := newTestService(store, nil)

	require.True(t, svc.Publish(context.Background(), 1))
	assert.Equal(t, []string{models.ListingStatusDraft}, store.fieldsFrom)
	assert.Equal(t, models.ListingStatusActive, store.gotFields["status"])
	assert.Equal(t, "premium", store.gotFields["plan_canonical"])

	wantExpiry := fixedClock()().AddDate(0, 0, 60)
	assert.Equal(t, wantExpiry, store.gotFields["expires_at"])
}

func TestPublish_RejectedWhenNotDraft(t *testing.T) {
	store := &fakeListingStore{
		listing:  &models.Listing{ID: 1, Status: models.ListingStatusActive},
		fieldsOK: false,
	}
	svc := newTestService(store, nil)

	assert.False(t, svc.Publish(context.Background(), 1))
}

func TestPublish_MissingListing(t *testing.T) {
	svc := newTestService(&fakeListingStore{}, nil)
	assert.False(t, svc.Publish(context.Background(), 99))
}

func TestToggleSold_ActiveToSold(t *testing.T) {
	store := &fakeListingStore{
		listing:      &models.Listing{ID: 1, Status: models.ListingStatusActive},
		statusResult: true,
	}
	svc := newTestService(store, nil)

	require.True(t, svc.ToggleSold(context.Background(), 1))
	assert.Equal(t, []string{models.ListingStatusActive}, store.statusFrom)
	assert.Equal(t, models.ListingStatusSold, store.statusTo)
}

func TestToggleSold_SoldBackToActive(t *testing.T) {
	store := &fakeListingStore{
		listing:      &models.Listing{ID: 1, Status: "SOLD"},
		statusResult: true,
	}
	svc := newTestService(store, nil)

	require.True(t, svc.ToggleSold(context.Background(), 1))
	assert.Equal(t, models.ListingStatusActive, store.statusTo)
}

func TestToggleSold_OtherStatesRefuse(t *testing.T) {
	for _, status := range []string{models.ListingStatusDraft, models.ListingStatusArchived, models.ListingStatusDeleted} {
		store := &fakeListingStore{listing: &models.Listing{ID: 1, Status: status}}
		svc := newTestService(store, nil)
		assert.False(t, svc.ToggleSold(context.Background(), 1), "status %s", status)
	}
}

func TestArchive(t *testing.T) {
	store := &fakeListingStore{statusResult: true}
	svc := newTestService(store, nil)

	require.True(t, svc.Archive(context.Background(), 1))
	assert.Equal(t, []string{models.ListingStatusActive}, store.statusFrom)
	assert.Equal(t, models.ListingStatusArchived, store.statusTo)
}

func TestDelete_DispatchesCleanup(t *testing.T) {
	store := &fakeListingStore{}
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	require.True(t, svc.Delete(context.Background(), 5))
	assert.True(t, store.deleted)
	assert.Equal(t, []uint{5}, notifier.dispatched)
}

func TestDelete_NoNotifierConfigured(t *testing.T) {
	store := &fakeListingStore{}
	svc := newTestService(store, nil)

	assert.True(t, svc.Delete(context.Background(), 5))
}
