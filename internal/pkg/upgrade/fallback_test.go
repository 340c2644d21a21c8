package upgrade

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

type fakeListings struct {
	repository.ListingRepository

	listing *models.Listing

	appliedLockVersion int
	appliedFields      map[string]interface{}
	applyErr           error
}

func (f *fakeListings) GetByID(id uint) (*models.Listing, error) {
	if f.listing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.listing, nil
}

func (f *fakeListings) ApplyUpgrade(id uint, lockVersion int, fields map[string]interface{}) (*models.Listing, error) {
	f.appliedLockVersion = lockVersion
	f.appliedFields = fields
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	updated := *f.listing
	updated.Status = fields["status"].(string)
	updated.PlanCanonical = fields["plan_canonical"].(string)
	return &updated, nil
}

type fakeUsers struct {
	repository.UserRepository

	user *models.User
}

func (f *fakeUsers) GetByID(id uint) (*models.User, error) {
	if f.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

type emptyPlanSource struct{}

func (emptyPlanSource) GetByCode(code string) (*models.Plan, error) {
	return nil, gorm.ErrRecordNotFound
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFallback(listings *fakeListings, users *fakeUsers) *FallbackStrategy {
	catalog := plans.NewCatalogWithoutCache(emptyPlanSource{})
	return NewFallbackStrategy(listings, users, catalog).WithClock(func() time.Time { return testNow })
}

func TestFallbackUpgrade_Success(t *testing.T) {
	listings := &fakeListings{listing: &models.Listing{
		ID:          7,
		UserID:      3,
		Status:      models.ListingStatusDraft,
		LockVersion: 4,
	}}
	users := &fakeUsers{user: &models.User{Phone: "612 345 678"}}
	s := newFallback(listings, users)

	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "Verificado"})

	require.True(t, res.OK)
	assert.Equal(t, 4, listings.appliedLockVersion)

	fields := listings.appliedFields
	assert.Equal(t, "Verificado", fields["plan_code"])
	assert.Equal(t, "premium", fields["plan_canonical"])
	assert.Equal(t, models.ListingStatusActive, fields["status"])
	assert.Equal(t, "34612345678", fields["contact_phone"])
	assert.Equal(t, testNow.AddDate(0, 0, 60), fields["expires_at"])

	methods := fields["contact_methods"].(models.StringSet)
	for _, m := range []string{models.ContactMethodChat, models.ContactMethodMessage, models.ContactMethodPhone} {
		assert.True(t, methods.Contains(m), "missing contact method %s", m)
	}
}

func TestFallbackUpgrade_ListingContactPreferred(t *testing.T) {
	listingPhone := "+34 699 000 001"
	listings := &fakeListings{listing: &models.Listing{ID: 7, UserID: 3, ContactPhone: &listingPhone}}
	users := &fakeUsers{user: &models.User{Phone: "612345678", StorePhone: "911111111"}}
	s := newFallback(listings, users)

	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium"})
	require.True(t, res.OK)
	assert.Equal(t, "34699000001", listings.appliedFields["contact_phone"])
}

func TestFallbackUpgrade_StoreFallbackWhenProfileUnusable(t *testing.T) {
	listings := &fakeListings{listing: &models.Listing{ID: 7, UserID: 3}}
	users := &fakeUsers{user: &models.User{Phone: "123", StorePhone: "0034 911 111 111"}}
	s := newFallback(listings, users)

	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium"})
	require.True(t, res.OK)
	assert.Equal(t, "34911111111", listings.appliedFields["contact_phone"])
}

func TestFallbackUpgrade_MissingContactChannelMutatesNothing(t *testing.T) {
	listings := &fakeListings{listing: &models.Listing{ID: 7, UserID: 3}}
	users := &fakeUsers{user: &models.User{Phone: "", StorePhone: "12"}}
	s := newFallback(listings, users)

	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium"})

	assert.False(t, res.OK)
	assert.Equal(t, ErrMissingContactChannel, res.Err)
	assert.Nil(t, listings.appliedFields, "no write may happen when contact resolution fails")
}

func TestFallbackUpgrade_ListingNotFound(t *testing.T) {
	s := newFallback(&fakeListings{}, &fakeUsers{user: &models.User{}})
	res := s.Upgrade(context.Background(), Request{ListingID: 99, PlanCode: "premium"})
	assert.Equal(t, ErrNotFound, res.Err)
}

func TestFallbackUpgrade_StaleLockVersion(t *testing.T) {
	listings := &fakeListings{
		listing:  &models.Listing{ID: 7, UserID: 3},
		applyErr: repository.ErrStaleListing,
	}
	users := &fakeUsers{user: &models.User{Phone: "612345678"}}
	s := newFallback(listings, users)

	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium"})
	assert.Equal(t, ErrUpdateFailed, res.Err)
}

func TestNextHighlightExpiry(t *testing.T) {
	open := testNow.Add(48 * time.Hour)
	lapsed := testNow.Add(-48 * time.Hour)

	tests := []struct {
		name    string
		current *time.Time
		days    int
		want    *time.Time
	}{
		{"no highlight days leaves window untouched", &open, 0, &open},
		{"fresh window starts from now", nil, 14, ptrTime(testNow.AddDate(0, 0, 14))},
		{"open window is extended", &open, 14, ptrTime(open.AddDate(0, 0, 14))},
		{"lapsed window restarts from now", &lapsed, 7, ptrTime(testNow.AddDate(0, 0, 7))},
	}
	for _, tt := range tests {
		got := nextHighlightExpiry(tt.current, tt.days, testNow)
		if tt.want == nil {
			assert.Nil(t, got, tt.name)
			continue
		}
		require.NotNil(t, got, tt.name)
		assert.Equal(t, *tt.want, *got, tt.name)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
