package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
)

// ErrStaleListing is returned when a guarded update loses the lock-version
// compare-and-swap to a concurrent writer.
var ErrStaleListing = errors.New("listing was modified concurrently")

// listingRepository implements the ListingRepository interface
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// notDeleted hides soft-deleted rows. Status values are legacy strings with
// mixed casing, so the comparison must be case-insensitive.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(status) <> ?", models.ListingStatusDeleted)
}

// notExpired additionally hides rows whose derived expiry has passed: a
// literal expired status, or a set expiry timestamp at or before now.
func notExpired(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("LOWER(status) <> ?", models.ListingStatusExpired).
		Where("expires_at IS NULL OR expires_at > ?", now)
}

// Create creates a new listing in the database
func (r *listingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetByID retrieves a listing by its ID. Only soft-deleted rows are hidden;
// an expired listing stays reachable so its owner can view and edit it.
func (r *listingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := notDeleted(r.db).Preload("User").First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetBySlug retrieves a listing by its public slug
func (r *listingRepository) GetBySlug(slug string) (*models.Listing, error) {
	var listing models.Listing
	err := notDeleted(r.db).Preload("User").Where("slug = ?", slug).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetByIDs retrieves a batch of listings by ID set, applying the multi-item
// visibility rules (no deleted, no derived-expired rows).
func (r *listingRepository) GetByIDs(ids []uint, now time.Time) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var listings []models.Listing
	err := notExpired(notDeleted(r.db), now).
		Where("id IN ?", ids).Find(&listings).Error
	return listings, err
}

// GetFeed retrieves the public browse feed with pagination
func (r *listingRepository) GetFeed(now time.Time, offset, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := notExpired(notDeleted(r.db), now).
		Where("LOWER(status) = ?", models.ListingStatusActive).
		Order("highlight_expires_at > NOW() DESC, created_at DESC").
		Offset(offset).Limit(limit).Find(&listings).Error
	return listings, err
}

// GetByUserID retrieves listings belonging to a specific seller with
// pagination. Expired listings remain visible to their owner.
func (r *listingRepository) GetByUserID(userID uint, offset, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := notDeleted(r.db).Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&listings).Error
	return listings, err
}

// Update updates an existing listing in the database
func (r *listingRepository) Update(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

// UpdateFields applies a partial update and returns the full updated record.
func (r *listingRepository) UpdateFields(id uint, fields map[string]interface{}) (*models.Listing, error) {
	if err := r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateStatusIf transitions the status only when the current status is one
// of the expected values. Returns false when the guard did not match, which
// callers surface as a generic "try again" condition.
func (r *listingRepository) UpdateStatusIf(id uint, from []string, to string) (bool, error) {
	tx := r.db.Model(&models.Listing{}).
		Where("id = ? AND LOWER(status) IN ?", id, from).
		Updates(map[string]interface{}{"status": to})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UpdateFieldsIfStatus applies a partial update only when the current status
// is one of the expected values.
func (r *listingRepository) UpdateFieldsIfStatus(id uint, from []string, fields map[string]interface{}) (bool, error) {
	tx := r.db.Model(&models.Listing{}).
		Where("id = ? AND LOWER(status) IN ?", id, from).
		Updates(fields)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkDeleted soft-deletes a listing from any state. The row is retained and
// merely hidden from public reads.
func (r *listingRepository) MarkDeleted(id uint) (bool, error) {
	tx := r.db.Model(&models.Listing{}).
		Where("id = ? AND LOWER(status) <> ?", id, models.ListingStatusDeleted).
		Updates(map[string]interface{}{"status": models.ListingStatusDeleted})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ApplyUpgrade persists an upgrade mutation guarded by the listing's lock
// version. The swap fails with ErrStaleListing when a concurrent upgrade got
// there first, so two simultaneous upgrades can never interleave their
// writes.
func (r *listingRepository) ApplyUpgrade(id uint, lockVersion int, fields map[string]interface{}) (*models.Listing, error) {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["lock_version"] = gorm.Expr("lock_version + ?", 1)

	tx := r.db.Model(&models.Listing{}).
		Where("id = ? AND lock_version = ?", id, lockVersion).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStaleListing
	}

	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// CountByUserID returns the number of non-deleted listings for a seller
func (r *listingRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := notDeleted(r.db.Model(&models.Listing{})).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
