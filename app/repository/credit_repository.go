package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
)

// ErrNoAvailableCredit is returned by Reserve when the owner holds no
// spendable credit for the requested plan.
var ErrNoAvailableCredit = errors.New("no available credit for plan")

// reserveAttempts bounds how many candidate rows Reserve races for before
// giving up under heavy contention.
const reserveAttempts = 3

// creditRepository implements the CreditRepository interface
type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository instance
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

// ListByUser retrieves all credits belonging to a user
func (r *creditRepository) ListByUser(userID uint) ([]models.PlanCredit, error) {
	var credits []models.PlanCredit
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&credits).Error
	return credits, err
}

// Reserve transitions the oldest available credit for the given owner and
// plan to pending. The transition is a conditional update keyed on the
// current status, so a credit can only ever be reserved once even under
// concurrent spend attempts.
func (r *creditRepository) Reserve(userID uint, planCode string) (*models.PlanCredit, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		var candidate models.PlanCredit
		err := r.db.
			Where("user_id = ? AND plan_code = ? AND status = ?", userID, planCode, models.CreditStatusAvailable).
			Order("created_at ASC").
			First(&candidate).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAvailableCredit
		}
		if err != nil {
			return nil, err
		}

		tx := r.db.Model(&models.PlanCredit{}).
			Where("id = ? AND status = ?", candidate.ID, models.CreditStatusAvailable).
			Updates(map[string]interface{}{"status": models.CreditStatusPending})
		if tx.Error != nil {
			return nil, tx.Error
		}
		if tx.RowsAffected == 0 {
			// Lost the race for this row; try the next candidate.
			continue
		}

		candidate.Status = models.CreditStatusPending
		return &candidate, nil
	}
	return nil, ErrNoAvailableCredit
}

// Commit finalizes a reserved credit as used and links the upgraded listing.
func (r *creditRepository) Commit(creditID, listingID uint) error {
	now := time.Now()
	tx := r.db.Model(&models.PlanCredit{}).
		Where("id = ? AND status = ?", creditID, models.CreditStatusPending).
		Updates(map[string]interface{}{
			"status":      models.CreditStatusUsed,
			"listing_id":  listingID,
			"consumed_at": &now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Release returns a reserved credit to the available pool after a failed
// upgrade attempt.
func (r *creditRepository) Release(creditID uint) error {
	tx := r.db.Model(&models.PlanCredit{}).
		Where("id = ? AND status = ?", creditID, models.CreditStatusPending).
		Updates(map[string]interface{}{"status": models.CreditStatusAvailable})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
