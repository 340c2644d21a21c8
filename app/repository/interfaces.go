package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
)

// UserRepository defines the interface for seller account database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	TouchAPIKeyUsage(id uint) error
}

// ListingRepository defines the interface for listing database operations.
// Read methods differ in which rows they hide: multi-item reads (feed,
// batch-by-ids) exclude soft-deleted rows and rows whose derived expiry has
// passed, while single-item reads exclude only soft-deleted rows so owners
// can still reach an expired listing.
type ListingRepository interface {
	Create(listing *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	GetBySlug(slug string) (*models.Listing, error)
	GetByIDs(ids []uint, now time.Time) ([]models.Listing, error)
	GetFeed(now time.Time, offset, limit int) ([]models.Listing, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Listing, error)
	Update(listing *models.Listing) error
	UpdateFields(id uint, fields map[string]interface{}) (*models.Listing, error)
	UpdateStatusIf(id uint, from []string, to string) (bool, error)
	UpdateFieldsIfStatus(id uint, from []string, fields map[string]interface{}) (bool, error)
	MarkDeleted(id uint) (bool, error)
	ApplyUpgrade(id uint, lockVersion int, fields map[string]interface{}) (*models.Listing, error)
	CountByUserID(userID uint) (int64, error)
}

// PlanRepository defines the read-only interface over the plan catalog table
type PlanRepository interface {
	GetByCode(code string) (*models.Plan, error)
	GetActive() ([]models.Plan, error)
}

// CreditRepository defines the interface for upgrade credit operations.
// Reserve/Commit/Release implement the single-use guarantee: every status
// transition is a conditional update so two callers can never spend the same
// credit.
type CreditRepository interface {
	ListByUser(userID uint) ([]models.PlanCredit, error)
	Reserve(userID uint, planCode string) (*models.PlanCredit, error)
	Commit(creditID, listingID uint) error
	Release(creditID uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Listing ListingRepository
	Plan    PlanRepository
	Credit  CreditRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Listing: NewListingRepository(db),
		Plan:    NewPlanRepository(db),
		Credit:  NewCreditRepository(db),
	}
}
