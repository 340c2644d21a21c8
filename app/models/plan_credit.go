package models

import "time"

// Credit status values. A credit is minted by an external grant process and
// consumed at most once; "pending" marks an in-flight reservation while the
// upgrade call is running.
const (
	CreditStatusAvailable = "available"
	CreditStatusUsed      = "used"
	CreditStatusPending   = "pending"
	CreditStatusExpired   = "expired"
	CreditStatusCancelled = "cancelled"
)

// PlanCredit is a pre-purchased, single-use right to upgrade one listing to
// a given plan without a new payment.
type PlanCredit struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanCode   string     `gorm:"type:varchar(50);index;not null" json:"plan_code"`
	Status     string     `gorm:"type:varchar(50);default:'available';index" json:"status"`
	ListingID  *uint      `gorm:"index" json:"listing_id"`
	ConsumedAt *time.Time `gorm:"type:datetime" json:"consumed_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsAvailable reports whether the credit can still be reserved.
func (c *PlanCredit) IsAvailable() bool {
	return c.Status == CreditStatusAvailable
}
