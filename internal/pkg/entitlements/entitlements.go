package entitlements

import (
	"time"

	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
)

// MaxVisiblePhotos is the global hard ceiling on visible photos, applied on
// top of whatever the catalog configures.
const MaxVisiblePhotos = 12

// UnbadgedTier is the tier that is contact-gated but excluded from paid
// display treatment. This intentionally differs from "is this a priced
// tier": the catalog prices the mid tier, yet listings on it do not get the
// paid badge. Kept as its own configurable rule rather than derived from
// catalog pricing.
var UnbadgedTier = plans.PlanBasic

// IsActive reports whether an entitlement window is currently open. A nil
// expiry means the entitlement is perpetual; otherwise the expiry must be
// strictly in the future.
func IsActive(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return expiresAt.After(now)
}

// HasPaidEntitlement reports whether a listing qualifies for paid display
// treatment: its window is active and its tier is not the unbadged one.
func HasPaidEntitlement(plan plans.Plan, expiresAt *time.Time, now time.Time) bool {
	if !IsActive(expiresAt, now) {
		return false
	}
	if plan == plans.PlanFree || plan == UnbadgedTier {
		return false
	}
	return true
}

// IsVerifiedTierActive reports whether the listing is on the top verified
// tier with an open window.
func IsVerifiedTierActive(plan plans.Plan, expiresAt *time.Time, now time.Time) bool {
	return IsActive(expiresAt, now) && plan == plans.PlanPremium
}

// VisiblePhotoCap clamps a catalog photo maximum to the global ceiling.
func VisiblePhotoCap(maxPhotos int) int {
	if maxPhotos < 0 {
		return 0
	}
	if maxPhotos > MaxVisiblePhotos {
		return MaxVisiblePhotos
	}
	return maxPhotos
}
