package upgrade

import (
	"context"
	"fmt"

	"github.com/MiguelSanz/Anunzio/app/models"
)

// Error codes returned in Result.Err. The orchestrator never lets a raw
// error or panic escape to its caller; every failure maps onto one of these.
const (
	ErrNotAuthenticated      = "not_authenticated"
	ErrNetwork               = "network_error"
	ErrNotFound              = "not_found"
	ErrMissingContactChannel = "missing_contact_channel"
	ErrUpdateFailed          = "update_failed"
	ErrUpgradeDisabled       = "upgrade_disabled"
	ErrCreditUnavailable     = "credit_unavailable"
)

// FailedStatusError builds the error code for a primary endpoint that
// answered with a failure status.
func FailedStatusError(status int) string {
	return fmt.Sprintf("upgrade_failed_%d", status)
}

// Request describes one plan upgrade. Credentials are passed explicitly;
// the engine never reaches into ambient session state.
type Request struct {
	ListingID     uint
	PlanCode      string
	UseCredit     bool
	AllowFallback bool
	BearerToken   string
}

// Result is the shape both upgrade paths resolve to, so callers are
// agnostic to which path executed.
type Result struct {
	OK      bool            `json:"ok"`
	Listing *models.Listing `json:"listing,omitempty"`
	Err     string          `json:"error,omitempty"`
}

// Success wraps an upgraded listing.
func Success(listing *models.Listing) Result {
	return Result{OK: true, Listing: listing}
}

// Failure wraps an error code.
func Failure(code string) Result {
	return Result{OK: false, Err: code}
}

// Strategy executes one upgrade path. Implementations must resolve to a
// Result, never panic or return a raw error.
type Strategy interface {
	Upgrade(ctx context.Context, req Request) Result
}
