package upgrade

import (
	"context"
	"errors"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
)

// Orchestrator composes the two upgrade paths and the credit ledger into the
// top-level plan change operation.
type Orchestrator struct {
	remote   Strategy
	fallback Strategy
	listings repository.ListingRepository
	credits  repository.CreditRepository
}

// NewOrchestrator creates an upgrade orchestrator.
func NewOrchestrator(remote, fallback Strategy, listings repository.ListingRepository, credits repository.CreditRepository) *Orchestrator {
	return &Orchestrator{
		remote:   remote,
		fallback: fallback,
		listings: listings,
		credits:  credits,
	}
}

// UpgradePlan executes a plan change. It always resolves to a Result; no
// error or panic crosses this boundary.
//
// The primary (authorized remote) path runs first. The privileged fallback
// runs only when the primary failed, the caller permitted it, and the
// upgrade is not credit-funded; credits always require the authoritative
// primary path.
//
// Credit-funded upgrades reserve the credit before the remote call, commit
// it on success and release it on failure, so a credit is spent exactly
// once and only for an upgrade that actually happened.
func (o *Orchestrator) UpgradePlan(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			fiberlog.Errorf("upgrade of listing %d panicked: %v", req.ListingID, r)
			res = Failure(ErrUpdateFailed)
		}
	}()

	var credit *models.PlanCredit
	if req.UseCredit {
		listing, err := o.listings.GetByID(req.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Failure(ErrNotFound)
			}
			fiberlog.Errorf("upgrade: loading listing %d failed: %v", req.ListingID, err)
			return Failure(ErrUpdateFailed)
		}

		canonical := plans.CanonicalOrFree(req.PlanCode)
		credit, err = o.credits.Reserve(listing.UserID, string(canonical))
		if err != nil {
			if errors.Is(err, repository.ErrNoAvailableCredit) {
				return Failure(ErrCreditUnavailable)
			}
			fiberlog.Errorf("upgrade: reserving credit for user %d failed: %v", listing.UserID, err)
			return Failure(ErrUpdateFailed)
		}
	}

	res = o.remote.Upgrade(ctx, req)
	if res.OK {
		if credit != nil {
			if err := o.credits.Commit(credit.ID, req.ListingID); err != nil {
				// The upgrade itself succeeded; an unlinkable credit is an
				// accounting followup, not a failed upgrade.
				fiberlog.Errorf("upgrade: committing credit %d failed: %v", credit.ID, err)
			}
		}
		return res
	}

	if credit != nil {
		if err := o.credits.Release(credit.ID); err != nil {
			fiberlog.Errorf("upgrade: releasing credit %d failed: %v", credit.ID, err)
		}
		return res
	}

	if !req.AllowFallback || o.fallback == nil {
		return res
	}
	return o.fallback.Upgrade(ctx, req)
}
