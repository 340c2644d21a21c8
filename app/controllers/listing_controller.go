package controllers

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/entitlements"
	"github.com/MiguelSanz/Anunzio/internal/pkg/metrics/counter"
	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
	"github.com/MiguelSanz/Anunzio/internal/pkg/upgrade"
	"github.com/MiguelSanz/Anunzio/internal/pkg/usercontext"
)

var validate = validator.New()

const defaultFeedLimit = 24
const maxFeedLimit = 100

// listingView is the API response shape for a listing, enriched with the
// capabilities its plan currently entitles it to.
type listingView struct {
	*models.Listing
	IsActive           bool `json:"is_active"`
	HasPaidEntitlement bool `json:"has_paid_entitlement"`
	IsVerifiedTier     bool `json:"is_verified_tier"`
	VisiblePhotoCap    int  `json:"visible_photo_cap"`
}

func newListingView(c *fiber.Ctx, listing *models.Listing, now time.Time) listingView {
	plan := plans.CanonicalOrFree(listing.PlanCode)
	info := getCatalog().Lookup(c.Context(), listing.PlanCode)
	return listingView{
		Listing:            listing,
		IsActive:           entitlements.IsActive(listing.ExpiresAt, now),
		HasPaidEntitlement: entitlements.HasPaidEntitlement(plan, listing.ExpiresAt, now),
		IsVerifiedTier:     entitlements.IsVerifiedTierActive(plan, listing.ExpiresAt, now),
		VisiblePhotoCap:    entitlements.VisiblePhotoCap(info.MaxPhotos),
	}
}

// HandleListFeed returns the public browse feed. Deleted and derived-expired
// listings never appear here.
func HandleListFeed(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultFeedLimit)
	if limit <= 0 || limit > maxFeedLimit {
		limit = defaultFeedLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	now := time.Now()
	listings, err := repository.GetGlobalFactory().GetListingRepository().GetFeed(now, offset, limit)
	if err != nil {
		fiberlog.Errorf("feed query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	views := make([]listingView, 0, len(listings))
	for i := range listings {
		views = append(views, newListingView(c, &listings[i], now))
	}
	return c.JSON(fiber.Map{"listings": views})
}

// HandleGetListing returns a single listing by slug. Only soft-deleted
// listings are hidden here; an expired one stays individually retrievable.
func HandleGetListing(c *fiber.Ctx) error {
	slug := c.Params("slug")
	listing, err := repository.GetGlobalFactory().GetListingRepository().GetBySlug(slug)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	if err := counter.AddListingView(listing.ID); err != nil {
		fiberlog.Debugf("view counter for listing %d not recorded: %v", listing.ID, err)
	}
	return c.JSON(newListingView(c, listing, time.Now()))
}

type batchRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=100"`
}

// HandleGetListingsBatch returns a set of listings by ID. As a multi-item
// read it applies the full visibility rules: no deleted rows, no
// derived-expired rows.
func HandleGetListingsBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	now := time.Now()
	listings, err := repository.GetGlobalFactory().GetListingRepository().GetByIDs(req.IDs, now)
	if err != nil {
		fiberlog.Errorf("batch query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	views := make([]listingView, 0, len(listings))
	for i := range listings {
		views = append(views, newListingView(c, &listings[i], now))
	}
	return c.JSON(fiber.Map{"listings": views})
}

// HandleMyListings returns the authenticated seller's own listings,
// expired ones included.
func HandleMyListings(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	listings, err := repository.GetGlobalFactory().GetListingRepository().GetByUserID(userID, 0, 200)
	if err != nil {
		fiberlog.Errorf("listings for user %d failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	now := time.Now()
	views := make([]listingView, 0, len(listings))
	for i := range listings {
		views = append(views, newListingView(c, &listings[i], now))
	}
	return c.JSON(fiber.Map{"listings": views})
}

type createListingRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=255"`
	Description  string  `json:"description" validate:"max=5000"`
	Category     string  `json:"category" validate:"max=100"`
	City         string  `json:"city" validate:"max=100"`
	Price        int64   `json:"price" validate:"gte=0"`
	PlanCode     string  `json:"plan_code" validate:"max=100"`
	ContactPhone *string `json:"contact_phone"`
}

// HandleCreateListing creates a draft listing for the authenticated seller.
func HandleCreateListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	listing := &models.Listing{
		UserID:         usercontext.GetUserID(c),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		City:           req.City,
		Price:          req.Price,
		PlanCode:       req.PlanCode,
		PlanCanonical:  string(plans.CanonicalOrFree(req.PlanCode)),
		ContactPhone:   req.ContactPhone,
		ContactMethods: models.StringSet{}.Union(models.ContactMethodChat, models.ContactMethodMessage),
		Status:         models.ListingStatusDraft,
	}

	if err := repository.GetGlobalFactory().GetListingRepository().Create(listing); err != nil {
		fiberlog.Errorf("listing create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusCreated).JSON(newListingView(c, listing, time.Now()))
}

// requireOwnedListing loads the listing from the :id param and verifies the
// caller owns it (admins may act on any listing). A nil listing means the
// response has already been written.
func requireOwnedListing(c *fiber.Ctx) *models.Listing {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid listing id"})
		return nil
	}

	listing, err := repository.GetGlobalFactory().GetListingRepository().GetByID(uint(id))
	if err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		return nil
	}

	if listing.UserID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		return nil
	}
	return listing
}

// lifecycleResponse converts the boolean outcome of a lifecycle mutation
// into the generic success / try-again response.
func lifecycleResponse(c *fiber.Ctx, ok bool) error {
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Action could not be applied, please try again"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandlePublishListing moves a draft listing to active.
func HandlePublishListing(c *fiber.Ctx) error {
	listing := requireOwnedListing(c)
	if listing == nil {
		return nil
	}
	return lifecycleResponse(c, getLifecycleService().Publish(c.Context(), listing.ID))
}

// HandleToggleSold flips a listing between active and sold. The client is
// expected to have asked the seller for confirmation.
func HandleToggleSold(c *fiber.Ctx) error {
	listing := requireOwnedListing(c)
	if listing == nil {
		return nil
	}
	return lifecycleResponse(c, getLifecycleService().ToggleSold(c.Context(), listing.ID))
}

// HandleArchiveListing moves an active listing to archived.
func HandleArchiveListing(c *fiber.Ctx) error {
	listing := requireOwnedListing(c)
	if listing == nil {
		return nil
	}
	return lifecycleResponse(c, getLifecycleService().Archive(c.Context(), listing.ID))
}

// HandleDeleteListing soft-deletes a listing and fires media cleanup.
func HandleDeleteListing(c *fiber.Ctx) error {
	listing := requireOwnedListing(c)
	if listing == nil {
		return nil
	}
	return lifecycleResponse(c, getLifecycleService().Delete(c.Context(), listing.ID))
}

type reducePriceRequest struct {
	NewPrice int64 `json:"new_price" validate:"gt=0"`
}

// HandleReducePrice marks a listing down. The new price must undercut the
// current one; the original-price bookkeeping happens in the tracker.
func HandleReducePrice(c *fiber.Ctx) error {
	listing := requireOwnedListing(c)
	if listing == nil {
		return nil
	}

	var req reducePriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}
	if req.NewPrice >= listing.Price {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "new price must be lower than the current price"})
	}

	ok := getMarkdownTracker().ReduceListingPrice(listing.ID, req.NewPrice, listing.Price, listing.OriginalPrice)
	return lifecycleResponse(c, ok)
}

type upgradeListingRequest struct {
	PlanCode      string `json:"plan_code" validate:"required,max=100"`
	UseCredit     bool   `json:"use_credit"`
	AllowFallback bool   `json:"allow_fallback"`
}

// HandleUpgradeListing executes a plan change through the orchestrator.
func HandleUpgradeListing(c *fiber.Ctx) error {
	listing := requireOwnedListing(c)
	if listing == nil {
		return nil
	}

	var req upgradeListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	token, _ := c.Locals(usercontext.KeyBearerToken).(string)
	result := getOrchestrator().UpgradePlan(c.Context(), upgrade.Request{
		ListingID:     listing.ID,
		PlanCode:      req.PlanCode,
		UseCredit:     req.UseCredit,
		AllowFallback: req.AllowFallback,
		BearerToken:   token,
	})

	return c.Status(upgradeStatusCode(result)).JSON(result)
}

func upgradeStatusCode(result upgrade.Result) int {
	if result.OK {
		return fiber.StatusOK
	}
	switch result.Err {
	case upgrade.ErrNotFound:
		return fiber.StatusNotFound
	case upgrade.ErrNotAuthenticated:
		return fiber.StatusUnauthorized
	case upgrade.ErrUpgradeDisabled:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusUnprocessableEntity
	}
}
