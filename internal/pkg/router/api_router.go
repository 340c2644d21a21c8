package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/MiguelSanz/Anunzio/app/controllers"
	"github.com/MiguelSanz/Anunzio/internal/pkg/constants"
	"github.com/MiguelSanz/Anunzio/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Public read surface
	api.Get("/plans", controllers.HandleListPlans)
	api.Get(constants.ListingsRoute, controllers.HandleListFeed)
	api.Post(constants.ListingsRoute+"/batch", controllers.HandleGetListingsBatch)
	api.Get(constants.ListingsRoute+"/:slug", controllers.HandleGetListing)

	// Account provisioning
	api.Post("/register", controllers.HandleRegister)
	api.Post("/keys", controllers.HandleIssueAPIKey)

	// Seller surface, API-key authenticated
	auth := api.Group("/", middleware.APIKeyAuthMiddleware())
	auth.Get("/me/listings", controllers.HandleMyListings)
	auth.Get("/me/credits", controllers.HandleMyCredits)
	auth.Post(constants.ListingsRoute, controllers.HandleCreateListing)
	auth.Post(constants.ListingsRoute+"/:id/publish", controllers.HandlePublishListing)
	auth.Post(constants.ListingsRoute+"/:id/sold-toggle", controllers.HandleToggleSold)
	auth.Post(constants.ListingsRoute+"/:id/archive", controllers.HandleArchiveListing)
	auth.Delete(constants.ListingsRoute+"/:id", controllers.HandleDeleteListing)
	auth.Post(constants.ListingsRoute+"/:id/price-reduction", controllers.HandleReducePrice)
	auth.Post(constants.ListingsRoute+"/:id/upgrade", controllers.HandleUpgradeListing)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
