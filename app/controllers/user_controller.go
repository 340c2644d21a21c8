package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MiguelSanz/Anunzio/app/models"
	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/usercontext"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,min=5,max=200"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister creates a seller account. The password never leaves the
// server; callers authenticate later through the key issuance endpoint.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	if existing, err := users.GetByEmail(req.Email); err == nil && existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken"})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}
	if err := users.Create(user); err != nil {
		fiberlog.Errorf("user create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

type issueAPIKeyRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleIssueAPIKey exchanges account credentials for a fresh API key. Only
// the hash is stored, so the plaintext in the response is the one chance to
// record the key; issuing again invalidates the previous key.
func HandleIssueAPIKey(c *fiber.Ctx) error {
	var req issueAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	user, err := users.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_credentials"})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_disabled"})
	}

	key, err := user.GenerateAPIKey()
	if err != nil {
		fiberlog.Errorf("api key generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	if err := users.Update(user); err != nil {
		fiberlog.Errorf("api key save failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{"api_key": key})
}

// HandleMyCredits lists the authenticated seller's upgrade credits.
func HandleMyCredits(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	credits, err := repository.GetGlobalFactory().GetCreditRepository().ListByUser(userID)
	if err != nil {
		fiberlog.Errorf("credits for user %d failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(fiber.Map{"credits": credits})
}
