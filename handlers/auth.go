package handlers

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yourusername/vista/middleware"
	"github.com/yourusername/vista/models"
)

type AuthHandler struct {
	deviceRepo models.DeviceRepositoryInterface
	validator  *validator.Validate
}

func NewAuthHandler(deviceRepo models.DeviceRepositoryInterface) *AuthHandler {
	return &AuthHandler{deviceRepo: deviceRepo, validator: validator.New()}
}

// Register creates a device identity and returns its ID plus a bearer token.
// The device keeps the secret; the server stores only the bcrypt hash.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": err.Error()})
	}

	device := &models.Device{Name: req.Name, Platform: req.Platform}
	if err := device.HashSecret(req.Secret); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process secret"})
	}
	if err := h.deviceRepo.Create(device); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register device"})
	}

	token, err := middleware.GenerateToken(device.ID, device.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"device": device.ToResponse(), "token": token})
}

// Login exchanges a device ID and secret for a fresh bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.DeviceLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": err.Error()})
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid device ID"})
	}

	device, err := h.deviceRepo.GetByID(deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if device.IsDisabled {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Device disabled"})
	}
	if !device.CheckSecret(req.Secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	_ = h.deviceRepo.TouchLastSeen(device.ID)

	token, err := middleware.GenerateToken(device.ID, device.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	return c.JSON(fiber.Map{"device": device.ToResponse(), "token": token})
}
