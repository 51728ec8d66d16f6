package delivery

import (
	"kidcheck/config"
	"kidcheck/domain"

	"github.com/gofiber/fiber/v2"
)

type authHandler struct {
	auc domain.AuthUseCase
}

func NewAuthDelivery(router fiber.Router, uc domain.AuthUseCase) {
	handler := &authHandler{
		auc: uc,
	}

	route := router.Group("/auth")
	route.Post("/register", handler.deliveryRegister)
	route.Post("/login", handler.deliveryLogin)
	route.Post("/admin", handler.deliveryAdminLogin)
}

func (ah *authHandler) deliveryRegister(c *fiber.Ctx) error {
	var req domain.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(nil, fiber.StatusBadRequest, "Register")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	user, token, err := ah.auc.Register(c.Context(), &req)
	if err != nil {
		config.PrintLogInfo(&req.Email, statusFor(err), "Register")
		return failure(c, statusFor(err), "Registration failed", err)
	}

	config.PrintLogInfo(&user.Email, fiber.StatusCreated, "Register")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

func (ah *authHandler) deliveryLogin(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(nil, fiber.StatusBadRequest, "Login")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	user, token, err := ah.auc.Login(c.Context(), &req)
	if err != nil {
		config.PrintLogInfo(&req.Email, statusFor(err), "Login")
		return failure(c, statusFor(err), "Login failed", err)
	}

	config.PrintLogInfo(&user.Email, fiber.StatusOK, "Login")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (ah *authHandler) deliveryAdminLogin(c *fiber.Ctx) error {
	var req domain.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(nil, fiber.StatusBadRequest, "AdminLogin")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	session, err := ah.auc.AdminLogin(c.Context(), &req)
	if err != nil {
		config.PrintLogInfo(&req.Name, statusFor(err), "AdminLogin")
		return failure(c, statusFor(err), "Admin login failed", err)
	}

	config.PrintLogInfo(&session.Name, fiber.StatusOK, "AdminLogin")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Admin login successful",
		"admin":   session,
		"token":   session.Token,
	})
}
