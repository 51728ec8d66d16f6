package delivery

import (
	"errors"
	"kidcheck/config"
	"kidcheck/domain"
	"kidcheck/middleware"

	"github.com/gofiber/fiber/v2"
)

var errInvalidBody = errors.New("invalid request body")

type requestHandler struct {
	ruc domain.RequestUseCase
}

func NewRequestDelivery(router fiber.Router, uc domain.RequestUseCase) {
	handler := &requestHandler{
		ruc: uc,
	}

	route := router.Group("/requests")
	route.Get("/", handler.deliveryGetAllRequests)
	route.Get("/mine", middleware.AuthRequired(), middleware.RoleRequired(domain.RoleParent), handler.deliveryGetMyRequests)
	route.Get("/stats", middleware.AuthRequired(), middleware.RoleRequired(domain.RoleAdmin), handler.deliveryGetRequestStats)
	route.Post("/", handler.deliveryCreateRequest)
	route.Post("/update", handler.deliveryUpdateRequest)
	route.Post("/respond", middleware.AuthRequired(), middleware.RoleRequired(domain.RoleAdmin), handler.deliveryRespondToRequest)
	route.Post("/delete", handler.deliveryDeleteRequest)
}

func (rh *requestHandler) deliveryGetAllRequests(c *fiber.Ctx) error {
	filter := domain.RequestFilter{ParentEmail: c.Query("parentEmail")}

	datas, err := rh.ruc.GetAllRequests(c.Context(), filter)
	if err != nil {
		config.PrintLogInfo(&filter.ParentEmail, statusFor(err), "GetAllRequests")
		return failure(c, statusFor(err), "Failed to retrieve requests", err)
	}

	config.PrintLogInfo(&filter.ParentEmail, fiber.StatusOK, "GetAllRequests")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"message":  "Requests retrieved successfully",
		"requests": datas,
	})
}

func (rh *requestHandler) deliveryGetMyRequests(c *fiber.Ctx) error {
	userToken := middleware.ClaimsFrom(c)

	datas, err := rh.ruc.GetAllRequests(c.Context(), domain.RequestFilter{ParentEmail: userToken.Email})
	if err != nil {
		config.PrintLogInfo(&userToken.Email, statusFor(err), "GetMyRequests")
		return failure(c, statusFor(err), "Failed to retrieve requests", err)
	}

	config.PrintLogInfo(&userToken.Email, fiber.StatusOK, "GetMyRequests")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"message":  "Requests retrieved successfully",
		"requests": datas,
	})
}

func (rh *requestHandler) deliveryGetRequestStats(c *fiber.Ctx) error {
	userToken := middleware.ClaimsFrom(c)

	stats, err := rh.ruc.GetRequestStats(c.Context())
	if err != nil {
		config.PrintLogInfo(&userToken.Name, statusFor(err), "GetRequestStats")
		return failure(c, statusFor(err), "Failed to retrieve stats", err)
	}

	config.PrintLogInfo(&userToken.Name, fiber.StatusOK, "GetRequestStats")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Stats retrieved successfully",
		"stats":   stats,
	})
}

func (rh *requestHandler) deliveryCreateRequest(c *fiber.Ctx) error {
	var input domain.NewRequest
	if err := c.BodyParser(&input); err != nil {
		config.PrintLogInfo(nil, fiber.StatusBadRequest, "CreateRequest")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	data, err := rh.ruc.CreateRequest(c.Context(), &input)
	if err != nil {
		config.PrintLogInfo(&input.ParentEmail, statusFor(err), "CreateRequest")
		return failure(c, statusFor(err), "Failed to create request", err)
	}

	config.PrintLogInfo(&input.ParentEmail, fiber.StatusCreated, "CreateRequest")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Request created successfully",
		"request": data,
	})
}

func (rh *requestHandler) deliveryUpdateRequest(c *fiber.Ctx) error {
	var input domain.UpdateRequestInput
	if err := c.BodyParser(&input); err != nil {
		config.PrintLogInfo(nil, fiber.StatusBadRequest, "UpdateRequest")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	data, err := rh.ruc.UpdateRequest(c.Context(), &input)
	if err != nil {
		config.PrintLogInfo(nil, statusFor(err), "UpdateRequest")
		return failure(c, statusFor(err), "Failed to update request", err)
	}

	config.PrintLogInfo(nil, fiber.StatusOK, "UpdateRequest")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Request updated successfully",
		"request": data,
	})
}

func (rh *requestHandler) deliveryRespondToRequest(c *fiber.Ctx) error {
	userToken := middleware.ClaimsFrom(c)

	var input domain.RespondRequestInput
	if err := c.BodyParser(&input); err != nil {
		config.PrintLogInfo(&userToken.Name, fiber.StatusBadRequest, "RespondToRequest")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	data, err := rh.ruc.RespondToRequest(c.Context(), &input)
	if err != nil {
		config.PrintLogInfo(&userToken.Name, statusFor(err), "RespondToRequest")
		return failure(c, statusFor(err), "Failed to respond to request", err)
	}

	config.PrintLogInfo(&userToken.Name, fiber.StatusOK, "RespondToRequest")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Response recorded successfully",
		"request": data,
	})
}

func (rh *requestHandler) deliveryDeleteRequest(c *fiber.Ctx) error {
	var input domain.DeleteRequestInput
	if err := c.BodyParser(&input); err != nil {
		config.PrintLogInfo(nil, fiber.StatusBadRequest, "DeleteRequest")
		return failure(c, fiber.StatusBadRequest, "Invalid request body", errInvalidBody)
	}

	if err := rh.ruc.DeleteRequest(c.Context(), input.ID); err != nil {
		config.PrintLogInfo(nil, statusFor(err), "DeleteRequest")
		return failure(c, statusFor(err), "Failed to delete request", err)
	}

	config.PrintLogInfo(nil, fiber.StatusOK, "DeleteRequest")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Request deleted successfully",
	})
}
