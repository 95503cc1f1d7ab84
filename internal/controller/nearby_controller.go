package controller

import (
	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INearbyController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Categories(ctx *fiber.Ctx) error
}

type nearbyController struct {
	service service.INearbyService
}

func NewNearbyController(service service.INearbyService) INearbyController {
	return &nearbyController{service: service}
}

func (c *nearbyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/nearby")
	h.Get("", c.Search)
	h.Get("/categories", c.Categories)
}

func (c *nearbyController) Search(ctx *fiber.Ctx) error {
	var req dto.NearbyRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success find nearby services", res))
}

func (c *nearbyController) Categories(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get categories", c.service.Categories()))
}
