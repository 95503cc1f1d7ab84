package controller

import (
	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILocationController interface {
	RegisterRoutes(r fiber.Router)
	Update(ctx *fiber.Ctx) error
}

type locationController struct {
	service service.IQueryService
}

func NewLocationController(service service.IQueryService) ILocationController {
	return &locationController{service: service}
}

func (c *locationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/location")
	h.Post("/update", c.Update)
}

// Update re-plans the route to the destination from the posted position.
func (c *locationController) Update(ctx *fiber.Ctx) error {
	var req dto.LocationUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.UpdateLocation(ctx.UserContext(), requestID(ctx), &req)
	return ctx.JSON(serverutils.SuccessResponse("Success update location", res))
}
