package controller

import (
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMapController interface {
	RegisterRoutes(r fiber.Router)
	Campus(ctx *fiber.Ctx) error
}

type mapController struct {
	service service.IMapService
}

func NewMapController(service service.IMapService) IMapController {
	return &mapController{service: service}
}

func (c *mapController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/map")
	h.Get("/campus", c.Campus)
}

func (c *mapController) Campus(ctx *fiber.Ctx) error {
	res, err := c.service.Campus(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get campus map", res))
}
