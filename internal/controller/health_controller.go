package controller

import (
	"astu-route-be/internal/dto"
	"astu-route-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
}

type healthController struct {
	service service.IHealthService
}

func NewHealthController(service service.IHealthService) IHealthController {
	return &healthController{service: service}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health")
	h.Get("", func(ctx *fiber.Ctx) error {
		return ctx.JSON(c.service.Health(ctx.UserContext()))
	})
	h.Get("/db", func(ctx *fiber.Ctx) error {
		return component(ctx, c.service.Database(ctx.UserContext()))
	})
	h.Get("/ai", func(ctx *fiber.Ctx) error {
		return component(ctx, c.service.AI(ctx.UserContext()))
	})
	h.Get("/cache", func(ctx *fiber.Ctx) error {
		return component(ctx, c.service.Cache(ctx.UserContext()))
	})
}

func component(ctx *fiber.Ctx, h *dto.ComponentHealth) error {
	if h.Status == service.StatusUnhealthy {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(h)
	}
	return ctx.JSON(h)
}
