package controller

import (
	"bufio"
	"context"
	"encoding/json"

	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRouteController interface {
	RegisterRoutes(r fiber.Router)
	Route(ctx *fiber.Ctx) error
	RouteFromQuery(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type routeController struct {
	service service.IRouteService
	logger  logger.ILogger
}

func NewRouteController(service service.IRouteService, log logger.ILogger) IRouteController {
	return &routeController{service: service, logger: log}
}

func (c *routeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/route")
	h.Post("", c.Route)
	h.Post("/stream", c.Stream)

	o := r.Group("/osm")
	o.Get("/route", c.RouteFromQuery)
	o.Get("/stats", c.Stats)
}

func (c *routeController) Route(ctx *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return c.respond(ctx, &req)
}

func (c *routeController) RouteFromQuery(ctx *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	return c.respond(ctx, &req)
}

func (c *routeController) respond(ctx *fiber.Ctx, req *dto.RouteRequest) error {
	if err := serverutils.ValidateRequest(*req); err != nil {
		return err
	}

	res, err := c.service.Route(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success compute route", res))
}

func (c *routeController) Stream(ctx *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return streamSSE(ctx, func(w *bufio.Writer) {
		err := c.service.StreamRoute(context.Background(), &req, func(e service.RouteEvent) error {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			return writeSSE(w, string(e.Type), data)
		})
		if err != nil {
			c.logger.Info("HTTP", "Route stream ended early", map[string]interface{}{"error": err.Error()})
		}
	})
}

func (c *routeController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get graph stats", c.service.Stats(ctx.UserContext())))
}
