package controller

import (
	"bufio"
	"context"

	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/internal/service"
	internalWS "astu-route-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

type queryController struct {
	service service.IQueryService
	logger  logger.ILogger
}

func NewQueryController(service service.IQueryService, log logger.ILogger) IQueryController {
	return &queryController{service: service, logger: log}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)

	h := r.Group("/ai")
	h.Post("/query", c.Query)
	h.Post("/query/stream", c.Stream)
	h.Get("/ws", internalWS.Handler(c.service, c.logger))
}

func (c *queryController) parse(ctx *fiber.Ctx) (*dto.QueryRequest, error) {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *queryController) Query(ctx *fiber.Ctx) error {
	req, err := c.parse(ctx)
	if err != nil {
		return err
	}

	res := c.service.Query(ctx.UserContext(), requestID(ctx), req)
	return ctx.JSON(res)
}

func (c *queryController) Stream(ctx *fiber.Ctx) error {
	req, err := c.parse(ctx)
	if err != nil {
		return err
	}
	id := requestID(ctx)

	return streamSSE(ctx, func(w *bufio.Writer) {
		runCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := c.service.Stream(runCtx, id, req)
		for event := range events {
			if err := writeSSE(w, string(event.Type), event.Marshal()); err != nil {
				c.logger.Info("HTTP", "Stream client disconnected", map[string]interface{}{"request_id": id})
				cancel()
				for range events {
				}
				return
			}
		}
	})
}
