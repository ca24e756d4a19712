package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/internal/query"
	"github.com/smartcity-agent/backend/pkg/logger"
)

type QueryHandler struct {
	engine *query.Engine
}

func NewQueryHandler(engine *query.Engine) *QueryHandler {
	return &QueryHandler{
		engine: engine,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

// HandleRoot is the service banner.
func (h *QueryHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Smart City API is running. Use /query endpoint to get sensor data.",
	})
}

// HandleQueryGet processes ?q= and returns the full QueryResult.
func (h *QueryHandler) HandleQueryGet(c *fiber.Ctx) error {
	return h.process(c, c.Query("q"), false)
}

// HandleQueryPost processes a JSON body and returns only the response text.
func (h *QueryHandler) HandleQueryPost(c *fiber.Ctx) error {
	req, err := h.parseBody(c)
	if err != nil {
		return err
	}
	return h.process(c, req.Query, true)
}

// HandleQueryFull processes a JSON body and returns the full QueryResult.
func (h *QueryHandler) HandleQueryFull(c *fiber.Ctx) error {
	req, err := h.parseBody(c)
	if err != nil {
		return err
	}
	return h.process(c, req.Query, false)
}

// HandleDebugGet returns the pipeline's intermediate artifacts for ?q=.
func (h *QueryHandler) HandleDebugGet(c *fiber.Ctx) error {
	return h.debug(c, c.Query("q"))
}

// HandleDebugPost returns the pipeline's intermediate artifacts for a JSON
// body query.
func (h *QueryHandler) HandleDebugPost(c *fiber.Ctx) error {
	req, err := h.parseBody(c)
	if err != nil {
		return err
	}
	return h.debug(c, req.Query)
}

func (h *QueryHandler) parseBody(c *fiber.Ctx) (*queryRequest, error) {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	return &req, nil
}

// process runs one query. Only an empty query is a client error; every
// business-level failure is already folded into the result's response text
// and returned with status 200.
func (h *QueryHandler) process(c *fiber.Ctx, queryText string, responseOnly bool) error {
	result, err := h.engine.ProcessQuery(c.Context(), queryText)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required",
			})
		}
		logger.Error("Failed to process query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process query",
		})
	}

	if responseOnly {
		return c.JSON(fiber.Map{
			"response": result.Response,
		})
	}

	return c.JSON(result)
}

func (h *QueryHandler) debug(c *fiber.Ctx, queryText string) error {
	debug, err := h.engine.Debug(c.Context(), queryText)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required",
			})
		}
		logger.Error("Failed to build debug info", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build debug info",
		})
	}

	return c.JSON(debug)
}
