package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todopop/internal/adapter/http/helper"
	"todopop/internal/adapter/http/validation"
	"todopop/internal/core/domain"
	"todopop/internal/core/model/request"
	"todopop/internal/core/port"
	"todopop/internal/core/service"
	"todopop/pkg/metrics"
)

// TodoHandler exposes the one-shot function calls. Routes carry the function
// name the client addresses them by: todos.list, todos.add, todos.toggle,
// todos.remove.
type TodoHandler struct {
	svc     port.TodoService
	logger  zerolog.Logger
	metrics *metrics.AppMetrics
}

func NewTodoHandler(svc port.TodoService, logger zerolog.Logger, appMetrics *metrics.AppMetrics) *TodoHandler {
	return &TodoHandler{
		svc:     svc,
		logger:  logger,
		metrics: appMetrics,
	}
}

func (t *TodoHandler) recordOperation(operation string) {
	if t.metrics != nil {
		t.metrics.RecordTodoOperation(operation)
	}
}

// ListTodos answers the one-shot read. Without a limit it returns the full
// ordered set; with one it pages through keyset cursors.
func (t *TodoHandler) ListTodos(c *gin.Context) {
	ctx := c.Request.Context()

	t.recordOperation("list")

	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)

		if err != nil || limit <= 0 {
			helper.SendBadRequestError(c, "limit", "limit must be a positive integer")
			return
		}

		data, err := t.svc.ListWithCursor(ctx, limit, c.Query("cursor"))

		if err != nil {
			t.logger.Error().Err(err).Msg("failed to list todos")
			helper.SendInternalError(c, "Error getting todos")
			return
		}

		c.JSON(http.StatusOK, data)
		return
	}

	todos, err := t.svc.List(ctx)

	if err != nil {
		t.logger.Error().Err(err).Msg("failed to list todos")
		helper.SendInternalError(c, "Error getting todos")
		return
	}

	c.JSON(http.StatusOK, service.ToSnapshot(todos))
}

func (t *TodoHandler) AddTodo(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.AddTodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		helper.SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, err)
		return
	}

	t.recordOperation("add")

	todo, err := t.svc.Add(ctx, params.Text)

	if err != nil {
		t.logger.Error().Err(err).Msg("failed to add todo")
		helper.SendInternalError(c, "Error adding todo")
		return
	}

	helper.SendSuccess(c, http.StatusCreated, service.ToTodoResponse(todo))
}

func (t *TodoHandler) ToggleTodo(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.TargetTodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		helper.SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, err)
		return
	}

	t.recordOperation("toggle")

	todo, err := t.svc.Toggle(ctx, params.ID)

	if err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			helper.SendNotFoundError(c, "todo with id "+params.ID+" not found")
			return
		}

		t.logger.Error().Err(err).Str("id", params.ID).Msg("failed to toggle todo")
		helper.SendInternalError(c, "Error toggling todo")
		return
	}

	helper.SendSuccess(c, http.StatusOK, service.ToTodoResponse(todo))
}

// RemoveTodo succeeds whether or not the id exists; no existence check is
// performed before the delete.
func (t *TodoHandler) RemoveTodo(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.TargetTodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		helper.SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, err)
		return
	}

	t.recordOperation("remove")

	if err := t.svc.Remove(ctx, params.ID); err != nil {
		t.logger.Error().Err(err).Str("id", params.ID).Msg("failed to remove todo")
		helper.SendInternalError(c, "Error removing todo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo removed",
	})
}
