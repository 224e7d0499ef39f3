package http

import (
	"github.com/rs/zerolog"

	"todopop/internal/adapter/database"
	"todopop/internal/adapter/database/repository"
	"todopop/internal/adapter/http/handler"
	"todopop/internal/core/port"
	"todopop/internal/core/service"
	"todopop/pkg/metrics"
)

type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService

	TodoHandler      *handler.TodoHandler
	SubscribeHandler *handler.SubscribeHandler
}

func NewContainer(db *database.DB, feed port.ChangeFeed, telemetry port.Telemetry, logger zerolog.Logger, appMetrics *metrics.AppMetrics) *Container {
	todoRepo := repository.NewTodoRepository(db, telemetry)
	todoSvc := service.NewTodoService(todoRepo, feed, telemetry)

	return &Container{
		TodoRepo:    todoRepo,
		TodoService: todoSvc,

		TodoHandler:      handler.NewTodoHandler(todoSvc, logger, appMetrics),
		SubscribeHandler: handler.NewSubscribeHandler(todoSvc, feed, logger, appMetrics),
	}
}
