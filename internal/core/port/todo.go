package port

import (
	"context"

	"todopop/internal/core/domain"
	"todopop/internal/core/model/response"
)

type TodoRepository interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetAllWithCursor(ctx context.Context, limit int, cursor string) ([]domain.Todo, bool, error)
	GetByUUID(ctx context.Context, uid string) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	ToggleByUUID(ctx context.Context, uid string) (domain.Todo, error)
	DeleteByUUID(ctx context.Context, uid string) (bool, error)
}

type TodoService interface {
	List(ctx context.Context) ([]domain.Todo, error)
	ListWithCursor(ctx context.Context, limit int, cursor string) (*response.CursorResponse, error)
	Add(ctx context.Context, text string) (domain.Todo, error)
	Toggle(ctx context.Context, uid string) (domain.Todo, error)
	Remove(ctx context.Context, uid string) error
}
