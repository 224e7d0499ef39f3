package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"todopop/internal/core/domain"
	"todopop/internal/core/model/response"
	"todopop/internal/core/port"
	tel "todopop/internal/core/telemetry"
	"todopop/pkg/db/cursor"
)

// TodoService owns the four platform functions. Every committed mutation is
// published to the change feed so live subscriptions re-deliver the list.
type TodoService struct {
	repo      port.TodoRepository
	feed      port.ChangePublisher
	telemetry port.Telemetry
}

func NewTodoService(repo port.TodoRepository, feed port.ChangePublisher, telemetry port.Telemetry) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{
		repo:      repo,
		feed:      feed,
		telemetry: telemetry,
	}
}

func (ts *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	return ts.repo.GetAll(ctx)
}

func (ts *TodoService) ListWithCursor(ctx context.Context, limit int, cur string) (*response.CursorResponse, error) {
	rows, hasNext, err := ts.repo.GetAllWithCursor(ctx, limit, cur)

	data := make([]response.TodoResponse, 0)

	if err != nil {
		dataBytes, _ := json.Marshal(data)

		resp := response.CursorResponse{
			Size: 0,
			Data: dataBytes,
		}

		return &resp, err
	}

	for _, todo := range rows {
		data = append(data, ToTodoResponse(todo))
	}

	var nextCursor string

	if hasNext && len(rows) > 0 {
		last := rows[len(rows)-1]
		nextCursor = cursor.Encode(last.CreatedAt.Format(time.RFC3339Nano), last.ID)
	}

	dataBytes, _ := json.Marshal(data)

	resp := response.CursorResponse{
		Size: len(data),
		Data: dataBytes,
	}
	resp.Pagination.HasNext = hasNext
	resp.Pagination.NextCursor = nextCursor

	return &resp, nil
}

func (ts *TodoService) Add(ctx context.Context, text string) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Add", map[string]interface{}{
		"todo.text_length": len(text),
	})
	defer span.End()

	now := time.Now()

	newTodo := domain.Todo{
		UUID:      uuid.New(),
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	todo, err := ts.repo.Create(ctx, newTodo)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		log.Error().Err(err).Str("text", newTodo.Text).Msg("repository create failed")
		return domain.Todo{}, err
	}

	ts.publish(ctx, port.ChangeOpAdd, todo.UUID.String())

	return todo, nil
}

func (ts *TodoService) Toggle(ctx context.Context, uid string) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Toggle", map[string]interface{}{
		"todo.uuid": uid,
	})
	defer span.End()

	todo, err := ts.repo.ToggleByUUID(ctx, uid)

	if err != nil {
		if !errors.Is(err, domain.ErrTodoNotFound) {
			span.RecordError(err)
			span.SetStatus("error", err.Error())
		}

		return domain.Todo{}, err
	}

	ts.publish(ctx, port.ChangeOpToggle, uid)

	return todo, nil
}

// Remove deletes the record if present. A missing id is not an error: the
// delete is issued without an existence check and both outcomes succeed.
func (ts *TodoService) Remove(ctx context.Context, uid string) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Remove", map[string]interface{}{
		"todo.uuid": uid,
	})
	defer span.End()

	deleted, err := ts.repo.DeleteByUUID(ctx, uid)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		return err
	}

	if deleted {
		ts.publish(ctx, port.ChangeOpRemove, uid)
	}

	return nil
}

func (ts *TodoService) publish(ctx context.Context, op port.ChangeOp, uid string) {
	if ts.feed == nil {
		return
	}

	ts.feed.Publish(ctx, port.Change{
		Op:   op,
		UUID: uid,
		At:   time.Now(),
	})

	ts.telemetry.RecordBusinessEvent(ctx, string(op), "todo", uid, nil)
}

func ToTodoResponse(todo domain.Todo) response.TodoResponse {
	return response.TodoResponse{
		UUID:      todo.UUID,
		Text:      todo.Text,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

// ToSnapshot builds one subscription delivery from a consistent read.
func ToSnapshot(todos []domain.Todo) response.Snapshot {
	items := make([]response.TodoResponse, 0, len(todos))

	for _, todo := range todos {
		items = append(items, ToTodoResponse(todo))
	}

	return response.Snapshot{
		Todos:     items,
		Remaining: domain.Remaining(todos),
	}
}
