package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"todopop/internal/adapter/database"
	"todopop/internal/core/domain"
	"todopop/internal/core/port"
	tel "todopop/internal/core/telemetry"
)

const todoColumns = "id, uuid, text, completed, created_at, updated_at"

type TodoRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *database.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func scanTodo(scanner interface{ Scan(...interface{}) error }) (domain.Todo, error) {
	var (
		todo domain.Todo
		uid  string
	)

	err := scanner.Scan(&todo.ID, &uid, &todo.Text, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return domain.Todo{}, err
	}

	todo.UUID, err = uuid.Parse(uid)

	if err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

// GetAll returns the full set, newest-created first. The id tiebreak keeps
// the order stable when two rows share a timestamp.
func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAll", "todo", map[string]interface{}{
		"db.table": "todos",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns).
		From("todos").
		OrderBy("created_at DESC, id DESC").
		ToSql()

	if err != nil {
		return nil, tr.fail(ctx, span, "GetAll", startTime, err)
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, tr.fail(ctx, span, "GetAll", startTime, err)
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			return nil, tr.fail(ctx, span, "GetAll", startTime, err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, tr.fail(ctx, span, "GetAll", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(todos)})
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), nil)

	return todos, nil
}

func (tr *TodoRepository) GetAllWithCursor(ctx context.Context, limit int, cursorToken string) ([]domain.Todo, bool, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAllWithCursor", "todo", map[string]interface{}{
		"db.table":          "todos",
		"pagination.limit":  limit,
		"pagination.cursor": cursorToken,
	})
	defer span.End()

	startTime := time.Now()

	// Fetch one extra row to learn whether another page exists.
	actualLimit := limit + 1

	query := tr.db.QueryBuilder.Select(todoColumns).
		From("todos").
		OrderBy("created_at DESC, id DESC").
		Limit(uint64(actualLimit))

	if cursorToken != "" {
		datetime, id, err := decodeCursor(cursorToken)

		if err != nil {
			return nil, false, tr.fail(ctx, span, "GetAllWithCursor", startTime, err)
		}

		query = query.Where(sq.Or{
			sq.Lt{"created_at": datetime},
			sq.And{
				sq.Eq{"created_at": datetime},
				sq.Lt{"id": id},
			},
		})
	}

	sqlStr, args, err := query.ToSql()

	if err != nil {
		return nil, false, tr.fail(ctx, span, "GetAllWithCursor", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetAllWithCursor", "todo", sqlStr, args)

	rows, err := tr.db.QueryContext(ctx, sqlStr, args...)

	if err != nil {
		return nil, false, tr.fail(ctx, span, "GetAllWithCursor", startTime, err)
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			return nil, false, tr.fail(ctx, span, "GetAllWithCursor", startTime, err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, false, tr.fail(ctx, span, "GetAllWithCursor", startTime, err)
	}

	hasNext := len(todos) == actualLimit

	if hasNext {
		todos = todos[:limit]
	}

	span.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(todos),
		"db.has_next":      hasNext,
	})
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "GetAllWithCursor", "todo", time.Since(startTime), nil)

	return todos, hasNext, nil
}

func (tr *TodoRepository) GetByUUID(ctx context.Context, uid string) (domain.Todo, error) {
	query, args, err := tr.db.QueryBuilder.Select(todoColumns).
		From("todos").
		Where(sq.Eq{"uuid": uid}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	row := tr.db.QueryRowContext(ctx, query, args...)

	todo, err := scanTodo(row)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	if err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.table":     "todos",
		"db.operation": "INSERT",
		"todo.uuid":    todo.UUID.String(),
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("uuid", "text", "completed", "created_at", "updated_at").
		Values(todo.UUID.String(), todo.Text, todo.Completed, todo.CreatedAt, todo.UpdatedAt).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "todo", query, args)

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	saved, err := tr.GetByUUID(ctx, todo.UUID.String())

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), nil)

	return saved, nil
}

// ToggleByUUID flips the completion flag in a single UPDATE. The flip happens
// in SQL so two concurrent toggles serialize in the database rather than
// racing through a read-then-write window held by the caller.
func (tr *TodoRepository) ToggleByUUID(ctx context.Context, uid string) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "ToggleByUUID", "todo", map[string]interface{}{
		"db.table":     "todos",
		"db.operation": "UPDATE",
		"todo.uuid":    uid,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("completed", sq.Expr("NOT completed")).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"uuid": uid}).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "ToggleByUUID", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "ToggleByUUID", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "ToggleByUUID", startTime, err)
	}

	rowsAffected, _ := result.RowsAffected()

	if rowsAffected == 0 {
		span.SetStatus("error", domain.ErrTodoNotFound.Error())
		tr.telemetry.RecordRepositoryOperation(ctx, "ToggleByUUID", "todo", time.Since(startTime), domain.ErrTodoNotFound)
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	updated, err := tr.GetByUUID(ctx, uid)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "ToggleByUUID", startTime, err)
	}

	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "ToggleByUUID", "todo", time.Since(startTime), nil)

	return updated, nil
}

// DeleteByUUID reports whether a row was actually removed. Deleting an absent
// id is not an error.
func (tr *TodoRepository) DeleteByUUID(ctx context.Context, uid string) (bool, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteByUUID", "todo", map[string]interface{}{
		"db.table":     "todos",
		"db.operation": "DELETE",
		"todo.uuid":    uid,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"uuid": uid}).
		ToSql()

	if err != nil {
		return false, tr.fail(ctx, span, "DeleteByUUID", startTime, err)
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return false, tr.fail(ctx, span, "DeleteByUUID", startTime, err)
	}

	rowsAffected, _ := result.RowsAffected()

	span.SetAttributes(map[string]interface{}{"db.rows_affected": rowsAffected})
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByUUID", "todo", time.Since(startTime), nil)

	return rowsAffected > 0, nil
}

func (tr *TodoRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	span.SetStatus("error", err.Error())
	span.RecordError(err)
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	return err
}
