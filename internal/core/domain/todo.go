package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTodoNotFound is returned when an operation targets an id that no
// longer exists. Removals never return it.
var ErrTodoNotFound = errors.New("todo not found")

type Todo struct {
	ID        int
	UUID      uuid.UUID
	Text      string `validate:"required"`
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Todo) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":         t.ID,
		"uuid":       t.UUID,
		"text":       t.Text,
		"completed":  t.Completed,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// Remaining counts records that are still open. The popup footer and the
// handler tests both derive the counter this way.
func Remaining(todos []Todo) int {
	count := 0

	for _, t := range todos {
		if !t.Completed {
			count++
		}
	}

	return count
}
