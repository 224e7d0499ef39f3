package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"todopop/internal/core/domain"
)

func TestRemaining(t *testing.T) {
	todos := []domain.Todo{
		{Text: "open one"},
		{Text: "done", Completed: true},
		{Text: "open two"},
	}

	assert.Equal(t, 2, domain.Remaining(todos))
	assert.Equal(t, 0, domain.Remaining(nil))
	assert.Equal(t, 0, domain.Remaining([]domain.Todo{{Text: "done", Completed: true}}))
}

func TestTodoToMap(t *testing.T) {
	id := uuid.New()

	todo := domain.Todo{
		ID:   7,
		UUID: id,
		Text: "Buy milk",
	}

	m := todo.ToMap()

	assert.Equal(t, 7, m["id"])
	assert.Equal(t, id, m["uuid"])
	assert.Equal(t, "Buy milk", m["text"])
	assert.Equal(t, false, m["completed"])
}
