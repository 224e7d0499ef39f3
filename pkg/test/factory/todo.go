package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"todopop/internal/core/domain"
)

func NewTodo(customData ...map[string]any) domain.Todo {
	instance := fab.New(domain.Todo{})

	// fabricator's Build only applies the first overrides map, so collapse
	// everything into a single map before filling in the defaults.
	merged := map[string]any{}

	for _, data := range customData {
		for key, value := range data {
			merged[key] = value
		}
	}

	if _, exists := merged["UUID"]; !exists {
		merged["UUID"] = uuid.New()
	}

	if _, exists := merged["Completed"]; !exists {
		merged["Completed"] = false
	}

	todo := instance.Build(merged)

	if todo.CreatedAt.IsZero() {
		now := time.Now().UTC()
		todo.CreatedAt = now
		todo.UpdatedAt = now
	}

	return todo
}
