package repository_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"todopop/internal/adapter/database/repository"
	"todopop/internal/core/domain"
	"todopop/internal/core/port"
	"todopop/pkg/test"
	"todopop/pkg/test/factory"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	Repo port.TodoRepository
	ctx  context.Context
}

func (s *TodoRepositoryTestSuite) SetupTest() {
	db := test.InitTestDB()
	s.Repo = repository.NewTodoRepository(db, nil)
	s.ctx = context.Background()
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAll_Empty() {
	todos, err := s.Repo.GetAll(s.ctx)

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), todos)
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_Success() {
	todo, err := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
		"Text": "Buy milk",
	}))

	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), todo.ID)
	assert.NotEqual(s.T(), uuid.Nil, todo.UUID)
	assert.Equal(s.T(), "Buy milk", todo.Text)
	assert.False(s.T(), todo.Completed)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAll_NewestFirst() {
	base := time.Now().UTC().Truncate(time.Second)

	first, _ := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
		"Text":      "older",
		"CreatedAt": base.Add(-2 * time.Minute),
		"UpdatedAt": base.Add(-2 * time.Minute),
	}))
	second, _ := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
		"Text":      "newer",
		"CreatedAt": base,
		"UpdatedAt": base,
	}))

	todos, err := s.Repo.GetAll(s.ctx)

	assert.NoError(s.T(), err)
	assert.Len(s.T(), todos, 2)
	assert.Equal(s.T(), second.UUID, todos[0].UUID)
	assert.Equal(s.T(), first.UUID, todos[1].UUID)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAll_SameTimestampBreaksTiesById() {
	at := time.Now().UTC().Truncate(time.Second)

	for _, text := range []string{"a", "b", "c"} {
		_, err := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
			"Text":      text,
			"CreatedAt": at,
			"UpdatedAt": at,
		}))
		assert.NoError(s.T(), err)
	}

	todos, err := s.Repo.GetAll(s.ctx)

	assert.NoError(s.T(), err)
	assert.Len(s.T(), todos, 3)
	assert.Equal(s.T(), "c", todos[0].Text)
	assert.Equal(s.T(), "b", todos[1].Text)
	assert.Equal(s.T(), "a", todos[2].Text)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetByUUID_Success() {
	created, _ := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
		"Text": "find me",
	}))

	found, err := s.Repo.GetByUUID(s.ctx, created.UUID.String())

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, found.ID)
	assert.Equal(s.T(), "find me", found.Text)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetByUUID_NotFound() {
	_, err := s.Repo.GetByUUID(s.ctx, uuid.NewString())

	assert.ErrorIs(s.T(), err, domain.ErrTodoNotFound)
}

func (s *TodoRepositoryTestSuite) TestRepository_ToggleByUUID_Flips() {
	created, _ := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
		"Text": "walk the dog",
	}))

	toggled, err := s.Repo.ToggleByUUID(s.ctx, created.UUID.String())

	assert.NoError(s.T(), err)
	assert.True(s.T(), toggled.Completed)

	again, err := s.Repo.ToggleByUUID(s.ctx, created.UUID.String())

	assert.NoError(s.T(), err)
	assert.False(s.T(), again.Completed)
}

func (s *TodoRepositoryTestSuite) TestRepository_ToggleByUUID_NotFound() {
	_, err := s.Repo.ToggleByUUID(s.ctx, uuid.NewString())

	assert.ErrorIs(s.T(), err, domain.ErrTodoNotFound)
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByUUID_Success() {
	created, _ := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
		"Text": "short lived",
	}))

	deleted, err := s.Repo.DeleteByUUID(s.ctx, created.UUID.String())

	assert.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	todos, _ := s.Repo.GetAll(s.ctx)
	assert.Empty(s.T(), todos)
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByUUID_MissingIsNotAnError() {
	deleted, err := s.Repo.DeleteByUUID(s.ctx, uuid.NewString())

	assert.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAllWithCursor_Paginates() {
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)

		_, err := s.Repo.Create(s.ctx, factory.NewTodo(map[string]any{
			"Text":      "todo",
			"CreatedAt": at,
			"UpdatedAt": at,
		}))
		assert.NoError(s.T(), err)
	}

	firstPage, hasNext, err := s.Repo.GetAllWithCursor(s.ctx, 2, "")

	assert.NoError(s.T(), err)
	assert.Len(s.T(), firstPage, 2)
	assert.True(s.T(), hasNext)

	lastPage, hasNext, err := s.Repo.GetAllWithCursor(s.ctx, 10, "")

	assert.NoError(s.T(), err)
	assert.Len(s.T(), lastPage, 5)
	assert.False(s.T(), hasNext)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAllWithCursor_BadCursor() {
	_, _, err := s.Repo.GetAllWithCursor(s.ctx, 2, "not-a-cursor")

	Expect(err).To(HaveOccurred())
}
