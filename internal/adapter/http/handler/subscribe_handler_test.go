package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	api "todopop/internal/adapter/http"
	"todopop/internal/adapter/http/routes"
	"todopop/internal/adapter/pubsub"
	"todopop/internal/core/model/response"
	"todopop/pkg/logging"
	"todopop/pkg/test"
)

type SubscribeHandlerTestSuite struct {
	suite.Suite
	Server *httptest.Server
	Hub    *pubsub.Hub
}

func (s *SubscribeHandlerTestSuite) SetupTest() {
	db := test.InitTestDB()
	s.Hub = pubsub.NewHub()

	container := api.NewContainer(db, s.Hub, nil, logging.NewNop(), nil)

	router := routes.SetupRouterForTests(routes.HandlersConfig{
		TodoHandler:      container.TodoHandler,
		SubscribeHandler: container.SubscribeHandler,
	})

	s.Server = httptest.NewServer(router)
}

func (s *SubscribeHandlerTestSuite) TearDownTest() {
	s.Hub.Close()
	s.Server.Close()
}

func TestSubscribeHandlerTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(SubscribeHandlerTestSuite))
}

// readSnapshot consumes one SSE event from the stream and decodes its data
// payload.
func (s *SubscribeHandlerTestSuite) readSnapshot(reader *bufio.Reader) response.Snapshot {
	var data string

	for {
		line, err := reader.ReadString('\n')

		if err != nil {
			s.T().Fatalf("stream ended early: %v", err)
		}

		line = strings.TrimRight(line, "\n")

		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			continue
		}

		if line == "" && data != "" {
			break
		}
	}

	var snapshot response.Snapshot

	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.T().Fatalf("invalid snapshot payload: %v", err)
	}

	return snapshot
}

func (s *SubscribeHandlerTestSuite) postJSON(path string, body any) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		s.T().Fatal(err)
	}

	resp, err := http.Post(s.Server.URL+path, "application/json", &buf)

	if err != nil {
		s.T().Fatal(err)
	}

	resp.Body.Close()
}

func (s *SubscribeHandlerTestSuite) TestSubscribe_DeliversSnapshotOnConnectAndAfterChanges() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", s.Server.URL+"/subscribe/todos.list", nil)
	assert.NoError(s.T(), err)

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(s.T(), err)
	defer resp.Body.Close()

	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	initial := s.readSnapshot(reader)
	Expect(initial.Todos).To(BeEmpty())
	assert.Equal(s.T(), 0, initial.Remaining)

	s.postJSON("/fn/todos.add", gin.H{"text": "Buy milk"})

	afterAdd := s.readSnapshot(reader)
	assert.Len(s.T(), afterAdd.Todos, 1)
	assert.Equal(s.T(), "Buy milk", afterAdd.Todos[0].Text)
	assert.Equal(s.T(), 1, afterAdd.Remaining)

	s.postJSON("/fn/todos.toggle", gin.H{"id": afterAdd.Todos[0].UUID.String()})

	afterToggle := s.readSnapshot(reader)
	assert.Len(s.T(), afterToggle.Todos, 1)
	assert.True(s.T(), afterToggle.Todos[0].Completed)
	assert.Equal(s.T(), 0, afterToggle.Remaining)
}

func (s *SubscribeHandlerTestSuite) TestSubscribe_HubCloseEndsStream() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", s.Server.URL+"/subscribe/todos.list", nil)

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(s.T(), err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	s.readSnapshot(reader)

	s.Hub.Close()

	_, err = io.Copy(io.Discard, reader)
	assert.NoError(s.T(), err)
}
