// Package client is the binding layer to a todopop deployment. It exposes the
// platform's two call kinds: one-shot function calls and a subscribing read
// that re-delivers the list whenever the underlying set changes.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is one delivery of the subscribed list: the full ordered set plus
// the derived remaining count.
type Snapshot struct {
	Todos     []Todo `json:"todos"`
	Remaining int    `json:"remaining"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.DeploymentURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.CallTimeout,
		},
	}
}

// Call issues a one-shot write call. The argument record is serialized as the
// request body; no response data is consumed beyond the error envelope.
func (c *Client) Call(ctx context.Context, fn string, args any) error {
	body, err := json.Marshal(args)

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fn/"+fn, bytes.NewReader(body))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return fmt.Errorf("call %s: %w", fn, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return decodeCallError(fn, resp)
}

// List performs the one-shot read of the full ordered list.
func (c *Client) List(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fn/todos.list", nil)

	if err != nil {
		return Snapshot{}, err
	}

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return Snapshot{}, fmt.Errorf("call todos.list: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, decodeCallError("todos.list", resp)
	}

	var snapshot Snapshot

	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}

// Subscribe opens the live list stream. Snapshots arrive on the returned
// channel; it closes when ctx is cancelled or the stream ends. There is no
// reconnect: once the stream stops, the view simply stops updating.
func (c *Client) Subscribe(ctx context.Context) (<-chan Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/subscribe/todos.list", nil)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "text/event-stream")

	// The subscription outlives any sane call timeout, so it gets its own
	// transport-backed client with no deadline. Cancellation comes from ctx.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)

	if err != nil {
		return nil, fmt.Errorf("subscribe todos.list: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeCallError("todos.list", resp)
	}

	snapshots := make(chan Snapshot)

	go func() {
		defer close(snapshots)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		var data strings.Builder

		for scanner.Scan() {
			line := scanner.Text()

			if strings.HasPrefix(line, "data:") {
				data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
				continue
			}

			if line != "" {
				continue
			}

			// Blank line terminates one event.
			if data.Len() == 0 {
				continue
			}

			var snapshot Snapshot

			if err := json.Unmarshal([]byte(data.String()), &snapshot); err != nil {
				data.Reset()
				continue
			}

			data.Reset()

			select {
			case snapshots <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return snapshots, nil
}
