// Package memory provides in-process implementations of the perfsync remote
// ports. They enforce the server's transition rules, paginate like the real
// API and can be told to fail, which makes them suitable for tests, examples
// and offline demos.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	perfsync "github.com/goliatone/go-perfsync"
)

// server holds what both fakes share: failure injection and call counts.
type server struct {
	mu       sync.Mutex
	failures map[string][]*perfsync.RemoteError
	calls    map[string]int
}

func newServer() server {
	return server{
		failures: map[string][]*perfsync.RemoteError{},
		calls:    map[string]int{},
	}
}

// FailNext makes the next call to op fail with a 500 carrying message. An
// empty message yields a failure without user-facing text.
func (s *server) FailNext(op, message string) {
	s.FailNextWith(op, &perfsync.RemoteError{Op: op, Status: http.StatusInternalServerError, Message: message})
}

// FailNextWith queues err for the next call to op. A nil err is ignored.
func (s *server) FailNextWith(op string, err *perfsync.RemoteError) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Calls reports how many times op was invoked.
func (s *server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// begin records a call and returns an injected failure, if any. It must be
// called with s.mu held.
func (s *server) begin(ctx context.Context, op string) error {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	queue := s.failures[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	s.failures[op] = queue[1:]
	return err
}

func conflict(op, message string) error {
	return &perfsync.RemoteError{Op: op, Status: http.StatusConflict, Message: message}
}

func badRequest(op, message string) error {
	return &perfsync.RemoteError{Op: op, Status: http.StatusBadRequest, Message: message}
}

func notFound(op, message string) error {
	return &perfsync.RemoteError{Op: op, Status: http.StatusNotFound, Message: message}
}

func forbidden(op string) error {
	return &perfsync.RemoteError{Op: op, Status: http.StatusForbidden, Message: "You are not allowed to perform this action."}
}

// page renders items the way the API does, round-tripped through JSON so
// numbers arrive as float64.
func page[T any](op string, items []T, number, size int) (map[string]any, error) {
	if size < 1 {
		size = 1
	}
	if number < 0 {
		number = 0
	}
	total := (len(items) + size - 1) / size
	start := min(number*size, len(items))
	end := min(start+size, len(items))

	content := items[start:end]
	if content == nil {
		content = []T{}
	}
	raw, err := json.Marshal(map[string]any{
		"content":       content,
		"number":        number,
		"size":          size,
		"totalPages":    total,
		"totalElements": len(items),
	})
	if err != nil {
		return nil, fmt.Errorf("memory: %s: encode page: %w", op, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("memory: %s: decode page: %w", op, err)
	}
	return payload, nil
}
