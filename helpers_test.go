package perfsync_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	perfsync "github.com/goliatone/go-perfsync"
	"github.com/goliatone/go-perfsync/pkg/state"
)

type recorder struct {
	mu     sync.Mutex
	events []perfsync.LogEvent
}

func (r *recorder) Log(event perfsync.LogEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) of(kind perfsync.LogKind) []perfsync.LogEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []perfsync.LogEvent
	for _, event := range r.events {
		if event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

type reply struct {
	payload map[string]any
	err     error
}

// gatedGoals holds every ListTeam call until the test releases it, so
// responses can be completed out of order.
type gatedGoals struct {
	perfsync.GoalsAPI

	entered chan int
	mu      sync.Mutex
	calls   int
	replies []chan reply
}

func newGatedGoals(api perfsync.GoalsAPI, calls int) *gatedGoals {
	g := &gatedGoals{GoalsAPI: api, entered: make(chan int, calls)}
	for i := 0; i < calls; i++ {
		g.replies = append(g.replies, make(chan reply, 1))
	}
	return g
}

func (g *gatedGoals) ListTeam(ctx context.Context, page, size int) (map[string]any, error) {
	g.mu.Lock()
	idx := g.calls
	g.calls++
	g.mu.Unlock()

	g.entered <- idx
	r := <-g.replies[idx]
	return r.payload, r.err
}

// release completes the idx-th ListTeam call.
func (g *gatedGoals) release(idx int, payload map[string]any, err error) {
	g.replies[idx] <- reply{payload: payload, err: err}
}

func teamPage(number, totalPages int, goals ...map[string]any) map[string]any {
	content := make([]any, 0, len(goals))
	for _, goal := range goals {
		content = append(content, goal)
	}
	return map[string]any{
		"content":    content,
		"number":     float64(number),
		"totalPages": float64(totalPages),
	}
}

func goalJSON(id int64, title string, status perfsync.GoalStatus) map[string]any {
	return map[string]any{
		"id":         float64(id),
		"title":      title,
		"employeeId": float64(2),
		"status":     string(status),
		"keyResults": []any{
			map[string]any{"id": float64(id * 10), "metric": "NPS", "targetValue": float64(10), "currentValue": float64(0)},
		},
	}
}

func nan() float64 {
	return math.NaN()
}

// parkingSequencer blocks the first Begin call right after its token has been
// issued, until resume is closed.
type parkingSequencer struct {
	*state.Sequencer

	calls  atomic.Int32
	parked chan struct{}
	resume chan struct{}
}

func newParkingSequencer() *parkingSequencer {
	return &parkingSequencer{
		Sequencer: state.NewSequencer(),
		parked:    make(chan struct{}),
		resume:    make(chan struct{}),
	}
}

func (s *parkingSequencer) Begin(key string) uint64 {
	token := s.Sequencer.Begin(key)
	if s.calls.Add(1) == 1 {
		close(s.parked)
		<-s.resume
	}
	return token
}
