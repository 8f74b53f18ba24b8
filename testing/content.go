package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/lelandrichardson/recycler/content"
	"github.com/lelandrichardson/recycler/types"
)

// ScriptedContent is a content actor whose replies the test controls.
//
// By default it answers every request immediately, like content.Responder.
// Hold() parks inbound requests instead; Release() then answers them in
// arrival order. That makes supersession and stale-reply scenarios
// deterministic: hold, trigger more requests, release in whatever order the
// test needs.
type ScriptedContent struct {
	t         *testing.T
	transport types.ContentTransport

	mu      sync.Mutex
	holding bool
	held    []types.RangeRequest

	stop chan struct{}
	done chan struct{}
}

// NewScriptedContent creates and starts a scripted content actor. It is
// stopped automatically via t.Cleanup().
//
// Parameters:
//   - t: Testing context for cleanup and failure reporting
//   - transport: Content-side transport to serve
//
// Returns:
//   - *ScriptedContent: Running actor
func NewScriptedContent(t *testing.T, transport types.ContentTransport) *ScriptedContent {
	t.Helper()

	s := &ScriptedContent{
		t:         t,
		transport: transport,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	t.Cleanup(s.Stop)

	return s
}

// Hold parks subsequent requests instead of answering them.
func (s *ScriptedContent) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holding = true
}

// Release answers all held requests in arrival order and resumes immediate
// replies.
func (s *ScriptedContent) Release() {
	s.mu.Lock()
	held := s.held
	s.held = nil
	s.holding = false
	s.mu.Unlock()

	for _, req := range held {
		s.answer(req)
	}
}

// ReleaseOne answers the oldest held request, keeping the rest parked.
// Returns false when nothing is held.
func (s *ScriptedContent) ReleaseOne() bool {
	s.mu.Lock()
	if len(s.held) == 0 {
		s.mu.Unlock()

		return false
	}
	req := s.held[0]
	s.held = s.held[1:]
	s.mu.Unlock()

	s.answer(req)

	return true
}

// HeldCount returns the number of parked requests.
func (s *ScriptedContent) HeldCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.held)
}

// Stop terminates the actor. Idempotent.
func (s *ScriptedContent) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

func (s *ScriptedContent) run() {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case req, ok := <-s.transport.Requests():
			if !ok {
				return
			}
			s.mu.Lock()
			holding := s.holding
			if holding {
				s.held = append(s.held, req)
			}
			s.mu.Unlock()
			if !holding {
				s.answer(req)
			}
		}
	}
}

func (s *ScriptedContent) answer(req types.RangeRequest) {
	if err := s.transport.SendAssignment(context.Background(), content.GroupByType(req)); err != nil {
		s.t.Logf("scripted content: failed to send assignment for request %d: %v", req.RequestID, err)
	}
}
