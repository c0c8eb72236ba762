package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
)

// fakeTransport keeps per-connection inboxes and group membership in memory.
type fakeTransport struct {
	mu         sync.Mutex
	groups     map[string][]string
	inbox      map[string][]entity.Event
	closed     map[string]bool
	broadcasts []entity.Event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		groups: make(map[string][]string),
		inbox:  make(map[string][]entity.Event),
		closed: make(map[string]bool),
	}
}

func (that *fakeTransport) AddToGroup(connectionID, groupID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.groups[groupID] = append(that.groups[groupID], connectionID)
}

func (that *fakeTransport) SendTo(connectionID string, event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.deliver(connectionID, event)
}

func (that *fakeTransport) Broadcast(groupID string, event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.broadcasts = append(that.broadcasts, event)
	for _, connectionID := range that.groups[groupID] {
		that.deliver(connectionID, event)
	}
}

// close stops delivery to a connection, like the hub does before reporting a disconnect.
func (that *fakeTransport) close(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed[connectionID] = true
}

func (that *fakeTransport) deliver(connectionID string, event entity.Event) {
	if that.closed[connectionID] {
		return
	}

	that.inbox[connectionID] = append(that.inbox[connectionID], event)
}

func (that *fakeTransport) actions(connectionID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	actions := make([]string, 0, len(that.inbox[connectionID]))
	for _, event := range that.inbox[connectionID] {
		actions = append(actions, event.Action)
	}

	return actions
}

func (that *fakeTransport) events(connectionID string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.Event(nil), that.inbox[connectionID]...)
}

func (that *fakeTransport) countBroadcasts(action string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	count := 0
	for _, event := range that.broadcasts {
		if event.Action == action {
			count++
		}
	}

	return count
}

type mockResultRecorder struct {
	mock.Mock
}

func (that *mockResultRecorder) Save(ctx context.Context, result *entity.MatchResult) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockResultRecorder) expectSave(match func(result *entity.MatchResult) bool, err error) {
	that.On("Save", mock.Anything, mock.MatchedBy(match)).Return(err).Once()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(groups groupRegistrar) *Coordinator {
	coordinator := NewCoordinator(discardLogger(), groups)

	var seq atomic.Int64
	coordinator.newID = func() string {
		return fmt.Sprintf("match-%d", seq.Add(1))
	}

	return coordinator
}
