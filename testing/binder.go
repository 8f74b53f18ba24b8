package testing

import (
	"context"
	"sync"

	"github.com/lelandrichardson/recycler/types"
)

// RecordingBinder is a SlotBinder that captures every rebind notification,
// for asserting on reconciliation output.
type RecordingBinder struct {
	mu      sync.Mutex
	rebinds []types.RebindNotification
	err     error
}

var _ types.SlotBinder = (*RecordingBinder)(nil)

// NewRecordingBinder creates an empty recording binder.
func NewRecordingBinder() *RecordingBinder {
	return &RecordingBinder{}
}

// BindSlot records the notification and returns the injected error, if any.
func (b *RecordingBinder) BindSlot(_ context.Context, rebind types.RebindNotification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rebinds = append(b.rebinds, rebind)

	return b.err
}

// Rebinds returns a copy of all recorded notifications in arrival order.
func (b *RecordingBinder) Rebinds() []types.RebindNotification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]types.RebindNotification, len(b.rebinds))
	copy(out, b.rebinds)

	return out
}

// Count returns the number of recorded notifications.
func (b *RecordingBinder) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.rebinds)
}

// Reset discards all recorded notifications.
func (b *RecordingBinder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rebinds = nil
}

// FailWith makes subsequent BindSlot calls return err (nil restores success).
// Notifications are still recorded.
func (b *RecordingBinder) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}
