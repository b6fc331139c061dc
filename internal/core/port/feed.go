package port

import (
	"context"
	"sync"

	"securetodo/internal/core/domain"
)

// TaskFeed keeps the latest task list per user and pushes a fresh copy to
// every subscriber of that user whenever Refresh runs.
type TaskFeed interface {
	Observe(ctx context.Context, userID int) (*Subscription, error)
	Refresh(ctx context.Context, userID int) error
}

// Subscription delivers full task list snapshots on C. Only the newest
// undelivered snapshot is kept, so a slow reader never sees a stale backlog.
type Subscription struct {
	C      <-chan []domain.Task
	UserID int

	once   sync.Once
	cancel func()
}

func NewSubscription(userID int, c <-chan []domain.Task, cancel func()) *Subscription {
	return &Subscription{C: c, UserID: userID, cancel: cancel}
}

// Close unregisters the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
