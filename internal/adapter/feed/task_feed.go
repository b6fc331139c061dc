package feed

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	"securetodo/internal/core/telemetry"
)

// TaskFeed caches one snapshot per observed user for the feed's whole life and
// fans refreshed snapshots out to that user's subscribers.
type TaskFeed struct {
	repo    port.TaskRepository
	logger  zerolog.Logger
	metrics *telemetry.AppMetrics

	mu        sync.Mutex
	snapshots *cache.Cache
	subs      map[int]map[int]chan []domain.Task
	nextSubID int
}

func NewTaskFeed(repo port.TaskRepository, logger zerolog.Logger, metrics *telemetry.AppMetrics) *TaskFeed {
	return &TaskFeed{
		repo:      repo,
		logger:    logger,
		metrics:   metrics,
		snapshots: cache.New(cache.NoExpiration, 0),
		subs:      make(map[int]map[int]chan []domain.Task),
	}
}

// Observe registers a subscriber for userID. The current snapshot is loaded on
// first observation and delivered immediately. The subscription closes when
// ctx ends or Close is called.
func (f *TaskFeed) Observe(ctx context.Context, userID int) (*port.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, ok := f.snapshot(userID)

	if !ok {
		tasks, err := f.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		f.snapshots.Set(key(userID), tasks, cache.NoExpiration)
		snapshot = tasks
	}

	ch := make(chan []domain.Task, 1)
	ch <- slices.Clone(snapshot)

	subID := f.nextSubID
	f.nextSubID++

	if f.subs[userID] == nil {
		f.subs[userID] = make(map[int]chan []domain.Task)
	}
	f.subs[userID][subID] = ch
	f.metrics.AddFeedSubscribers(1)

	done := make(chan struct{})
	sub := port.NewSubscription(userID, ch, func() {
		close(done)
		f.unsubscribe(userID, subID)
	})

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-done:
			}
		}()
	}

	f.logger.Debug().Int("user_id", userID).Int("subscription", subID).Msg("Task feed subscribed")

	return sub, nil
}

// Refresh recomputes the user's list and pushes it. Users nobody has observed
// yet have no cached entry and are skipped.
func (f *TaskFeed) Refresh(ctx context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.snapshot(userID); !ok {
		return nil
	}

	tasks, err := f.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	f.snapshots.Set(key(userID), tasks, cache.NoExpiration)

	for _, ch := range f.subs[userID] {
		// keep only the newest snapshot in the buffer
		select {
		case <-ch:
		default:
		}
		ch <- slices.Clone(tasks)
	}

	f.metrics.RecordFeedPush(len(f.subs[userID]))

	return nil
}

// Snapshot returns the cached list for userID without touching the store.
func (f *TaskFeed) Snapshot(userID int) ([]domain.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, ok := f.snapshot(userID)

	return slices.Clone(tasks), ok
}

func (f *TaskFeed) SubscriberCount(userID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.subs[userID])
}

func (f *TaskFeed) snapshot(userID int) ([]domain.Task, bool) {
	cached, ok := f.snapshots.Get(key(userID))
	if !ok {
		return nil, false
	}

	return cached.([]domain.Task), true
}

func (f *TaskFeed) unsubscribe(userID, subID int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.subs[userID][subID]
	if !ok {
		return
	}

	delete(f.subs[userID], subID)
	if len(f.subs[userID]) == 0 {
		delete(f.subs, userID)
	}
	close(ch)

	f.metrics.AddFeedSubscribers(-1)
}

func key(userID int) string {
	return strconv.Itoa(userID)
}
