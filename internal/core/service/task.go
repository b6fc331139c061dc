package service

import (
	"context"

	"github.com/rs/zerolog"

	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	"securetodo/internal/core/telemetry"
)

// TaskService writes through the store and then refreshes the owner's feed, so
// observers see every mutation once it has been persisted.
type TaskService struct {
	repo      port.TaskRepository
	feed      port.TaskFeed
	validator port.Validator
	telemetry port.Telemetry
	metrics   *telemetry.AppMetrics
	logger    zerolog.Logger
}

type TaskDeps struct {
	Repo      port.TaskRepository
	Feed      port.TaskFeed
	Validator port.Validator
	Telemetry port.Telemetry
	Metrics   *telemetry.AppMetrics
	Logger    zerolog.Logger
}

func NewTaskService(deps TaskDeps) port.TaskService {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NewNoOpProbe()
	}

	return &TaskService{
		repo:      deps.Repo,
		feed:      deps.Feed,
		validator: deps.Validator,
		telemetry: deps.Telemetry,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

func (ts *TaskService) Tasks(ctx context.Context, userID int) ([]domain.Task, error) {
	ctx, done := track(ctx, ts.telemetry, "task", "list", userID)

	tasks, err := ts.repo.ListByUser(ctx, userID)
	done(err)

	return tasks, err
}

func (ts *TaskService) Add(ctx context.Context, title string, userID int) (domain.Task, error) {
	ctx, done := track(ctx, ts.telemetry, "task", "add", userID)

	task, err := ts.add(ctx, title, userID)
	done(err)
	ts.finish(ctx, "add", userID, err)

	return task, err
}

func (ts *TaskService) add(ctx context.Context, title string, userID int) (domain.Task, error) {
	if err := ts.validate(domain.Task{Title: title, UserID: userID}); err != nil {
		return domain.Task{}, err
	}

	return ts.repo.Create(ctx, title, userID)
}

func (ts *TaskService) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, done := track(ctx, ts.telemetry, "task", "update", task.UserID)

	updated, err := ts.update(ctx, task)
	done(err)
	ts.finish(ctx, "update", task.UserID, err)

	return updated, err
}

func (ts *TaskService) update(ctx context.Context, task domain.Task) (domain.Task, error) {
	if err := ts.validate(task); err != nil {
		return domain.Task{}, err
	}

	return ts.repo.Update(ctx, task)
}

func (ts *TaskService) Delete(ctx context.Context, task domain.Task) error {
	ctx, done := track(ctx, ts.telemetry, "task", "delete", task.UserID)

	err := ts.repo.Delete(ctx, task)
	done(err)
	ts.finish(ctx, "delete", task.UserID, err)

	return err
}

func (ts *TaskService) Observe(ctx context.Context, userID int) (*port.Subscription, error) {
	return ts.feed.Observe(ctx, userID)
}

func (ts *TaskService) validate(task domain.Task) error {
	if ts.validator == nil {
		return domain.ValidateTitle(task.Title)
	}

	return ts.validator.ValidateStruct(task)
}

// finish records the mutation and, when it succeeded, pushes the new list.
// A failed refresh is logged; the mutation itself already happened.
func (ts *TaskService) finish(ctx context.Context, operation string, userID int, err error) {
	ts.metrics.RecordTaskOperation(operation, err)

	if err != nil {
		ts.logger.Warn().Err(err).Str("operation", operation).Int("user_id", userID).Msg("Task mutation failed")
		return
	}

	if ts.feed == nil {
		return
	}

	if err := ts.feed.Refresh(ctx, userID); err != nil {
		ts.telemetry.RecordError(ctx, "task.refresh", err, map[string]interface{}{"user.id": userID})
		ts.logger.Error().Err(err).Int("user_id", userID).Msg("Task feed refresh failed")
	}
}
