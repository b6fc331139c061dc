package port

import (
	"context"

	"securetodo/internal/core/domain"
)

type TaskRepository interface {
	ListByUser(ctx context.Context, userID int) ([]domain.Task, error)
	Create(ctx context.Context, title string, userID int) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, task domain.Task) error
}

type TaskService interface {
	Tasks(ctx context.Context, userID int) ([]domain.Task, error)
	Add(ctx context.Context, title string, userID int) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, task domain.Task) error
	Observe(ctx context.Context, userID int) (*Subscription, error)
}
