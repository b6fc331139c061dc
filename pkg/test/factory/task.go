package factory

import (
	"context"

	fab "github.com/Goldziher/fabricator"

	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
)

func NewTask[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}

// CreateTasks stores one task per title, in order, for userID.
func CreateTasks(ctx context.Context, repo port.TaskRepository, userID int, titles ...string) ([]domain.Task, error) {
	created := make([]domain.Task, 0, len(titles))

	for _, title := range titles {
		task := NewTask[domain.Task](map[string]any{
			"Title":  title,
			"UserID": userID,
		})

		saved, err := repo.Create(ctx, task.Title, task.UserID)
		if err != nil {
			return nil, err
		}

		created = append(created, saved)
	}

	return created, nil
}
