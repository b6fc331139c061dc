package port

import (
	"context"

	"securetodo/internal/core/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, username string, passwordHash string) (domain.User, error)
}
