package port

import (
	"context"

	"securetodo/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username string, password string) domain.AuthResult
	Login(ctx context.Context, username string, password string) domain.AuthResult
	Logout()
	SetCurrentUser(ctx context.Context, userID int) error
	CurrentUser() (domain.User, bool)
}

type PasswordHasher interface {
	Scheme() string
	Hash(password string) (string, error)
	Verify(password string, digest string) (bool, error)
}
