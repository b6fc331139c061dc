package factory

import (
	"context"

	fab "github.com/Goldziher/fabricator"

	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	"securetodo/internal/core/util"
)

const DefaultPassword = "12345678"

func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		hasPasswordHash := false

		for _, data := range customData {
			if _, exists := data["PasswordHash"]; exists {
				hasPasswordHash = true
				break
			}
		}

		if !hasPasswordHash {
			customData = append(customData, map[string]any{
				"PasswordHash": util.HashPassword(DefaultPassword),
			})
		}
	}

	return instance.Build(customData...)
}

// CreateUser builds a user and stores it, returning the persisted record.
func CreateUser(ctx context.Context, repo port.UserRepository, username string) (domain.User, error) {
	user := NewUser[domain.User](map[string]any{
		"Username": username,
	})

	return repo.Create(ctx, user.Username, user.PasswordHash)
}
