package domain

import "strings"

type Task struct {
	ID        int
	Title     string `validate:"required,notblank"`
	Completed bool   `db:"is_completed"`
	UserID    int    `db:"user_id"`
}

func (t *Task) BelongsToUser(userID int) bool {
	return t.UserID == userID
}

// ValidateTitle is the store-side guard; callers validate the full struct first.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return Validation("Title is required")
	}

	return nil
}
