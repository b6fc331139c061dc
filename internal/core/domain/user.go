package domain

import "strings"

type User struct {
	ID           int
	Username     string `validate:"required,notblank"`
	PasswordHash string `db:"password_hash" validate:"required"`
}

// Credentials is what a caller submits to register or log in.
type Credentials struct {
	Username string `validate:"required,notblank"`
	Password string `validate:"required,notblank"`
}

func (c Credentials) IsBlank() bool {
	return strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == ""
}
