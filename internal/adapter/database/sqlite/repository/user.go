package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"securetodo/internal/adapter/database/sqlite"
	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	tel "securetodo/internal/core/telemetry"
)

const usersTable = "users"

var userColumns = []string{"id", "username", "password_hash"}

type UserRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		// Use NoOpProbe if none provided
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	ctx, op := tel.StartOperation(ctx, ur.telemetry, "GetByID", "user", map[string]interface{}{
		"db.table": usersTable,
		"user.id":  id,
	})

	user, err := ur.getOne(ctx, "GetByID", sq.Eq{"id": id})

	return user, op.End(err)
}

// GetByUsername is an exact, case-sensitive match.
func (ur *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, op := tel.StartOperation(ctx, ur.telemetry, "GetByUsername", "user", map[string]interface{}{
		"db.table": usersTable,
	})

	user, err := ur.getOne(ctx, "GetByUsername", sq.Eq{"username": username})

	return user, op.End(err)
}

// Create relies on the UNIQUE constraint rather than a pre-check, so two
// concurrent registrations of the same name cannot both succeed.
func (ur *UserRepository) Create(ctx context.Context, username string, passwordHash string) (domain.User, error) {
	ctx, op := tel.StartOperation(ctx, ur.telemetry, "Create", "user", map[string]interface{}{
		"db.table":     usersTable,
		"db.operation": "INSERT",
	})

	query, args, err := ur.db.QueryBuilder.Insert(usersTable).
		Columns("username", "password_hash").
		Values(username, passwordHash).
		ToSql()

	if err != nil {
		return domain.User{}, op.End(domain.Storage("build insert user", err))
	}

	result, err := ur.db.ExecContext(ctx, query, args...)

	if sqlite.IsUniqueViolation(err) {
		return domain.User{}, op.End(domain.Conflict(domain.MsgUsernameTaken))
	}

	if err != nil {
		return domain.User{}, op.End(domain.Storage("insert user", err))
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.User{}, op.End(domain.Storage("read user id", err))
	}

	user := domain.User{ID: int(id), Username: username, PasswordHash: passwordHash}

	ur.telemetry.RecordBusinessEvent(ctx, "registered", "user", user.Username, user.ID, nil)

	return user, op.End(nil)
}

func (ur *UserRepository) getOne(ctx context.Context, operation string, where sq.Eq) (domain.User, error) {
	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, domain.Storage("build "+operation, err)
	}

	rows, err := ur.db.QueryContext(ctx, query, args...)

	if err != nil {
		return domain.User{}, domain.Storage(operation, err)
	}

	defer rows.Close()

	var user domain.User
	err = ur.scanner.ScanRowToStruct(rows, &user)

	if sqlite.IsNoRows(err) {
		return domain.User{}, domain.NotFound(domain.MsgUserNotFound)
	}

	if err != nil {
		return domain.User{}, domain.Storage(operation, err)
	}

	return user, nil
}
