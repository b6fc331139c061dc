package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"securetodo/internal/adapter/database/sqlite"
	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	tel "securetodo/internal/core/telemetry"
)

const tasksTable = "tasks"

var taskColumns = []string{"id", "title", "is_completed", "user_id"}

type TaskRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

// ListByUser returns the user's tasks newest first. The result is never nil.
func (tr *TaskRepository) ListByUser(ctx context.Context, userID int) ([]domain.Task, error) {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "ListByUser", "task", map[string]interface{}{
		"db.table": tasksTable,
		"user.id":  userID,
	})

	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From(tasksTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC").
		ToSql()

	if err != nil {
		return []domain.Task{}, op.End(domain.Storage("build list tasks", err))
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return []domain.Task{}, op.End(domain.Storage("list tasks", err))
	}

	defer rows.Close()

	tasks := make([]domain.Task, 0)

	if err := tr.scanner.ScanRowsToSlice(rows, &tasks); err != nil {
		return []domain.Task{}, op.End(domain.Storage("scan tasks", err))
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_returned": len(tasks)})

	return tasks, op.End(nil)
}

func (tr *TaskRepository) Create(ctx context.Context, title string, userID int) (domain.Task, error) {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "Create", "task", map[string]interface{}{
		"db.table":     tasksTable,
		"db.operation": "INSERT",
		"user.id":      userID,
	})

	if err := domain.ValidateTitle(title); err != nil {
		return domain.Task{}, op.End(err)
	}

	query, args, err := tr.db.QueryBuilder.Insert(tasksTable).
		Columns("title", "is_completed", "user_id").
		Values(title, false, userID).
		ToSql()

	if err != nil {
		return domain.Task{}, op.End(domain.Storage("build insert task", err))
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if sqlite.IsForeignKeyViolation(err) {
		return domain.Task{}, op.End(domain.NotFound(domain.MsgUserNotFound))
	}

	if err != nil {
		return domain.Task{}, op.End(domain.Storage("insert task", err))
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Task{}, op.End(domain.Storage("read task id", err))
	}

	task := domain.Task{ID: int(id), Title: title, Completed: false, UserID: userID}

	tr.telemetry.RecordBusinessEvent(ctx, "created", "task", itoa(task.ID), userID, nil)

	return task, op.End(nil)
}

// Update overwrites title and completion flag. The owner never changes and a
// task is only found within its owner's rows.
func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "Update", "task", map[string]interface{}{
		"db.table":     tasksTable,
		"db.operation": "UPDATE",
		"task.id":      task.ID,
		"user.id":      task.UserID,
	})

	if err := domain.ValidateTitle(task.Title); err != nil {
		return domain.Task{}, op.End(err)
	}

	query, args, err := tr.db.QueryBuilder.Update(tasksTable).
		Set("title", task.Title).
		Set("is_completed", task.Completed).
		Where(sq.Eq{"id": task.ID, "user_id": task.UserID}).
		ToSql()

	if err != nil {
		return domain.Task{}, op.End(domain.Storage("build update task", err))
	}

	if err := tr.execAffectingOne(ctx, "update task", query, args); err != nil {
		return domain.Task{}, op.End(err)
	}

	tr.telemetry.RecordBusinessEvent(ctx, "updated", "task", itoa(task.ID), task.UserID, map[string]interface{}{
		"completed": task.Completed,
	})

	return task, op.End(nil)
}

func (tr *TaskRepository) Delete(ctx context.Context, task domain.Task) error {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "Delete", "task", map[string]interface{}{
		"db.table":     tasksTable,
		"db.operation": "DELETE",
		"task.id":      task.ID,
		"user.id":      task.UserID,
	})

	query, args, err := tr.db.QueryBuilder.Delete(tasksTable).
		Where(sq.Eq{"id": task.ID, "user_id": task.UserID}).
		ToSql()

	if err != nil {
		return op.End(domain.Storage("build delete task", err))
	}

	if err := tr.execAffectingOne(ctx, "delete task", query, args); err != nil {
		return op.End(err)
	}

	tr.telemetry.RecordBusinessEvent(ctx, "deleted", "task", itoa(task.ID), task.UserID, nil)

	return op.End(nil)
}

func (tr *TaskRepository) execAffectingOne(ctx context.Context, operation string, query string, args []interface{}) error {
	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.Storage(operation, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return domain.Storage(operation, err)
	}

	if rowsAffected == 0 {
		return domain.NotFound(domain.MsgTaskNotFound)
	}

	return nil
}
