package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const columns = `id, task, username, date, task_type, status, priority, description`

type TodoRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTodoRepo(pool *pgxpool.Pool) *TodoRepo { // Конструктор
	return &TodoRepo{
		pool: pool,
	}
}

func (r *TodoRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM todos ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TodoRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM todos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// Create keeps a client-supplied id; id 0 gets max(id)+1.
func (r *TodoRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t = t.Normalize()
	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO todos (id, task, username, date, task_type, status, priority, description)
		VALUES (
			CASE WHEN $1::bigint = 0 THEN (SELECT COALESCE(MAX(id), 0) + 1 FROM todos) ELSE $1::bigint END,
			$2, $3, $4, $5, $6, $7, $8
		)
		RETURNING `+columns,
		t.ID, t.Task, t.Username, t.Date, string(t.TaskType), t.Status, priorityArg(t.Priority), t.Description,
	))
	return created, r.mapError(err)
}

func (r *TodoRepo) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	t = t.Normalize()
	updated, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE todos
		SET task = $2, username = $3, date = $4, task_type = $5, status = $6,
		    priority = $7, description = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		t.ID, t.Task, t.Username, t.Date, string(t.TaskType), t.Status, priorityArg(t.Priority), t.Description,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, ErrorNotFound
	}
	return updated, r.mapError(err)
}

// Patch читает и пишет в одной транзакции, чтобы не потерять параллельные правки
func (r *TodoRepo) Patch(ctx context.Context, id int64, p Patch) (model.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback(ctx)

	current, err := scanTask(tx.QueryRow(ctx, `SELECT `+columns+` FROM todos WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return current, ErrorNotFound
	}
	if err != nil {
		return current, err
	}

	t := p.Apply(current)
	updated, err := scanTask(tx.QueryRow(ctx, `
		UPDATE todos
		SET task = $2, username = $3, date = $4, task_type = $5, status = $6,
		    priority = $7, description = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		t.ID, t.Task, t.Username, t.Date, string(t.TaskType), t.Status, priorityArg(t.Priority), t.Description,
	))
	if err != nil {
		return updated, r.mapError(err)
	}
	return updated, tx.Commit(ctx)
}

func (r *TodoRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var taskType string
	var priority *string
	err := row.Scan(&t.ID, &t.Task, &t.Username, &t.Date, &taskType, &t.Status, &priority, &t.Description)
	if err != nil {
		return model.Task{}, err
	}
	t.TaskType = model.TaskType(taskType)
	if priority != nil {
		t.Priority = model.Ptr(model.Priority(*priority))
	}
	return t, nil
}

func priorityArg(p *model.Priority) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func (r *TodoRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrorConflict
		case "23514":
			return ErrInvalid
		}
	}
	return err
}
