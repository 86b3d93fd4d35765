package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const taskColumns = `id, content, notes, due_date, completed, created_at`

// PostgresStore persists tasks in the tasks table. Every query runs in its
// own trace span.
type PostgresStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// NewPostgresStore wraps a pool. A nil tracer uses the global provider.
func NewPostgresStore(pool *pgxpool.Pool, tracer trace.Tracer) *PostgresStore {
	if tracer == nil {
		tracer = otel.Tracer("cloudsweep/tasks")
	}
	return &PostgresStore{pool: pool, tracer: tracer}
}

// Connect opens and pings a pool for databaseURL
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Content, &t.Notes, &t.DueDate, &t.Completed, &t.CreatedAt)
	return t, err
}

// List implements Store
func (s *PostgresStore) List(ctx context.Context) ([]Task, error) {
	var out []Task
	err := ExecuteAndTrace(ctx, s.tracer, "postgres.list_tasks", dbAttrs(), func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `select `+taskColumns+` from tasks order by created_at desc, id desc`)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		defer rows.Close()

		out = make([]Task, 0, 16)
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return fmt.Errorf("failed to scan task: %w", err)
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	return out, err
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := ExecuteAndTrace(ctx, s.tracer, "postgres.get_task", dbAttrs(attribute.Int64("task_id", id)), func(ctx context.Context) error {
		var err error
		t, err = scanTask(s.pool.QueryRow(ctx, `select `+taskColumns+` from tasks where id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get task %d: %w", id, err)
		}
		return nil
	})
	return t, err
}

// Create implements Store
func (s *PostgresStore) Create(ctx context.Context, in NewTask) (Task, error) {
	content, err := ValidateContent(in.Content)
	if err != nil {
		return Task{}, err
	}

	var t Task
	err = ExecuteAndTrace(ctx, s.tracer, "postgres.create_task", dbAttrs(attribute.Bool("has_due_date", in.DueDate != nil)), func(ctx context.Context) error {
		const q = `
insert into tasks (content, notes, due_date)
values ($1, $2, $3)
returning ` + taskColumns
		var err error
		t, err = scanTask(s.pool.QueryRow(ctx, q, content, in.Notes, in.DueDate))
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	return t, err
}

// Update implements Store
func (s *PostgresStore) Update(ctx context.Context, id int64, patch Patch) (Task, error) {
	if patch.Content != nil {
		content, err := ValidateContent(*patch.Content)
		if err != nil {
			return Task{}, err
		}
		patch.Content = &content
	}

	var t Task
	err := ExecuteAndTrace(ctx, s.tracer, "postgres.update_task", dbAttrs(attribute.Int64("task_id", id)), func(ctx context.Context) error {
		const q = `
update tasks
set content = coalesce($2, content),
    completed = coalesce($3, completed),
    notes = case when $4 then $5 else notes end
where id = $1
returning ` + taskColumns
		var err error
		t, err = scanTask(s.pool.QueryRow(ctx, q, id, patch.Content, patch.Completed, patch.NotesSet, patch.Notes))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update task %d: %w", id, err)
		}
		return nil
	})
	return t, err
}

// Delete implements Store
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	return ExecuteAndTrace(ctx, s.tracer, "postgres.delete_task", dbAttrs(attribute.Int64("task_id", id)), func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, `delete from tasks where id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete task %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
