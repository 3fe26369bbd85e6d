package storage

import (
	"context"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

const todoColumns = `id, servicio_id, text, done, created_at, updated_at`

// ErrTodoNotFound is returned by todo lookups.
var ErrTodoNotFound = apperr.NotFound("Todo not found")

func scanTodo(row scanner) (*models.Todo, error) {
	var t models.Todo
	if err := row.Scan(&t.ID, &t.ServicioID, &t.Text, &t.Done, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTodos returns the checklist of a servicio in creation order.
func (s *Storage) ListTodos(ctx context.Context, servicioID int64) ([]models.Todo, error) {
	const op = "storage.ListTodos"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE servicio_id = $1 ORDER BY created_at, id`, servicioID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// CreateTodo adds a checklist entry to a servicio.
func (s *Storage) CreateTodo(ctx context.Context, servicioID int64, in models.TodoInput) (*models.Todo, error) {
	const op = "storage.CreateTodo"
	t, err := scanTodo(s.DB.QueryRowContext(ctx,
		`INSERT INTO todos (servicio_id, text, done) VALUES ($1, $2, $3) RETURNING `+todoColumns,
		servicioID, in.Text, in.Done))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return t, nil
}

// UpdateTodo replaces the text and state of a todo.
func (s *Storage) UpdateTodo(ctx context.Context, id int64, in models.TodoInput) (*models.Todo, error) {
	const op = "storage.UpdateTodo"
	t, err := scanTodo(s.DB.QueryRowContext(ctx,
		`UPDATE todos SET text = $1, done = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3 RETURNING `+todoColumns,
		in.Text, in.Done, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTodoNotFound))
	}
	return t, nil
}

// ToggleTodo flips the done flag of a todo.
func (s *Storage) ToggleTodo(ctx context.Context, id int64) (*models.Todo, error) {
	const op = "storage.ToggleTodo"
	t, err := scanTodo(s.DB.QueryRowContext(ctx,
		`UPDATE todos SET done = NOT done, updated_at = CURRENT_TIMESTAMP WHERE id = $1 RETURNING `+todoColumns, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTodoNotFound))
	}
	return t, nil
}

// DeleteTodo removes a todo and returns it.
func (s *Storage) DeleteTodo(ctx context.Context, id int64) (*models.Todo, error) {
	const op = "storage.DeleteTodo"
	t, err := scanTodo(s.DB.QueryRowContext(ctx,
		`DELETE FROM todos WHERE id = $1 RETURNING `+todoColumns, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTodoNotFound))
	}
	return t, nil
}

// TodoOwner returns the cliente owning the servicio of a todo.
func (s *Storage) TodoOwner(ctx context.Context, id int64) (*int64, error) {
	const op = "storage.TodoOwner"
	var owner *int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT s.cliente_id FROM todos t JOIN servicios s ON t.servicio_id = s.id WHERE t.id = $1`, id).Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTodoNotFound))
	}
	return owner, nil
}
