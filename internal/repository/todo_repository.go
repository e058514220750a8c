package repository

import (
	"context"
	"database/sql"

	"todolist/internal/apperrors"
	"todolist/internal/models"
)

type TodoRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Update(ctx context.Context, userID string, todoID string, req *models.UpdateTodoRequest) (*models.Todo, error)
	Delete(ctx context.Context, userID string, todoID string) error
}

type todoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) ListByUser(ctx context.Context, userID string) ([]models.Todo, error) {
	query := `
		SELECT id, text, completed, user_id
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.UserID); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *todoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, text, completed, user_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, todo.ID, todo.Text, todo.Completed, todo.UserID)
	return err
}

// Update scopes the row to the owner; a todo belonging to another user is
// indistinguishable from a missing one.
func (r *todoRepository) Update(ctx context.Context, userID string, todoID string, req *models.UpdateTodoRequest) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET text = COALESCE($1, text),
			completed = COALESCE($2, completed)
		WHERE id = $3 AND user_id = $4
		RETURNING id, text, completed, user_id
	`

	var t models.Todo
	err := r.db.QueryRowContext(ctx, query, req.Text, req.Completed, todoID, userID).Scan(
		&t.ID, &t.Text, &t.Completed, &t.UserID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *todoRepository) Delete(ctx context.Context, userID string, todoID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`, todoID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
