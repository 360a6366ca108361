package repository

import (
	"context"
	"time"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

func (r *Repository) GetOperatorByID(id int64) (*domain.Operator, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, is_active, created_at, version
		FROM operators WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	operator := &domain.Operator{
		ID: id,
	}

	dst := []any{&operator.Username, &operator.PasswordHash, &operator.FullName, &operator.Email, &operator.Role, &operator.IsActive, &operator.CreatedAt, &operator.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return operator, nil
}

func (r *Repository) GetOperatorByUsername(username string) (*domain.Operator, error) {
	query := `
		SELECT id, password_hash, full_name, email, role, is_active, created_at, version
		FROM operators WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	operator := &domain.Operator{
		Username: username,
	}

	dst := []any{&operator.ID, &operator.PasswordHash, &operator.FullName, &operator.Email, &operator.Role, &operator.IsActive, &operator.CreatedAt, &operator.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return operator, nil
}

func (r *Repository) UpdateOperator(operator *domain.Operator) error {
	query := `
		UPDATE operators
		SET
		    password_hash = $1,
			email = $2,
			role = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING username, full_name, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{operator.PasswordHash, operator.Email, operator.Role, operator.IsActive, operator.ID, operator.Version}
	dst := []any{&operator.Username, &operator.FullName, &operator.CreatedAt, &operator.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllOperators() ([]*domain.Operator, error) {
	query := `
		SELECT id, username, password_hash, full_name, email, role, is_active, created_at, version FROM operators
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	operators := make([]*domain.Operator, 0)
	for rows.Next() {
		operator := &domain.Operator{}
		dst := []any{&operator.ID, &operator.Username, &operator.PasswordHash, &operator.FullName, &operator.Email, &operator.Role, &operator.IsActive, &operator.CreatedAt, &operator.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		operators = append(operators, operator)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return operators, nil
}

func (r *Repository) DeleteOperator(id int64) error {
	query := `
		DELETE FROM operators WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateOperator(operator *domain.Operator) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO operators (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{operator.Username, operator.PasswordHash, operator.FullName, operator.Email, operator.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&operator.ID, &operator.IsActive, &operator.CreatedAt, &operator.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM operators WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
