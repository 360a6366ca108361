package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

func (r *Repository) GetAllLocations() ([]*domain.Location, error) {
	query := `
		SELECT id, name, address, required_staff_morning, required_staff_afternoon, required_staff_night, notes, created_at, version
		FROM locations
		ORDER BY created_at, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location := &domain.Location{}
		dst := []any{&location.ID, &location.Name, &location.Address, &location.RequiredStaffMorning, &location.RequiredStaffAfternoon, &location.RequiredStaffNight, &location.Notes, &location.CreatedAt, &location.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *Repository) GetLocationByID(id uuid.UUID) (*domain.Location, error) {
	query := `
		SELECT name, address, required_staff_morning, required_staff_afternoon, required_staff_night, notes, created_at, version
		FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	location := &domain.Location{
		ID: id,
	}

	dst := []any{&location.Name, &location.Address, &location.RequiredStaffMorning, &location.RequiredStaffAfternoon, &location.RequiredStaffNight, &location.Notes, &location.CreatedAt, &location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return location, nil
}

func (r *Repository) CreateLocation(location *domain.Location) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO locations (id, name, address, required_staff_morning, required_staff_afternoon, required_staff_night, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, version
	`

	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	args := []any{location.ID, location.Name, location.Address, location.RequiredStaffMorning, location.RequiredStaffAfternoon, location.RequiredStaffNight, location.Notes}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.CreatedAt, &location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateLocation(location *domain.Location) error {
	query := `
		UPDATE locations
		SET
			name = $1,
			address = $2,
			required_staff_morning = $3,
			required_staff_afternoon = $4,
			required_staff_night = $5,
			notes = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{location.Name, location.Address, location.RequiredStaffMorning, location.RequiredStaffAfternoon, location.RequiredStaffNight, location.Notes, location.ID, location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.CreatedAt, &location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLocation(id uuid.UUID) error {
	query := `
		DELETE FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
