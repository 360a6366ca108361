package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/lifecycle"
)

// Repository 同时充当班表的持久化存储，生命周期相关的不变量
// （发布互斥、草稿原子替换）在事务里强制执行
var _ lifecycle.Store = (*Repository)(nil)

func (r *Repository) ReplaceDrafts(weekStart time.Time, scheduleType domain.ScheduleType, drafts []*domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 旧草稿连同单元格一并删除，已发布的班表不受影响
	query := `
		DELETE FROM schedules WHERE week_start = $1 AND type = $2 AND status = $3
	`
	if _, err := tx.ExecContext(ctx, query, weekStart, scheduleType, domain.ScheduleStatusDraft); err != nil {
		return err
	}

	for _, draft := range drafts {
		query = `
			INSERT INTO schedules (id, week_start, type, status)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, version
		`
		args := []any{draft.ID, weekStart, scheduleType, domain.ScheduleStatusDraft}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&draft.CreatedAt, &draft.Version); err != nil {
			return err
		}

		if err := insertScheduleCells(ctx, tx, draft); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertScheduleCells(ctx context.Context, tx *sql.Tx, s *domain.Schedule) error {
	for subject, row := range s.Assignments {
		for day, value := range row {
			query := `
				INSERT INTO schedule_cells (schedule_id, subject, day, value)
				VALUES ($1, $2, $3, $4)
			`
			if _, err := tx.ExecContext(ctx, query, s.ID, subject, day, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Repository) GetByID(id uuid.UUID) (*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.week_start,
			s.type,
			s.status,
			s.created_at,
			s.version,
			c.subject,
			c.day,
			c.value
		FROM schedules s
		LEFT JOIN schedule_cells c ON s.id = c.schedule_id
		WHERE s.id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule *domain.Schedule

	for rows.Next() {
		var row struct {
			WeekStart time.Time
			Type      domain.ScheduleType
			Status    domain.ScheduleStatus
			CreatedAt time.Time
			Version   int32

			Subject sql.NullString
			Day     sql.NullString
			Value   sql.NullString
		}

		dst := []any{&row.WeekStart, &row.Type, &row.Status, &row.CreatedAt, &row.Version, &row.Subject, &row.Day, &row.Value}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if schedule == nil {
			schedule = &domain.Schedule{
				ID:          id,
				WeekStart:   row.WeekStart,
				Type:        row.Type,
				Status:      row.Status,
				Assignments: make(domain.AssignmentGrid),
				CreatedAt:   row.CreatedAt,
				Version:     row.Version,
			}
		}

		if !row.Subject.Valid {
			continue
		}

		if _, exists := schedule.Assignments[row.Subject.String]; !exists {
			schedule.Assignments[row.Subject.String] = make(map[domain.Weekday]string, len(domain.RotationDays))
		}
		schedule.Assignments[row.Subject.String][domain.Weekday(row.Day.String)] = row.Value.String
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if schedule == nil {
		return nil, lifecycle.ErrScheduleNotFound
	}

	return schedule, nil
}

func (r *Repository) ListWeek(weekStart time.Time, scheduleType domain.ScheduleType) ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.week_start,
			s.status,
			s.created_at,
			s.version,
			c.subject,
			c.day,
			c.value
		FROM schedules s
		LEFT JOIN schedule_cells c ON s.id = c.schedule_id
		WHERE s.week_start = $1 AND s.type = $2
		ORDER BY s.created_at, s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, weekStart, scheduleType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedulesMap := make(map[uuid.UUID]*domain.Schedule)
	order := make([]uuid.UUID, 0)

	for rows.Next() {
		var row struct {
			ID        uuid.UUID
			WeekStart time.Time
			Status    domain.ScheduleStatus
			CreatedAt time.Time
			Version   int32

			Subject sql.NullString
			Day     sql.NullString
			Value   sql.NullString
		}

		dst := []any{&row.ID, &row.WeekStart, &row.Status, &row.CreatedAt, &row.Version, &row.Subject, &row.Day, &row.Value}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		schedule, exists := schedulesMap[row.ID]
		if !exists {
			schedule = &domain.Schedule{
				ID:          row.ID,
				WeekStart:   row.WeekStart,
				Type:        scheduleType,
				Status:      row.Status,
				Assignments: make(domain.AssignmentGrid),
				CreatedAt:   row.CreatedAt,
				Version:     row.Version,
			}
			schedulesMap[row.ID] = schedule
			order = append(order, row.ID)
		}

		if !row.Subject.Valid {
			continue
		}

		if _, exists := schedule.Assignments[row.Subject.String]; !exists {
			schedule.Assignments[row.Subject.String] = make(map[domain.Weekday]string, len(domain.RotationDays))
		}
		schedule.Assignments[row.Subject.String][domain.Weekday(row.Day.String)] = row.Value.String
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	schedules := make([]*domain.Schedule, 0, len(order))
	for _, id := range order {
		schedules = append(schedules, schedulesMap[id])
	}

	return schedules, nil
}

func (r *Repository) GetPublished(weekStart time.Time, scheduleType domain.ScheduleType) (*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id FROM schedules WHERE week_start = $1 AND type = $2 AND status = $3
	`

	var id uuid.UUID
	if err := r.dbpool.QueryRowContext(ctx, query, weekStart, scheduleType, domain.ScheduleStatusPublished).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lifecycle.ErrScheduleNotFound
		}
		return nil, err
	}

	return r.GetByID(id)
}

func (r *Repository) Publish(id uuid.UUID) (*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT week_start, type, status FROM schedules WHERE id = $1 FOR UPDATE
	`

	var weekStart time.Time
	var scheduleType domain.ScheduleType
	var status domain.ScheduleStatus
	if err := tx.QueryRowContext(ctx, query, id).Scan(&weekStart, &scheduleType, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lifecycle.ErrScheduleNotFound
		}
		return nil, err
	}
	if status != domain.ScheduleStatusDraft {
		return nil, lifecycle.ErrScheduleNotDraft
	}

	// 同键的发布互斥在事务里检查，其余草稿保持原样
	query = `
		SELECT EXISTS (
			SELECT 1 FROM schedules
			WHERE week_start = $1 AND type = $2 AND status = $3 AND id <> $4
		)
	`
	alreadyPublished := false
	args := []any{weekStart, scheduleType, domain.ScheduleStatusPublished, id}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&alreadyPublished); err != nil {
		return nil, err
	}
	if alreadyPublished {
		return nil, lifecycle.ErrAlreadyPublished
	}

	query = `
		UPDATE schedules SET status = $1, version = version + 1 WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, query, domain.ScheduleStatusPublished, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *Repository) UpdateCell(id uuid.UUID, subject string, day domain.Weekday, value string) (*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT EXISTS (SELECT 1 FROM schedules WHERE id = $1)
	`
	exists := false
	if err := tx.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, lifecycle.ErrScheduleNotFound
	}

	// 网格的单元格在生成时已全部落库，更新不到行说明该行不存在
	query = `
		UPDATE schedule_cells SET value = $1 WHERE schedule_id = $2 AND subject = $3 AND day = $4
	`
	result, err := tx.ExecContext(ctx, query, value, id, subject, day)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, lifecycle.ErrSubjectNotFound
	}

	query = `
		UPDATE schedules SET version = version + 1 WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *Repository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM schedules WHERE id = $1
	`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return lifecycle.ErrScheduleNotFound
	}

	return nil
}
