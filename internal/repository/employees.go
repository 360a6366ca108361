package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// 员工的三张子表（可用星期、偏好班次、休假申请）彼此独立，
// 并联 LEFT JOIN 会产生笛卡尔积，所以休假申请走 JOIN 重组，
// 另外两张子表分开查询后再装配

func (r *Repository) GetAllEmployees() ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			e.id,
			e.name,
			e.age,
			e.role,
			e.max_hours_per_day,
			e.created_at,
			e.version,
			t.id,
			t.start_date,
			t.end_date,
			t.status,
			t.created_at,
			t.version
		FROM employees e
		LEFT JOIN time_off_requests t ON e.id = t.employee_id
		ORDER BY e.created_at, e.id, t.created_at
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employeesMap := make(map[uuid.UUID]*domain.Employee)
	order := make([]uuid.UUID, 0)

	for rows.Next() {
		var row struct {
			ID             uuid.UUID
			Name           string
			Age            int32
			Role           domain.EmployeeRole
			MaxHoursPerDay float64
			CreatedAt      time.Time
			Version        int32

			RequestID        uuid.NullUUID
			StartDate        sql.NullTime
			EndDate          sql.NullTime
			Status           sql.NullString
			RequestCreatedAt sql.NullTime
			RequestVersion   sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Age,
			&row.Role,
			&row.MaxHoursPerDay,
			&row.CreatedAt,
			&row.Version,
			&row.RequestID,
			&row.StartDate,
			&row.EndDate,
			&row.Status,
			&row.RequestCreatedAt,
			&row.RequestVersion,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		employee, exists := employeesMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个员工，需要在 map 中初始化
			employee = &domain.Employee{
				ID:                row.ID,
				Name:              row.Name,
				Age:               row.Age,
				Role:              row.Role,
				AvailableWeekdays: make([]domain.Weekday, 0),
				MaxHoursPerDay:    row.MaxHoursPerDay,
				PreferredShifts:   make([]string, 0),
				TimeOffRequests:   make([]domain.TimeOffRequest, 0),
				CreatedAt:         row.CreatedAt,
				Version:           row.Version,
			}
			employeesMap[row.ID] = employee
			order = append(order, row.ID)
		}

		// 如果 RequestID 为空，则表示这个员工没有任何休假申请
		if !row.RequestID.Valid {
			continue
		}

		employee.TimeOffRequests = append(employee.TimeOffRequests, domain.TimeOffRequest{
			ID:         row.RequestID.UUID,
			EmployeeID: row.ID,
			StartDate:  row.StartDate.Time,
			EndDate:    row.EndDate.Time,
			Status:     domain.TimeOffStatus(row.Status.String),
			CreatedAt:  row.RequestCreatedAt.Time,
			Version:    row.RequestVersion.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.fillAvailableWeekdays(ctx, employeesMap); err != nil {
		return nil, err
	}
	if err := r.fillPreferredShifts(ctx, employeesMap); err != nil {
		return nil, err
	}

	employees := make([]*domain.Employee, 0, len(order))
	for _, id := range order {
		employees = append(employees, employeesMap[id])
	}

	return employees, nil
}

func (r *Repository) GetEmployeeByID(id uuid.UUID) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			e.name,
			e.age,
			e.role,
			e.max_hours_per_day,
			e.created_at,
			e.version,
			t.id,
			t.start_date,
			t.end_date,
			t.status,
			t.created_at,
			t.version
		FROM employees e
		LEFT JOIN time_off_requests t ON e.id = t.employee_id
		WHERE e.id = $1
		ORDER BY t.created_at
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employee *domain.Employee

	for rows.Next() {
		var row struct {
			Name           string
			Age            int32
			Role           domain.EmployeeRole
			MaxHoursPerDay float64
			CreatedAt      time.Time
			Version        int32

			RequestID        uuid.NullUUID
			StartDate        sql.NullTime
			EndDate          sql.NullTime
			Status           sql.NullString
			RequestCreatedAt sql.NullTime
			RequestVersion   sql.NullInt32
		}

		dst := []any{
			&row.Name,
			&row.Age,
			&row.Role,
			&row.MaxHoursPerDay,
			&row.CreatedAt,
			&row.Version,
			&row.RequestID,
			&row.StartDate,
			&row.EndDate,
			&row.Status,
			&row.RequestCreatedAt,
			&row.RequestVersion,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if employee == nil {
			employee = &domain.Employee{
				ID:                id,
				Name:              row.Name,
				Age:               row.Age,
				Role:              row.Role,
				AvailableWeekdays: make([]domain.Weekday, 0),
				MaxHoursPerDay:    row.MaxHoursPerDay,
				PreferredShifts:   make([]string, 0),
				TimeOffRequests:   make([]domain.TimeOffRequest, 0),
				CreatedAt:         row.CreatedAt,
				Version:           row.Version,
			}
		}

		if !row.RequestID.Valid {
			continue
		}

		employee.TimeOffRequests = append(employee.TimeOffRequests, domain.TimeOffRequest{
			ID:         row.RequestID.UUID,
			EmployeeID: id,
			StartDate:  row.StartDate.Time,
			EndDate:    row.EndDate.Time,
			Status:     domain.TimeOffStatus(row.Status.String),
			CreatedAt:  row.RequestCreatedAt.Time,
			Version:    row.RequestVersion.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if employee == nil {
		return nil, sql.ErrNoRows
	}

	employeesMap := map[uuid.UUID]*domain.Employee{id: employee}
	if err := r.fillAvailableWeekdays(ctx, employeesMap); err != nil {
		return nil, err
	}
	if err := r.fillPreferredShifts(ctx, employeesMap); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) fillAvailableWeekdays(ctx context.Context, employeesMap map[uuid.UUID]*domain.Employee) error {
	query := `
		SELECT employee_id, day FROM employee_available_days ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID uuid.UUID
		var day domain.Weekday
		if err := rows.Scan(&employeeID, &day); err != nil {
			return err
		}
		if employee, exists := employeesMap[employeeID]; exists {
			employee.AvailableWeekdays = append(employee.AvailableWeekdays, day)
		}
	}

	return rows.Err()
}

func (r *Repository) fillPreferredShifts(ctx context.Context, employeesMap map[uuid.UUID]*domain.Employee) error {
	query := `
		SELECT employee_id, shift FROM employee_preferred_shifts ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID uuid.UUID
		var shift string
		if err := rows.Scan(&employeeID, &shift); err != nil {
			return err
		}
		if employee, exists := employeesMap[employeeID]; exists {
			employee.PreferredShifts = append(employee.PreferredShifts, shift)
		}
	}

	return rows.Err()
}

func (r *Repository) CreateEmployee(employee *domain.Employee) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO employees (id, name, age, role, max_hours_per_day)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, version
	`
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	args := []any{employee.ID, employee.Name, employee.Age, employee.Role, employee.MaxHoursPerDay}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&employee.CreatedAt, &employee.Version); err != nil {
		return err
	}

	if err := insertEmployeeChildren(ctx, tx, employee); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateEmployee(employee *domain.Employee) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE employees
		SET
			name = $1,
			age = $2,
			role = $3,
			max_hours_per_day = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	args := []any{employee.Name, employee.Age, employee.Role, employee.MaxHoursPerDay, employee.ID, employee.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&employee.CreatedAt, &employee.Version); err != nil {
		return err
	}

	// 子表整体重建，避免逐条对比差异
	query = `
		DELETE FROM employee_available_days WHERE employee_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, employee.ID); err != nil {
		return err
	}
	query = `
		DELETE FROM employee_preferred_shifts WHERE employee_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, employee.ID); err != nil {
		return err
	}

	if err := insertEmployeeChildren(ctx, tx, employee); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertEmployeeChildren(ctx context.Context, tx *sql.Tx, employee *domain.Employee) error {
	for _, day := range employee.AvailableWeekdays {
		query := `
			INSERT INTO employee_available_days (employee_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, employee.ID, day); err != nil {
			return err
		}
	}

	for _, shift := range employee.PreferredShifts {
		query := `
			INSERT INTO employee_preferred_shifts (employee_id, shift)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, employee.ID, shift); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) DeleteEmployee(id uuid.UUID) error {
	query := `
		DELETE FROM employees WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateTimeOffRequest(request *domain.TimeOffRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO time_off_requests (id, employee_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, version
	`

	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.Status == "" {
		request.Status = domain.TimeOffPending
	}
	args := []any{request.ID, request.EmployeeID, request.StartDate, request.EndDate, request.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.CreatedAt, &request.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTimeOffRequestByID(id uuid.UUID) (*domain.TimeOffRequest, error) {
	query := `
		SELECT employee_id, start_date, end_date, status, created_at, version
		FROM time_off_requests WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	request := &domain.TimeOffRequest{
		ID: id,
	}

	dst := []any{&request.EmployeeID, &request.StartDate, &request.EndDate, &request.Status, &request.CreatedAt, &request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return request, nil
}

func (r *Repository) UpdateTimeOffRequest(request *domain.TimeOffRequest) error {
	query := `
		UPDATE time_off_requests
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING employee_id, start_date, end_date, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{request.Status, request.ID, request.Version}
	dst := []any{&request.EmployeeID, &request.StartDate, &request.EndDate, &request.CreatedAt, &request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}
