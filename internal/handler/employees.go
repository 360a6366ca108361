package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/utils"
)

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string   `json:"name" validate:"required"`
		Age               int32    `json:"age" validate:"required,gt=0"`
		Role              string   `json:"role" validate:"required,oneof=staff student"`
		AvailableWeekdays []string `json:"availableWeekdays" validate:"required,min=1"`
		MaxHoursPerDay    float64  `json:"maxHoursPerDay" validate:"required,gt=0"`
		PreferredShifts   []string `json:"preferredShifts"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := &domain.Employee{
		Name:              req.Name,
		Age:               req.Age,
		Role:              domain.EmployeeRole(req.Role),
		AvailableWeekdays: toWeekdays(req.AvailableWeekdays),
		MaxHoursPerDay:    req.MaxHoursPerDay,
		PreferredShifts:   req.PreferredShifts,
	}

	if err := utils.ValidateEmployeeAvailability(employee); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateEmployee(employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "employees_name_key":
			h.badRequest(w, r, errors.New("员工姓名已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "员工创建成功", employee)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)
	h.successResponse(w, r, "获取员工信息成功", employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              *string  `json:"name"`
		Age               *int32   `json:"age" validate:"omitempty,gt=0"`
		Role              *string  `json:"role" validate:"omitempty,oneof=staff student"`
		AvailableWeekdays []string `json:"availableWeekdays"`
		MaxHoursPerDay    *float64 `json:"maxHoursPerDay" validate:"omitempty,gt=0"`
		PreferredShifts   []string `json:"preferredShifts"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.Age != nil {
		employee.Age = *req.Age
	}
	if req.Role != nil {
		employee.Role = domain.EmployeeRole(*req.Role)
	}
	if req.AvailableWeekdays != nil {
		employee.AvailableWeekdays = toWeekdays(req.AvailableWeekdays)
	}
	if req.MaxHoursPerDay != nil {
		employee.MaxHoursPerDay = *req.MaxHoursPerDay
	}
	if req.PreferredShifts != nil {
		employee.PreferredShifts = req.PreferredShifts
	}

	if err := utils.ValidateEmployeeAvailability(employee); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateEmployee(employee); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新员工信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新员工信息成功", employee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if err := h.repository.DeleteEmployee(employee.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除员工成功", nil)
}

func (h *Handler) CreateTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"startDate" validate:"required"`
		EndDate   string `json:"endDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.badRequest(w, r, errors.New("开始日期格式错误"))
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.badRequest(w, r, errors.New("结束日期格式错误"))
		return
	}

	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	request := &domain.TimeOffRequest{
		EmployeeID: employee.ID,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     domain.TimeOffPending,
	}

	if err := utils.ValidateTimeOffRequestDates(request); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateTimeOffRequest(request); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "休假申请创建成功", request)
}

func (h *Handler) ReviewTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	requestIDParam := chi.URLParam(r, "id")
	requestID, err := uuid.Parse(requestIDParam)
	if err != nil {
		h.errorResponse(w, r, "休假申请ID无效")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=approved denied"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	request, err := h.repository.GetTimeOffRequestByID(requestID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "休假申请不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 只有待审批的申请才允许审批
	if request.Status != domain.TimeOffPending {
		h.errorResponse(w, r, "该休假申请已经审批过")
		return
	}

	request.Status = domain.TimeOffStatus(req.Status)
	if err := h.repository.UpdateTimeOffRequest(request); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "审批失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "审批成功", request)
}

func toWeekdays(days []string) []domain.Weekday {
	weekdays := make([]domain.Weekday, 0, len(days))
	for _, day := range days {
		weekdays = append(weekdays, domain.Weekday(day))
	}
	return weekdays
}
