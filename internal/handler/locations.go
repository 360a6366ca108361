package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

func (h *Handler) GetAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repository.GetAllLocations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取地点列表成功", locations)
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                   string `json:"name" validate:"required"`
		Address                string `json:"address"`
		RequiredStaffMorning   int32  `json:"requiredStaffMorning" validate:"gte=0"`
		RequiredStaffAfternoon int32  `json:"requiredStaffAfternoon" validate:"gte=0"`
		RequiredStaffNight     int32  `json:"requiredStaffNight" validate:"gte=0"`
		Notes                  string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	location := &domain.Location{
		Name:                   req.Name,
		Address:                req.Address,
		RequiredStaffMorning:   req.RequiredStaffMorning,
		RequiredStaffAfternoon: req.RequiredStaffAfternoon,
		RequiredStaffNight:     req.RequiredStaffNight,
		Notes:                  req.Notes,
	}

	if err := h.repository.CreateLocation(location); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "locations_name_key":
			h.badRequest(w, r, errors.New("地点名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "地点创建成功", location)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)
	h.successResponse(w, r, "获取地点信息成功", location)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                   *string `json:"name"`
		Address                *string `json:"address"`
		RequiredStaffMorning   *int32  `json:"requiredStaffMorning" validate:"omitempty,gte=0"`
		RequiredStaffAfternoon *int32  `json:"requiredStaffAfternoon" validate:"omitempty,gte=0"`
		RequiredStaffNight     *int32  `json:"requiredStaffNight" validate:"omitempty,gte=0"`
		Notes                  *string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	location := r.Context().Value(LocationCtx).(*domain.Location)

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.RequiredStaffMorning != nil {
		location.RequiredStaffMorning = *req.RequiredStaffMorning
	}
	if req.RequiredStaffAfternoon != nil {
		location.RequiredStaffAfternoon = *req.RequiredStaffAfternoon
	}
	if req.RequiredStaffNight != nil {
		location.RequiredStaffNight = *req.RequiredStaffNight
	}
	if req.Notes != nil {
		location.Notes = *req.Notes
	}

	if err := h.repository.UpdateLocation(location); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新地点信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新地点信息成功", location)
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	if err := h.repository.DeleteLocation(location.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除地点成功", nil)
}
