package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/lifecycle"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/scheduler"
)

// scheduleError 把排班引擎和生命周期的业务错误原样返回给客户端，
// 其余错误一律作为内部错误处理
func (h *Handler) scheduleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *scheduler.ValidationError
	var configurationErr *scheduler.ConfigurationError
	var dependencyErr *scheduler.DependencyNotMetError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &configurationErr),
		errors.As(err, &dependencyErr),
		errors.Is(err, lifecycle.ErrScheduleNotFound),
		errors.Is(err, lifecycle.ErrScheduleNotDraft),
		errors.Is(err, lifecycle.ErrAlreadyPublished),
		errors.Is(err, lifecycle.ErrSubjectNotFound):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GenerateSchedules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart    string `json:"weekStart" validate:"required"`
		ScheduleType string `json:"scheduleType" validate:"required,oneof=lab-assignment on-call"`
		DraftCount   int    `json:"draftCount" validate:"gte=0"`
		EmptySeed    bool   `json:"emptySeed"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		h.badRequest(w, r, errors.New("周起始日期格式错误"))
		return
	}

	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	locations, err := h.repository.GetAllLocations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	drafts, err := h.manager.Generate(domain.GenerateRequest{
		WeekStart:  weekStart,
		Type:       domain.ScheduleType(req.ScheduleType),
		DraftCount: req.DraftCount,
		EmptySeed:  req.EmptySeed,
	}, employees, locations)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "班表草稿生成成功", drafts)
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	weekParam := r.URL.Query().Get("week")
	typeParam := r.URL.Query().Get("type")

	weekStart, err := time.Parse("2006-01-02", weekParam)
	if err != nil {
		h.badRequest(w, r, errors.New("周起始日期格式错误"))
		return
	}
	scheduleType := domain.ScheduleType(typeParam)
	if scheduleType != domain.ScheduleTypeLabAssignment && scheduleType != domain.ScheduleTypeOnCall {
		h.badRequest(w, r, errors.New("非法的班表类型"))
		return
	}

	schedules, err := h.manager.ListWeek(weekStart, scheduleType)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班表列表成功", schedules)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	h.successResponse(w, r, "获取班表成功", schedule)
}

func (h *Handler) EditScheduleCell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject" validate:"required"`
		Day     string `json:"day" validate:"required"`
		Value   string `json:"value"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	updated, err := h.manager.EditCell(schedule.ID, req.Subject, domain.Weekday(req.Day), req.Value)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "单元格更新成功", updated)
}

func (h *Handler) PublishSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Operator)

	result, err := h.manager.Publish(schedule.ID)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	// 发布成功后向配置的收件人推送通知邮件，
	// 推送失败不影响发布结果，只记录日志
	for _, recipient := range h.config.Email.NotifyRecipients {
		mailMessage := domain.MailMessage{
			Type: "schedule_published",
			To:   recipient,
			Data: domain.SchedulePublishedMailData{
				WeekStart:    domain.WeekKey(schedule.WeekStart),
				ScheduleType: string(schedule.Type),
				PublishedBy:  myInfo.FullName,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			h.logInternalServerError(r, err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		if err := h.mailChannel.PublishWithContext(
			ctx,
			"",
			"email_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		); err != nil {
			h.logInternalServerError(r, err)
		}
		cancel()
	}

	h.successResponse(w, r, "班表发布成功", result)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if err := h.manager.Delete(schedule.ID); err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班表成功", nil)
}

func (h *Handler) CanGenerateLab(w http.ResponseWriter, r *http.Request) {
	weekParam := r.URL.Query().Get("week")

	weekStart, err := time.Parse("2006-01-02", weekParam)
	if err != nil {
		h.badRequest(w, r, errors.New("周起始日期格式错误"))
		return
	}

	ok, err := h.manager.CanGenerateLab(weekStart)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取生成前置条件成功", map[string]bool{"canGenerate": ok})
}
