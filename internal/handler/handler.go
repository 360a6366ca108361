package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/config"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/lifecycle"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	manager     *lifecycle.Manager
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mgr *lifecycle.Manager, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		manager:     mgr,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/operators", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleAdmin})).Post("/", h.CreateOperator)
			r.Get("/", h.GetAllOperatorInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.operatorInfo)
				r.Get("/", h.GetOperatorInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.OperatorRole{domain.RoleAdmin})).Patch("/", h.UpdateOperator)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.OperatorRole{domain.RoleAdmin})).Delete("/", h.DeleteOperator)
				r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleAdmin})).Patch("/password", h.UpdateOperatorPassword)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", h.CreateEmployee)
			r.Get("/", h.GetAllEmployees)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employee)
				r.Get("/", h.GetEmployee)
				r.Patch("/", h.UpdateEmployee)
				r.Delete("/", h.DeleteEmployee)
				r.Post("/time-off", h.CreateTimeOffRequest)
			})
		})
		r.Patch("/time-off/{id}", h.ReviewTimeOffRequest)

		r.Route("/locations", func(r chi.Router) {
			r.Post("/", h.CreateLocation)
			r.Get("/", h.GetAllLocations)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.location)
				r.Get("/", h.GetLocation)
				r.Patch("/", h.UpdateLocation)
				r.Delete("/", h.DeleteLocation)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/generate", h.GenerateSchedules)
			r.Get("/", h.ListSchedules)
			r.Get("/can-generate-lab", h.CanGenerateLab)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedule)
				r.Get("/", h.GetSchedule)
				r.Patch("/cell", h.EditScheduleCell)
				r.With(h.myInfo).Post("/publish", h.PublishSchedule)
				r.Delete("/", h.DeleteSchedule)
			})
		})
	})
}
