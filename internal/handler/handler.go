package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/render"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/roster"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/service"
)

// RosterSource 提供参与分队的全部球员
type RosterSource interface {
	GetAllPlayers() ([]*domain.Player, error)
}

// AccountStore 保存教练账号以及每个教练的分队记录
type AccountStore interface {
	GetCoachByID(id int64) (*domain.Coach, error)
	GetCoachByUsername(username string) (*domain.Coach, error)
	EmailTaken(email string, exceptID int64) (bool, error)
	CreateCoach(coach *domain.Coach) error
	UpdateCoach(coach *domain.Coach) error
	DeleteCoach(id int64) error
	RecordBuild(id int64, at time.Time) error
}

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	redisClient  *redis.Client
	accounts     AccountStore
	mail         MailQueue
	roster       RosterSource
	rosterLoader *roster.Loader
	squadService *service.SquadService
	buildLock    BuildLock
	metrics      http.Handler // 为 nil 时不暴露 /metrics

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo *repository.Repository,
	mailCh *amqp.Channel,
	rdb *redis.Client,
	svc *service.SquadService,
	loader *roster.Loader,
	metrics http.Handler,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		redisClient:  rdb,
		accounts:     repo,
		mail:         NewAMQPMailQueue(mailCh, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second),
		roster:       repo,
		rosterLoader: loader,
		squadService: svc,
		buildLock:    NewRedisBuildLock(rdb, cfg.Optimizer.LockExpiration),
		metrics:      metrics,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 分队页面不需要登录
	h.Mux.Get("/", h.HomePage)
	h.Mux.Post("/", h.ResetPage)
	h.Mux.Get("/make", h.MakeSquadsPage)
	h.Mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(render.Static())))

	if h.metrics != nil {
		h.Mux.Handle("/metrics", h.metrics)
	}

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/reset-password/require", h.RequireResetPassword)
		r.Post("/reset-password/confirm", h.ConfirmResetPassword)
	})

	h.Mux.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/me", h.GetMe)
		r.Patch("/me/password", h.ChangeMyPassword)

		r.Route("/coaches", func(r chi.Router) {
			r.Use(h.requireRole(domain.RoleAdmin))
			r.Post("/", h.CreateCoach)
			r.With(h.targetCoach).Patch("/{id}", h.UpdateCoach)
			r.With(h.targetCoach).Delete("/{id}", h.DeleteCoach)
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.GetAllPlayers)
			r.With(h.requireRole(domain.RoleAdmin)).Post("/", h.CreatePlayer)
			r.With(h.requireRole(domain.RoleAdmin)).Post("/import", h.ImportPlayers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.playerInfo)
				r.Get("/", h.GetPlayer)
				r.With(h.requireRole(domain.RoleAdmin)).Patch("/", h.UpdatePlayer)
				r.With(h.requireRole(domain.RoleAdmin)).Delete("/", h.DeletePlayer)
			})
		})

		r.With(h.requireActive).Post("/squads/build", h.BuildSquads)
	})
}
