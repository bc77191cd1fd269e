package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/service"
)

type buildSquadsRequest struct {
	NumSquads      int    `json:"numSquads" validate:"required"`
	PopulationSize int    `json:"populationSize" validate:"omitempty,min=1"`
	DurationMs     int    `json:"durationMs" validate:"omitempty,min=1"`
	Seed           *int64 `json:"seed"`
	Notify         bool   `json:"notify"`
}

func (req *buildSquadsRequest) tunes() bool {
	return req.PopulationSize != 0 || req.DurationMs != 0 || req.Seed != nil
}

type buildSquadsResponse struct {
	BuiltBy string `json:"builtBy"`
	*domain.TournamentResult
}

// BuildSquads 用数据库中的全部球员分队，教练只能使用默认参数
func (h *Handler) BuildSquads(w http.ResponseWriter, r *http.Request) {
	var req buildSquadsRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	coach := currentCoach(r)
	if req.tunes() && !coach.CanTune() {
		h.errorResponse(w, r, "只有管理员可以调整分队参数")
		return
	}

	players, err := h.roster.GetAllPlayers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	result, err := h.build(r, players, service.BuildRequest{
		NumSquads:      req.NumSquads,
		PopulationSize: req.PopulationSize,
		Duration:       time.Duration(req.DurationMs) * time.Millisecond,
		Seed:           req.Seed,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, ErrBuildInProgress):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 分队结果已经算出来了，记录失败不影响返回
	if err := h.accounts.RecordBuild(coach.ID, time.Now()); err != nil {
		slog.Warn("无法记录分队", "coach", coach.Username, "error", err)
	}

	if req.Notify {
		err := h.mail.Publish(domain.MailMessage{
			Type: "squads_built",
			To:   coach.Email,
			Data: domain.SquadsBuiltMailData{FullName: coach.FullName, Result: *result},
		})
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "分队成功", buildSquadsResponse{BuiltBy: coach.Username, TournamentResult: result})
}

// build 在持有分队锁的情况下运行一次分队
func (h *Handler) build(r *http.Request, players []*domain.Player, req service.BuildRequest) (*domain.TournamentResult, error) {
	unlock, err := h.buildLock.TryLock(r.Context())
	if err != nil {
		return nil, err
	}
	defer unlock()

	return h.squadService.Build(r.Context(), players, req)
}
