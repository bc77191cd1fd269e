package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/roster"
)

func (h *Handler) GetAllPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.roster.GetAllPlayers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取球员列表成功", players)
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        string `json:"id" validate:"omitempty,max=64"`
		FirstName string `json:"firstName" validate:"required_without=LastName"`
		LastName  string `json:"lastName" validate:"required_without=FirstName"`
		Skating   int    `json:"skating" validate:"min=0"`
		Shooting  int    `json:"shooting" validate:"min=0"`
		Checking  int    `json:"checking" validate:"min=0"`
	}

	if !h.decodeRequest(w, r, &req) {
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	player := &domain.Player{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Ratings: map[domain.Skill]int{
			domain.SkillSkating:  req.Skating,
			domain.SkillShooting: req.Shooting,
			domain.SkillChecking: req.Checking,
		},
	}

	if err := h.repository.CreatePlayer(player); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "players_pkey":
			h.badRequest(w, r, errors.New("球员 ID 已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "球员创建成功", player)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(playerKey).(*domain.Player)
	h.successResponse(w, r, "获取球员信息成功", player)
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Skating   *int    `json:"skating" validate:"omitempty,min=0"`
		Shooting  *int    `json:"shooting" validate:"omitempty,min=0"`
		Checking  *int    `json:"checking" validate:"omitempty,min=0"`
	}

	if !h.decodeRequest(w, r, &req) {
		return
	}

	player := r.Context().Value(playerKey).(*domain.Player)

	if req.FirstName != nil {
		player.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		player.LastName = *req.LastName
	}
	if req.Skating != nil {
		player.Ratings[domain.SkillSkating] = *req.Skating
	}
	if req.Shooting != nil {
		player.Ratings[domain.SkillShooting] = *req.Shooting
	}
	if req.Checking != nil {
		player.Ratings[domain.SkillChecking] = *req.Checking
	}

	// 修改后的球员仍然需要满足分队的要求
	if err := roster.Validate([]*domain.Player{player}); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdatePlayer(player); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新球员信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新球员信息成功", player)
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(playerKey).(*domain.Player)

	if err := h.repository.DeletePlayer(player.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除球员成功", nil)
}

var errLocalRoster = errors.New("只能从 HTTP(S) 或 S3 地址导入名单，本地文件只能使用配置中的名单")

// importLocation 请求中只允许远程地址，服务器上的文件只能是配置中的名单
func (h *Handler) importLocation(requested string) (string, error) {
	switch {
	case requested == "", requested == h.config.Roster.Location:
		return h.config.Roster.Location, nil
	case roster.IsRemote(requested):
		return requested, nil
	default:
		return "", errLocalRoster
	}
}

// ImportPlayers 从 HTTP 地址、S3 或者配置中的名单文件导入球员
func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
		Replace  bool   `json:"replace"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}

	location, err := h.importLocation(req.Location)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Roster.FetchTimeout)*time.Second)
	defer cancel()

	players, err := h.rosterLoader.Load(ctx, location)
	if err != nil {
		// 名单本身的问题需要告诉用户，其余的是服务器的问题
		switch {
		case errors.Is(err, roster.ErrInvalidJSON),
			errors.Is(err, roster.ErrNoPlayerList),
			errors.Is(err, roster.ErrPlayerWithoutName),
			errors.Is(err, roster.ErrInvalidRating),
			errors.Is(err, roster.ErrDuplicatePlayerID),
			errors.Is(err, roster.ErrUnsupportedLocation),
			errors.Is(err, roster.ErrBadStatus):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	for _, p := range players {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	}

	if err := h.repository.UpsertPlayers(players, req.Replace); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "导入球员成功", players)
}
