package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/render"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/service"
)

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page *render.Page) {
	var buf bytes.Buffer
	if err := render.Render(&buf, page); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("写入页面失败", "path", r.URL.Path, "error", err)
	}
}

// HomePage 展示表单，全部球员都在候补名单中
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	page := &render.Page{}

	players, err := h.roster.GetAllPlayers()
	if err != nil {
		h.logInternalServerError(r, err)
		page.Error = "获取球员名单失败"
	}
	page.WaitList = players

	h.renderPage(w, r, page)
}

// ResetPage 丢弃当前的分队结果
func (h *Handler) ResetPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) MakeSquadsPage(w http.ResponseWriter, r *http.Request) {
	input := strings.TrimSpace(r.URL.Query().Get("squads"))
	page := &render.Page{Squads: input}

	players, err := h.roster.GetAllPlayers()
	if err != nil {
		h.logInternalServerError(r, err)
		page.Error = "获取球员名单失败"
		h.renderPage(w, r, page)
		return
	}
	page.WaitList = players

	numSquads, err := strconv.Atoi(input)
	if err != nil {
		page.Error = "请输入小队数量"
		h.renderPage(w, r, page)
		return
	}

	result, err := h.build(r, players, service.BuildRequest{NumSquads: numSquads})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, ErrBuildInProgress):
			page.Error = err.Error()
		default:
			h.logInternalServerError(r, err)
			page.Error = "服务器内部错误"
		}
		h.renderPage(w, r, page)
		return
	}

	page.Result = result
	h.renderPage(w, r, page)
}
