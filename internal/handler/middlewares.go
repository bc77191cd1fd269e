package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("已处理请求",
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"ip", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.internalServerError(w, r, fmt.Errorf("panic: %v", rec))
			fmt.Print(string(debug.Stack())) // slog 打印堆栈不便阅读
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate 校验 cookie 中的令牌并加载当前教练
//
// 角色和停用状态每次都从数据库读取，修改后立即生效
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			h.errorResponse(w, r, "用户未登录")
			return
		}

		coachID, err := h.parseToken(cookie.Value)
		if err != nil {
			h.errorResponse(w, r, "登录已失效，请重新登录")
			return
		}

		coach, err := h.accounts.GetCoachByID(coachID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "账号不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		next.ServeHTTP(w, withValue(r, currentCoachKey, coach))
	})
}

func (h *Handler) requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, currentCoach(r).Role) {
				h.errorResponse(w, r, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// 已停用的账号可以登录查看信息，但不能发起分队
func (h *Handler) requireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentCoach(r).Active {
			h.errorResponse(w, r, "您的账号已停用")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) targetCoach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, "教练 ID 无效")
			return
		}

		coach, err := h.accounts.GetCoachByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "教练不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		next.ServeHTTP(w, withValue(r, targetCoachKey, coach))
	})
}

func (h *Handler) playerInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		player, err := h.repository.GetPlayerByID(chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "球员不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		next.ServeHTTP(w, withValue(r, playerKey, player))
	})
}
