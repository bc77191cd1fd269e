package handler

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// GetMe 返回当前教练，包括分队次数和最近一次分队时间
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取个人信息成功", currentCoach(r))
}

func (h *Handler) ChangeMyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8,nefield=OldPassword"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}

	me := currentCoach(r)
	if bcrypt.CompareHashAndPassword([]byte(me.PasswordHash), []byte(req.OldPassword)) != nil {
		h.errorResponse(w, r, "旧密码错误")
		return
	}

	if err := h.setPassword(me, req.NewPassword); err != nil {
		h.passwordUpdateFailed(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}
