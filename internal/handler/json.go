package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// 请求体只包含少量字段，导入名单也只传位置
const maxRequestBody = 1 << 20

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.respond(w, r, http.StatusOK, Response{Success: true, Message: msg, Data: data})
}

// errorResponse 用于业务上的失败，HTTP 状态码仍然是 200
func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.respond(w, r, http.StatusOK, Response{Message: msg})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.respond(w, r, http.StatusInternalServerError, Response{Message: "服务器内部错误"})
}

// badRequest 把校验错误翻译成中文，其他错误直接展示
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
		return
	}
	h.errorResponse(w, r, err.Error())
}

// decodeRequest 解析并校验 JSON 请求体，返回 false 时响应已经写出
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(dst)

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		h.errorResponse(w, r, "请求体不能为空")
		return false
	case errors.As(err, &maxBytesErr):
		h.errorResponse(w, r, "请求体过大")
		return false
	case err != nil:
		h.errorResponse(w, r, "请求格式错误")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	return true
}
