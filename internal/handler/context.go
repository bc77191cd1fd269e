package handler

import (
	"context"
	"net/http"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

type ctxKey int

const (
	currentCoachKey ctxKey = iota
	targetCoachKey
	playerKey
)

// currentCoach 返回已登录的教练，只能在 authenticate 之后调用
func currentCoach(r *http.Request) *domain.Coach {
	return r.Context().Value(currentCoachKey).(*domain.Coach)
}

func withValue(r *http.Request, key ctxKey, v any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, v))
}
