package handler

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenCookieName = "__squad_builder_token"
	tokenIssuer     = "squad-builder"
)

// 登录失败时不区分用户名不存在和密码错误
const loginFailedMessage = "用户名不存在或密码错误"

func otpKey(username string) string {
	return "squad_builder:otp:" + username
}

// issueToken 签发以教练 ID 为 subject 的令牌，角色不放进令牌
func (h *Handler) issueToken(coach *domain.Coach, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(coach.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString([]byte(h.config.JWT.Secret))
	return signed, expiresAt, err
}

func (h *Handler) parseToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(h.config.JWT.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(claims.Subject, 10, 64)
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, value string, expires time.Time) {
	secure := h.config.Environment == "production"

	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}

	coach, err := h.accounts.GetCoachByUsername(req.Username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, loginFailedMessage)
		return
	case err != nil:
		h.internalServerError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(coach.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.errorResponse(w, r, loginFailedMessage)
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	token, expiresAt, err := h.issueToken(coach, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.setTokenCookie(w, token, expiresAt)

	h.successResponse(w, r, "登录成功", coach)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", time.Unix(0, 0))
	h.successResponse(w, r, "登出成功", nil)
}

func (h *Handler) redisContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}

	// 用户不存在时同样返回成功，避免接口被用来探测用户名
	const sent = "重置密码所需验证码已通过邮件发送"

	coach, err := h.accounts.GetCoachByUsername(req.Username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.successResponse(w, r, sent, nil)
		return
	case err != nil:
		h.internalServerError(w, r, err)
		return
	}

	otp := utils.GenerateRandomOTP()

	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	ttl := time.Duration(h.config.OTP.Expiration) * time.Second
	if err := h.redisClient.Set(ctx, otpKey(coach.Username), otp, ttl).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	err = h.mail.Publish(domain.MailMessage{
		Type: "reset_password",
		To:   coach.Email,
		Data: domain.ResetPasswordMailData{
			FullName:   coach.FullName,
			OTP:        otp,
			Expiration: int(ttl / time.Minute),
		},
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, sent, nil)
}

// ConfirmResetPassword 验证码只能使用一次，输错也会作废
func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}

	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	otp, err := h.redisClient.GetDel(ctx, otpKey(req.Username)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		h.errorResponse(w, r, "验证码错误或已过期")
		return
	case err != nil:
		h.internalServerError(w, r, err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(otp), []byte(req.OTP)) != 1 {
		h.errorResponse(w, r, "验证码错误或已过期")
		return
	}

	coach, err := h.accounts.GetCoachByUsername(req.Username)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.setPassword(coach, req.Password); err != nil {
		h.passwordUpdateFailed(w, r, err)
		return
	}

	h.successResponse(w, r, "重置密码成功", nil)
}

func (h *Handler) setPassword(coach *domain.Coach, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	coach.PasswordHash = string(hash)
	return h.accounts.UpdateCoach(coach)
}

func (h *Handler) passwordUpdateFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		h.errorResponse(w, r, "修改密码失败，请重试")
		return
	}
	h.internalServerError(w, r, err)
}
