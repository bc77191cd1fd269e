package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

func TestLogin(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)

	rec, resp := call(t, h, http.MethodPost, "/auth/login", map[string]string{"username": "zhangwei", "password": "correct-horse"}, nil, nil)
	require.True(t, resp.Success, resp.Message)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	var me domain.Coach
	_, resp = call(t, h, http.MethodGet, "/me", nil, cookie, &me)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "zhangwei", me.Username)
	assert.Empty(t, me.PasswordHash)
}

func TestLoginFailures(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{name: "密码错误", body: map[string]string{"username": "zhangwei", "password": "wrong"}, message: loginFailedMessage},
		{name: "用户不存在", body: map[string]string{"username": "lisi", "password": "correct-horse"}, message: loginFailedMessage},
		{name: "缺少密码", body: map[string]string{"username": "zhangwei"}, message: "Password为必填字段"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := call(t, h, http.MethodPost, "/auth/login", tt.body, nil, nil)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	coach := accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)

	expired, _, err := h.issueToken(coach, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  tokenIssuer,
		Subject: "1",
	}).SignedString([]byte(h.config.JWT.Secret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"乱码":     "not-a-token",
		"已过期":    expired,
		"密钥不同":   otherSecret,
		"没有过期时间": noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			_, resp := call(t, h, http.MethodGet, "/me", nil, &http.Cookie{Name: tokenCookieName, Value: token}, nil)
			assert.False(t, resp.Success)
			assert.Equal(t, "登录已失效，请重新登录", resp.Message)
		})
	}
}

func TestAuthenticateDeletedCoach(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	coach := accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)
	cookie := cookieFor(t, h, coach)

	require.NoError(t, accountsOf(h).DeleteCoach(coach.ID))

	_, resp := call(t, h, http.MethodGet, "/me", nil, cookie, nil)
	assert.Equal(t, "账号不存在", resp.Message)
}

func TestRoleChangeTakesEffectWithoutNewToken(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	coach := accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)
	cookie := cookieFor(t, h, coach)

	body := map[string]string{"username": "lisi", "fullName": "李四", "email": "lisi@example.com"}

	_, resp := call(t, h, http.MethodPost, "/coaches", body, cookie, nil)
	assert.Equal(t, "权限不足", resp.Message)

	coach.Role = domain.RoleAdmin
	require.NoError(t, accountsOf(h).UpdateCoach(coach))

	_, resp = call(t, h, http.MethodPost, "/coaches", body, cookie, nil)
	assert.True(t, resp.Success, resp.Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})

	rec, resp := call(t, h, http.MethodPost, "/auth/logout", nil, nil, nil)
	require.True(t, resp.Success)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}

func TestChangeMyPassword(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	coach := accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)
	cookie := cookieFor(t, h, coach)

	_, resp := call(t, h, http.MethodPatch, "/me/password", map[string]string{"oldPassword": "wrong", "newPassword": "battery-staple"}, cookie, nil)
	assert.Equal(t, "旧密码错误", resp.Message)

	_, resp = call(t, h, http.MethodPatch, "/me/password", map[string]string{"oldPassword": "correct-horse", "newPassword": "correct-horse"}, cookie, nil)
	assert.False(t, resp.Success)

	_, resp = call(t, h, http.MethodPatch, "/me/password", map[string]string{"oldPassword": "correct-horse", "newPassword": "battery-staple"}, cookie, nil)
	require.True(t, resp.Success, resp.Message)

	_, resp = call(t, h, http.MethodPost, "/auth/login", map[string]string{"username": "zhangwei", "password": "battery-staple"}, nil, nil)
	assert.True(t, resp.Success, resp.Message)
	_, resp = call(t, h, http.MethodPost, "/auth/login", map[string]string{"username": "zhangwei", "password": "correct-horse"}, nil, nil)
	assert.False(t, resp.Success)
}

func TestMalformedBody(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})

	_, resp := call(t, h, http.MethodPost, "/auth/login", nil, nil, nil)
	assert.Equal(t, "请求体不能为空", resp.Message)

	_, resp = call(t, h, http.MethodPost, "/auth/login", "not an object", nil, nil)
	assert.Equal(t, "请求格式错误", resp.Message)
}
