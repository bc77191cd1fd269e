package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccounts struct {
	mu      sync.Mutex
	nextID  int64
	coaches map[int64]*domain.Coach
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{coaches: make(map[int64]*domain.Coach)}
}

func (f *fakeAccounts) add(t *testing.T, username, password string, role domain.Role) *domain.Coach {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	coach := &domain.Coach{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     username,
		Email:        username + "@example.com",
		Role:         role,
	}
	require.NoError(t, f.CreateCoach(coach))
	return coach
}

func (f *fakeAccounts) get(id int64) *domain.Coach {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.coaches[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

func (f *fakeAccounts) GetCoachByID(id int64) (*domain.Coach, error) {
	if c := f.get(id); c != nil {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccounts) GetCoachByUsername(username string) (*domain.Coach, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.coaches {
		if c.Username == username {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccounts) EmailTaken(email string, exceptID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.coaches {
		if c.Email == email && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) CreateCoach(coach *domain.Coach) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.coaches {
		if c.Username == coach.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "coaches_username_key"}
		}
		if c.Email == coach.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "coaches_email_key"}
		}
	}

	f.nextID++
	coach.ID = f.nextID
	coach.Active = true
	coach.CreatedAt = time.Now()
	coach.Version = 1

	cp := *coach
	f.coaches[coach.ID] = &cp
	return nil
}

func (f *fakeAccounts) UpdateCoach(coach *domain.Coach) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.coaches[coach.ID]
	if !ok || stored.Version != coach.Version {
		return sql.ErrNoRows
	}

	coach.Version++
	cp := *coach
	f.coaches[coach.ID] = &cp
	return nil
}

func (f *fakeAccounts) DeleteCoach(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.coaches, id)
	return nil
}

func (f *fakeAccounts) RecordBuild(id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.coaches[id]; ok {
		c.BuildCount++
		c.LastBuildAt = &at
	}
	return nil
}

type fakeMail struct {
	sent []domain.MailMessage
}

func (f *fakeMail) Publish(msg domain.MailMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

func accountsOf(h *Handler) *fakeAccounts {
	return h.accounts.(*fakeAccounts)
}

func mailOf(h *Handler) *fakeMail {
	return h.mail.(*fakeMail)
}

func cookieFor(t *testing.T, h *Handler, coach *domain.Coach) *http.Cookie {
	t.Helper()

	token, expiresAt, err := h.issueToken(coach, time.Now())
	require.NoError(t, err)
	return &http.Cookie{Name: tokenCookieName, Value: token, Expires: expiresAt}
}

// call 发送 JSON 请求并解析统一的响应格式，data 解析到 data 中（可以为 nil）
func call(t *testing.T, h *Handler, method, target string, body any, cookie *http.Cookie, data any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}

	return rec, Response{Success: resp.Success, Message: resp.Message}
}
