package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUsernameTaken = errors.New("用户名已存在")
	errEmailTaken    = errors.New("邮箱已存在")
)

// coachConflict 把唯一约束冲突转换成可以展示的错误
func coachConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.ConstraintName {
	case "coaches_username_key":
		return errUsernameTaken
	case "coaches_email_key":
		return errEmailTaken
	}
	return nil
}

// checkEmail 在写入前检查邮箱是否被其他教练占用
func (h *Handler) checkEmail(w http.ResponseWriter, r *http.Request, email string, exceptID int64) bool {
	taken, err := h.accounts.EmailTaken(email, exceptID)
	if err != nil {
		h.internalServerError(w, r, err)
		return false
	}
	if taken {
		h.errorResponse(w, r, errEmailTaken.Error())
		return false
	}
	return true
}

// CreateCoach 创建账号，随机生成的初始密码通过邮件发给新教练
func (h *Handler) CreateCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required,alphanum"`
		FullName string `json:"fullName" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Role     string `json:"role" validate:"omitempty,oneof=教练 管理员"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = string(domain.RoleCoach)
	}

	if !h.checkEmail(w, r, req.Email, 0) {
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewCoach.PasswordLength)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	coach := &domain.Coach{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
	}

	if err := h.accounts.CreateCoach(coach); err != nil {
		if conflict := coachConflict(err); conflict != nil {
			h.errorResponse(w, r, conflict.Error())
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	err = h.mail.Publish(domain.MailMessage{
		Type: "new_coach",
		To:   coach.Email,
		Data: domain.NewCoachMailData{
			FullName: coach.FullName,
			Username: coach.Username,
			Password: password,
		},
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "教练创建成功", coach)
}

// UpdateCoach 修改教练资料、角色或停用账号，管理员不能修改自己的角色或停用自己
func (h *Handler) UpdateCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName *string `json:"fullName" validate:"omitnil,min=1"`
		Email    *string `json:"email" validate:"omitnil,email"`
		Role     *string `json:"role" validate:"omitnil,oneof=教练 管理员"`
		Active   *bool   `json:"active"`
	}
	if !h.decodeRequest(w, r, &req) {
		return
	}

	coach := r.Context().Value(targetCoachKey).(*domain.Coach)

	if coach.ID == currentCoach(r).ID {
		if (req.Role != nil && domain.Role(*req.Role) != coach.Role) || (req.Active != nil && !*req.Active) {
			h.errorResponse(w, r, "不能修改自己的角色或停用自己")
			return
		}
	}

	if req.Email != nil && *req.Email != coach.Email {
		if !h.checkEmail(w, r, *req.Email, coach.ID) {
			return
		}
		coach.Email = *req.Email
	}
	if req.FullName != nil {
		coach.FullName = *req.FullName
	}
	if req.Role != nil {
		coach.Role = domain.Role(*req.Role)
	}
	if req.Active != nil {
		coach.Active = *req.Active
	}

	if err := h.accounts.UpdateCoach(coach); err != nil {
		switch conflict := coachConflict(err); {
		case conflict != nil:
			h.errorResponse(w, r, conflict.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新教练信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新教练信息成功", coach)
}

func (h *Handler) DeleteCoach(w http.ResponseWriter, r *http.Request) {
	coach := r.Context().Value(targetCoachKey).(*domain.Coach)

	if coach.ID == currentCoach(r).ID {
		h.errorResponse(w, r, "不能删除自己的账号")
		return
	}

	if err := h.accounts.DeleteCoach(coach.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除教练成功", nil)
}
